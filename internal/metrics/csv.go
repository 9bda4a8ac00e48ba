package metrics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fjurado/filerep/internal/parser"
)

// ComputeCSV summarizes validated sales records.
func ComputeCSV(sales []parser.Sale) (map[string]any, error) {
	if len(sales) == 0 {
		return nil, fmt.Errorf("no sales records to analyze")
	}

	totalSales := decimal.Zero
	totalQuantity := 0
	totalDiscount := 0.0

	products := map[string]bool{}
	quantityByProduct := map[string]int{}
	revenueByCategory := map[string]decimal.Decimal{}
	productOrder := map[string]int{}
	categoryOrder := map[string]int{}

	from, to := sales[0].Date, sales[0].Date

	for i, s := range sales {
		totalSales = totalSales.Add(decimal.NewFromFloat(s.Total))
		totalQuantity += s.Quantity
		totalDiscount += s.Discount
		products[s.Product] = true

		if _, seen := productOrder[s.Product]; !seen {
			productOrder[s.Product] = i
		}
		quantityByProduct[s.Product] += s.Quantity

		if _, seen := categoryOrder[s.Category]; !seen {
			categoryOrder[s.Category] = i
		}
		revenueByCategory[s.Category] = revenueByCategory[s.Category].Add(decimal.NewFromFloat(s.Total))

		if s.Date.Before(from) {
			from = s.Date
		}
		if s.Date.After(to) {
			to = s.Date
		}
	}

	// Ties break by first occurrence, so walk keys in appearance order and
	// require strictly-greater to displace the current best.
	bestProduct, bestQuantity := "", 0
	for _, product := range keysInOrder(productOrder) {
		if q := quantityByProduct[product]; q > bestQuantity {
			bestProduct, bestQuantity = product, q
		}
	}

	topCategory, topRevenue := "", decimal.Zero
	for _, category := range keysInOrder(categoryOrder) {
		if r := revenueByCategory[category]; topCategory == "" || r.GreaterThan(topRevenue) {
			topCategory, topRevenue = category, r
		}
	}

	return map[string]any{
		"total_sales":     totalSales.Round(2).InexactFloat64(),
		"unique_products": len(products),
		"total_quantity":  totalQuantity,
		"total_records":   len(sales),
		"best_selling_product": map[string]any{
			"name":     bestProduct,
			"quantity": bestQuantity,
		},
		"top_category": map[string]any{
			"name":    topCategory,
			"revenue": topRevenue.Round(2).InexactFloat64(),
		},
		"average_discount": round2(totalDiscount / float64(len(sales))),
		"date_range": map[string]any{
			"from": from.Format("2006-01-02"),
			"to":   to.Format("2006-01-02"),
		},
	}, nil
}
