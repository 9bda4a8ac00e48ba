package metrics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fjurado/filerep/internal/parser"
)

// ComputeXML summarizes a product catalog.
func ComputeXML(catalog parser.Catalog) (map[string]any, error) {
	if len(catalog.Products) == 0 {
		return nil, fmt.Errorf("no products to analyze")
	}

	type categoryAgg struct {
		count int
		stock int
		value decimal.Decimal
	}
	type supplierAgg struct {
		count int
		stock int
		order int
	}

	totalStock := 0
	inventoryValue := decimal.Zero
	priceSum := decimal.Zero
	categories := map[string]*categoryAgg{}
	suppliers := map[string]*supplierAgg{}

	minPrice, maxPrice := catalog.Products[0].Price, catalog.Products[0].Price
	mostExpensive := catalog.Products[0]

	type lowStockItem struct {
		name     string
		stock    int
		category string
	}
	var lowStock []lowStockItem

	for i, p := range catalog.Products {
		value := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Stock)))

		totalStock += p.Stock
		inventoryValue = inventoryValue.Add(value)
		priceSum = priceSum.Add(decimal.NewFromFloat(p.Price))

		agg := categories[p.Category]
		if agg == nil {
			agg = &categoryAgg{}
			categories[p.Category] = agg
		}
		agg.count++
		agg.stock += p.Stock
		agg.value = agg.value.Add(value)

		sup := suppliers[p.Supplier]
		if sup == nil {
			sup = &supplierAgg{order: i}
			suppliers[p.Supplier] = sup
		}
		sup.count++
		sup.stock += p.Stock

		if p.Price < minPrice {
			minPrice = p.Price
		}
		if p.Price > maxPrice {
			maxPrice = p.Price
		}
		if p.Price > mostExpensive.Price {
			mostExpensive = p
		}
		if p.Stock > 0 && p.Stock <= 10 {
			lowStock = append(lowStock, lowStockItem{name: p.Name, stock: p.Stock, category: p.Category})
		}
	}

	byCategory := make([]map[string]any, 0, len(categories))
	categoryNames := make([]string, 0, len(categories))
	for name := range categories {
		categoryNames = append(categoryNames, name)
	}
	sort.Slice(categoryNames, func(i, j int) bool {
		vi, vj := categories[categoryNames[i]].value, categories[categoryNames[j]].value
		if !vi.Equal(vj) {
			return vi.GreaterThan(vj)
		}
		return categoryNames[i] < categoryNames[j]
	})
	for _, name := range categoryNames {
		agg := categories[name]
		byCategory = append(byCategory, map[string]any{
			"category":      name,
			"product_count": agg.count,
			"total_stock":   agg.stock,
			"total_value":   agg.value.Round(2).InexactFloat64(),
		})
	}

	sort.Slice(lowStock, func(i, j int) bool {
		if lowStock[i].stock != lowStock[j].stock {
			return lowStock[i].stock < lowStock[j].stock
		}
		return lowStock[i].name < lowStock[j].name
	})
	lowStockOut := make([]map[string]any, 0, len(lowStock))
	for _, item := range lowStock {
		lowStockOut = append(lowStockOut, map[string]any{
			"name":     item.name,
			"stock":    item.stock,
			"category": item.category,
		})
	}

	supplierNames := make([]string, 0, len(suppliers))
	for name := range suppliers {
		supplierNames = append(supplierNames, name)
	}
	sort.Slice(supplierNames, func(i, j int) bool {
		si, sj := suppliers[supplierNames[i]], suppliers[supplierNames[j]]
		if si.count != sj.count {
			return si.count > sj.count
		}
		return si.order < sj.order
	})
	if len(supplierNames) > 5 {
		supplierNames = supplierNames[:5]
	}
	topSuppliers := make([]map[string]any, 0, len(supplierNames))
	for _, name := range supplierNames {
		sup := suppliers[name]
		topSuppliers = append(topSuppliers, map[string]any{
			"supplier":      name,
			"product_count": sup.count,
			"total_stock":   sup.stock,
		})
	}

	avgPrice := priceSum.Div(decimal.NewFromInt(int64(len(catalog.Products))))

	return map[string]any{
		"total_products":        len(catalog.Products),
		"total_stock_units":     totalStock,
		"total_inventory_value": inventoryValue.Round(2).InexactFloat64(),
		"average_price":         avgPrice.Round(2).InexactFloat64(),
		"categories_count":      len(categories),
		"products_by_category":  byCategory,
		"low_stock_items":       lowStockOut,
		"top_suppliers":         topSuppliers,
		"price_range": map[string]any{
			"min": minPrice,
			"max": maxPrice,
		},
		"most_expensive_product": mostExpensive.Name,
	}, nil
}
