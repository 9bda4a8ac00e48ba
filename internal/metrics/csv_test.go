package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjurado/filerep/internal/parser"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeCSV(t *testing.T) {
	sales := []parser.Sale{
		{Date: day("2025-01-12"), Product: "Laptop", Category: "Electronics", UnitPrice: 1000, Quantity: 2, Discount: 10, Total: 1800},
		{Date: day("2025-01-10"), Product: "Mouse", Category: "Electronics", UnitPrice: 25, Quantity: 4, Discount: 0, Total: 100},
		{Date: day("2025-02-01"), Product: "Desk", Category: "Furniture", UnitPrice: 300, Quantity: 1, Discount: 5, Total: 285},
	}

	m, err := ComputeCSV(sales)
	require.NoError(t, err)

	assert.Equal(t, 2185.0, m["total_sales"])
	assert.Equal(t, 3, m["unique_products"])
	assert.Equal(t, 7, m["total_quantity"])
	assert.Equal(t, 3, m["total_records"])
	assert.Equal(t, 5.0, m["average_discount"])

	best := m["best_selling_product"].(map[string]any)
	assert.Equal(t, "Mouse", best["name"])
	assert.Equal(t, 4, best["quantity"])

	top := m["top_category"].(map[string]any)
	assert.Equal(t, "Electronics", top["name"])
	assert.Equal(t, 1900.0, top["revenue"])

	dr := m["date_range"].(map[string]any)
	assert.Equal(t, "2025-01-10", dr["from"])
	assert.Equal(t, "2025-02-01", dr["to"])
}

func TestComputeCSVTieBreaksByFirstOccurrence(t *testing.T) {
	sales := []parser.Sale{
		{Date: day("2025-01-01"), Product: "B", Category: "X", Quantity: 3, Total: 50},
		{Date: day("2025-01-02"), Product: "A", Category: "Y", Quantity: 3, Total: 50},
	}

	m, err := ComputeCSV(sales)
	require.NoError(t, err)

	best := m["best_selling_product"].(map[string]any)
	assert.Equal(t, "B", best["name"])

	top := m["top_category"].(map[string]any)
	assert.Equal(t, "X", top["name"])
}

func TestComputeCSVEmpty(t *testing.T) {
	_, err := ComputeCSV(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sales records")
}
