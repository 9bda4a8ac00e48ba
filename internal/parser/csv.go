package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// salesHeader is the exact header a sales file must carry, compared
// case-insensitively.
var salesHeader = []string{"fecha", "producto", "categoria", "precio_unitario", "cantidad", "descuento"}

// maxReportedRows caps how many failing rows a CSV validation error names.
const maxReportedRows = 3

// Sale is one validated sales record. Total is derived at parse time as
// unit_price × quantity × (1 − discount/100).
type Sale struct {
	Date      time.Time
	Product   string
	Category  string
	UnitPrice float64
	Quantity  int
	Discount  float64
	Total     float64
}

// ParseCSV reads a sales file. A single invalid row fails the whole file:
// sales data feeds financial totals, so partially valid input is worse than
// no input. The error names up to the first three offending rows.
func ParseCSV(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Fail(fmt.Errorf("failed to read file %s: %w", path, err))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // field-count validation is ours, with line numbers

	records, err := reader.ReadAll()
	if err != nil {
		return Fail(fmt.Errorf("CSV validation failed: %v", err))
	}
	if len(records) == 0 {
		return Fail(fmt.Errorf("CSV validation failed: file is empty"))
	}

	if err := checkHeader(records[0]); err != nil {
		return Fail(err)
	}

	sales := make([]Sale, 0, len(records)-1)
	var rowErrors []string
	failedRows := 0

	for i, record := range records[1:] {
		line := i + 2 // 1-based, after the header
		sale, err := parseSaleRow(record)
		if err != nil {
			failedRows++
			if len(rowErrors) < maxReportedRows {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			}
			continue
		}
		sales = append(sales, sale)
	}

	if failedRows > 0 {
		msg := strings.Join(rowErrors, "; ")
		if failedRows > maxReportedRows {
			msg = fmt.Sprintf("%s (and %d more)", msg, failedRows-maxReportedRows)
		}
		return Fail(fmt.Errorf("CSV validation failed: %s", msg))
	}
	if len(sales) == 0 {
		return Fail(fmt.Errorf("CSV validation failed: no data rows"))
	}
	return OK(sales)
}

func checkHeader(row []string) error {
	if len(row) != len(salesHeader) {
		return fmt.Errorf("CSV validation failed: invalid header: expected %d columns, got %d", len(salesHeader), len(row))
	}
	for i, want := range salesHeader {
		if !strings.EqualFold(strings.TrimSpace(row[i]), want) {
			return fmt.Errorf("CSV validation failed: invalid header: column %d is %q, want %q", i+1, strings.TrimSpace(row[i]), want)
		}
	}
	return nil
}

func parseSaleRow(record []string) (Sale, error) {
	if len(record) != 6 {
		return Sale{}, fmt.Errorf("expected 6 fields, got %d", len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	date, err := time.Parse("2006-01-02", record[0])
	if err != nil {
		return Sale{}, fmt.Errorf("invalid date %q", record[0])
	}

	price, err := strconv.ParseFloat(record[3], 64)
	if err != nil {
		return Sale{}, fmt.Errorf("invalid price %q", record[3])
	}
	if price <= 0 {
		return Sale{}, fmt.Errorf("price must be positive, got %v", price)
	}

	quantity, err := strconv.Atoi(record[4])
	if err != nil {
		return Sale{}, fmt.Errorf("invalid quantity %q", record[4])
	}
	if quantity <= 0 {
		return Sale{}, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	discount, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return Sale{}, fmt.Errorf("invalid discount %q", record[5])
	}
	if discount < 0 || discount > 100 {
		return Sale{}, fmt.Errorf("discount must be in [0, 100], got %v", discount)
	}

	// Money math goes through decimal so row totals do not accumulate
	// binary float error before the metrics stage sums them.
	total := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(decimal.NewFromInt(100).Sub(decimal.NewFromFloat(discount)).Div(decimal.NewFromInt(100)))

	return Sale{
		Date:      date,
		Product:   record[1],
		Category:  record[2],
		UnitPrice: price,
		Quantity:  quantity,
		Discount:  discount,
		Total:     total.InexactFloat64(),
	}, nil
}
