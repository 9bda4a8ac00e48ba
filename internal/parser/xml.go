package parser

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Product is one <product> node of a catalog document.
type Product struct {
	ID       string
	Name     string
	Category string
	Price    float64
	Currency string
	Stock    int
	Supplier string
}

// CatalogMetadata carries the optional <metadata> block.
type CatalogMetadata struct {
	Generated string
	Source    string
}

// Catalog is the parsed payload of a product catalog document.
type Catalog struct {
	Metadata      CatalogMetadata
	Products      []Product
	TotalProducts int
	TotalStock    int
	Categories    []string
}

// Wire shapes for encoding/xml. Numeric fields decode as strings so a bad
// value can be reported with the product index instead of a bare cursor
// offset from the decoder.
type xmlCatalog struct {
	Metadata struct {
		Generated string `xml:"generated"`
		Source    string `xml:"source"`
	} `xml:"metadata"`
	Products struct {
		Product []xmlProduct `xml:"product"`
	} `xml:"products"`
}

type xmlProduct struct {
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name"`
	Category string   `xml:"category"`
	Price    xmlPrice `xml:"price"`
	Stock    string   `xml:"stock"`
	Supplier string   `xml:"supplier"`
}

type xmlPrice struct {
	Currency string `xml:"currency,attr"`
	Value    string `xml:",chardata"`
}

// ParseXML reads a catalog document. Malformed XML is a terminal error; an
// absent or empty products list is a valid catalog with zero totals.
func ParseXML(path string) Result {
	content, err := os.ReadFile(path)
	if err != nil {
		return Fail(fmt.Errorf("failed to read file %s: %w", path, err))
	}

	var doc xmlCatalog
	if err := xml.Unmarshal(content, &doc); err != nil {
		return Fail(fmt.Errorf("invalid XML: %v", err))
	}

	catalog := Catalog{
		Metadata: CatalogMetadata{
			Generated: strings.TrimSpace(doc.Metadata.Generated),
			Source:    strings.TrimSpace(doc.Metadata.Source),
		},
		Products: make([]Product, 0, len(doc.Products.Product)),
	}

	var reasons []string
	categories := map[string]bool{}

	for i, p := range doc.Products.Product {
		product, errs := convertProduct(p)
		if len(errs) > 0 {
			for _, e := range errs {
				reasons = append(reasons, fmt.Sprintf("product[%d]: %s", i, e))
			}
			continue
		}
		catalog.Products = append(catalog.Products, product)
		catalog.TotalStock += product.Stock
		if product.Category != "" {
			categories[product.Category] = true
		}
	}

	if len(reasons) > 0 {
		return Fail(fmt.Errorf("XML validation failed: %s", strings.Join(reasons, "; ")))
	}

	catalog.TotalProducts = len(catalog.Products)
	for c := range categories {
		catalog.Categories = append(catalog.Categories, c)
	}
	sort.Strings(catalog.Categories)

	return OK(catalog)
}

func convertProduct(p xmlProduct) (Product, []string) {
	var errs []string

	price, err := strconv.ParseFloat(strings.TrimSpace(p.Price.Value), 64)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid price %q", strings.TrimSpace(p.Price.Value)))
	}

	stock := 0
	if s := strings.TrimSpace(p.Stock); s != "" {
		stock, err = strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid stock %q", s))
		}
	}

	currency := strings.TrimSpace(p.Price.Currency)
	if currency == "" {
		currency = "USD"
	}

	return Product{
		ID:       p.ID,
		Name:     strings.TrimSpace(p.Name),
		Category: strings.TrimSpace(p.Category),
		Price:    price,
		Currency: currency,
		Stock:    stock,
		Supplier: strings.TrimSpace(p.Supplier),
	}, errs
}
