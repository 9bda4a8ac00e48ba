package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalog = `<?xml version="1.0"?>
<catalog>
  <metadata>
    <generated>2025-03-01</generated>
    <source>warehouse</source>
  </metadata>
  <products>
    <product id="p1">
      <name>Laptop</name>
      <category>Electronics</category>
      <price currency="EUR">999.99</price>
      <stock>5</stock>
      <supplier>Acme</supplier>
    </product>
    <product id="p2">
      <name>Desk</name>
      <category>Furniture</category>
      <price>150.00</price>
      <stock>20</stock>
      <supplier>Woodco</supplier>
    </product>
  </products>
</catalog>`

func TestParseXMLValid(t *testing.T) {
	path := writeFixture(t, "catalog.xml", validCatalog)

	res := ParseXML(path)
	require.NoError(t, res.Err)

	catalog := res.Data.(Catalog)
	assert.Equal(t, "warehouse", catalog.Metadata.Source)
	require.Len(t, catalog.Products, 2)
	assert.Equal(t, 2, catalog.TotalProducts)
	assert.Equal(t, 25, catalog.TotalStock)
	assert.Equal(t, []string{"Electronics", "Furniture"}, catalog.Categories)

	assert.Equal(t, "EUR", catalog.Products[0].Currency)
	// missing currency attribute falls back to USD
	assert.Equal(t, "USD", catalog.Products[1].Currency)
	assert.InDelta(t, 999.99, catalog.Products[0].Price, 0.001)
}

func TestParseXMLBadNumericsReportIndex(t *testing.T) {
	content := `<catalog><products>
  <product id="p1"><name>A</name><category>C</category><price>10.0</price><stock>1</stock><supplier>S</supplier></product>
  <product id="p2"><name>B</name><category>C</category><price>cheap</price><stock>abc</stock><supplier>S</supplier></product>
</products></catalog>`
	path := writeFixture(t, "catalog.xml", content)

	res := ParseXML(path)
	require.Error(t, res.Err)
	msg := res.Err.Error()
	assert.Contains(t, msg, "XML validation failed")
	assert.Contains(t, msg, `product[1]: invalid price "cheap"`)
	assert.Contains(t, msg, `product[1]: invalid stock "abc"`)
	assert.NotContains(t, msg, "product[0]")
}

func TestParseXMLMalformed(t *testing.T) {
	path := writeFixture(t, "catalog.xml", "<catalog><products>")
	res := ParseXML(path)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "invalid XML:")
}

func TestParseXMLEmptyCatalog(t *testing.T) {
	path := writeFixture(t, "catalog.xml", "<catalog><products></products></catalog>")
	res := ParseXML(path)
	require.NoError(t, res.Err)
	catalog := res.Data.(Catalog)
	assert.Zero(t, catalog.TotalProducts)
	assert.Empty(t, catalog.Products)
}

func TestParseXMLMissingStockDefaultsToZero(t *testing.T) {
	content := `<catalog><products>
  <product id="p1"><name>A</name><category>C</category><price>10.0</price><supplier>S</supplier></product>
</products></catalog>`
	path := writeFixture(t, "catalog.xml", content)

	res := ParseXML(path)
	require.NoError(t, res.Err)
	catalog := res.Data.(Catalog)
	require.Len(t, catalog.Products, 1)
	assert.Zero(t, catalog.Products[0].Stock)
}
