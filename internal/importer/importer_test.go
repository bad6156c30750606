package importer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/importer"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, addr, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseProducts(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "Category", "Price", "Cost", "Stock", "Barcode"},
		{"Sugar 1kg", "Groceries", "12.50", "9.00", "55.5", "6001001"},
		{"Rice 5kg", "Groceries", "1,080.00", "900", "40", ""},
	})

	products, rowErrs, err := importer.ParseProducts(buf)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, products, 2)

	assert.Equal(t, "Sugar 1kg", products[0].Name)
	require.NotNil(t, products[0].Category)
	assert.Equal(t, "Groceries", *products[0].Category)
	assert.True(t, products[0].Price.Equal(types.MustMoney("12.50")))
	assert.True(t, products[0].Cost.Equal(types.MustMoney("9")))
	assert.Equal(t, types.NewQuantityFromFloat64(55.5), products[0].Stock)
	require.NotNil(t, products[0].Barcode)
	assert.Equal(t, "6001001", *products[0].Barcode)

	// Thousands separators are stripped before parsing.
	assert.True(t, products[1].Price.Equal(types.MustMoney("1080")))
	assert.Nil(t, products[1].Barcode)
}

func TestParseProductsHeaderAliases(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Item", "Group", "Selling Price", "Purchase Price", "Qty", "SKU"},
		{"Milo 400g", "Beverages", "35", "28", "12", "MLO-400"},
	})

	products, rowErrs, err := importer.ParseProducts(buf)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "Milo 400g", p.Name)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Beverages", *p.Category)
	assert.True(t, p.Price.Equal(types.MustMoney("35")))
	assert.Equal(t, types.NewQuantityFromInt(12), p.Stock)
	require.NotNil(t, p.Barcode)
	assert.Equal(t, "MLO-400", *p.Barcode)
}

func TestParseProductsRowErrors(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Name", "Price", "Stock"},
		{"Good Row", "10", "5"},
		{"", "12", "3"},          // name missing but row not blank
		{"Bad Price", "abc", ""}, // unparseable price
		{"Negative", "-4", ""},   // negative price
		{"", "", ""},             // blank row, silently skipped
		{"Bad Stock", "7", "lots"},
	})

	products, rowErrs, err := importer.ParseProducts(buf)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Good Row", products[0].Name)

	require.Len(t, rowErrs, 4)
	assert.Equal(t, 3, rowErrs[0].Row)
	assert.Contains(t, rowErrs[0].Message, "missing product name")
	assert.Equal(t, 4, rowErrs[1].Row)
	assert.Contains(t, rowErrs[1].Message, "invalid price")
	assert.Equal(t, 5, rowErrs[2].Row)
	assert.Contains(t, rowErrs[2].Message, "negative")
	assert.Equal(t, 7, rowErrs[3].Row)
	assert.Contains(t, rowErrs[3].Message, "invalid stock")
}

func TestParseProductsNoNameColumn(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Description", "Amount"},
		{"Something", "10"},
	})

	_, _, err := importer.ParseProducts(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no product name column")
}

func TestParseProductsNotAWorkbook(t *testing.T) {
	_, _, err := importer.ParseProducts(bytes.NewReader([]byte("name,price\na,1\n")))
	require.Error(t, err)
}
