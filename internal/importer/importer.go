// Package importer parses product spreadsheets (xlsx) into catalog products.
// Column headers are matched by alias so exports from different tools load
// without manual renaming.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Senanu-web/bskal-enterprise/internal/core/apperror"
	"github.com/Senanu-web/bskal-enterprise/internal/core/types"
	"github.com/Senanu-web/bskal-enterprise/internal/domain/catalog"
)

// RowError reports one rejected spreadsheet row. Row is 1-based as shown
// in the spreadsheet application.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Header aliases, all compared lowercase with surrounding spaces stripped.
var headerAliases = map[string]string{
	"name":           "name",
	"product":        "name",
	"product name":   "name",
	"item":           "name",
	"category":       "category",
	"group":          "category",
	"price":          "price",
	"selling price":  "price",
	"sale price":     "price",
	"unit price":     "price",
	"cost":           "cost",
	"cost price":     "cost",
	"purchase price": "cost",
	"stock":          "stock",
	"qty":            "stock",
	"quantity":       "stock",
	"stock qty":      "stock",
	"barcode":        "barcode",
	"code":           "barcode",
	"ean":            "barcode",
	"sku":            "barcode",
	"image":          "image",
	"image url":      "image",
	"photo":          "image",
}

// ParseProducts reads the first sheet of an xlsx workbook. The first row
// must be a header; rows missing a name or carrying unparseable numbers are
// reported per-row instead of failing the whole file.
func ParseProducts(r io.Reader) ([]*catalog.Product, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, apperror.NewValidation("file is not a readable xlsx workbook").
			WithDetail("error", err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperror.NewValidation("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil, apperror.NewValidation("sheet needs a header row and at least one product row")
	}

	cols := mapHeader(rows[0])
	if _, ok := cols["name"]; !ok {
		return nil, nil, apperror.NewValidation("no product name column found").
			WithDetail("header", rows[0])
	}

	var (
		products []*catalog.Product
		rowErrs  []RowError
	)
	for i, row := range rows[1:] {
		rowNum := i + 2
		p, err := parseRow(cols, row)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if p == nil { // blank row
			continue
		}
		products = append(products, p)
	}

	return products, rowErrs, nil
}

func mapHeader(header []string) map[string]int {
	cols := make(map[string]int)
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if field, ok := headerAliases[key]; ok {
			if _, taken := cols[field]; !taken {
				cols[field] = i
			}
		}
	}
	return cols
}

func parseRow(cols map[string]int, row []string) (*catalog.Product, error) {
	name := cell(row, cols, "name")
	if name == "" {
		if rowBlank(row) {
			return nil, nil
		}
		return nil, fmt.Errorf("missing product name")
	}

	price, err := parseMoneyCell(cell(row, cols, "price"), "price")
	if err != nil {
		return nil, err
	}
	cost, err := parseMoneyCell(cell(row, cols, "cost"), "cost")
	if err != nil {
		return nil, err
	}

	p := catalog.NewProduct(name, price, cost)

	if raw := cell(row, cols, "stock"); raw != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stock %q", raw)
		}
		p.Stock = types.NewQuantityFromFloat64(v)
	}
	if v := cell(row, cols, "category"); v != "" {
		p.Category = &v
	}
	if v := cell(row, cols, "barcode"); v != "" {
		p.Barcode = &v
	}
	if v := cell(row, cols, "image"); v != "" {
		p.ImageURL = &v
	}

	return p, nil
}

func parseMoneyCell(raw, field string) (types.Money, error) {
	if raw == "" {
		return types.Zero(), nil
	}
	m, err := types.NewMoneyFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return types.Zero(), fmt.Errorf("invalid %s %q", field, raw)
	}
	if m.IsNegative() {
		return types.Zero(), fmt.Errorf("%s cannot be negative", field)
	}
	return m, nil
}

func cell(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
