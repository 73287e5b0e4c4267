package helpers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hbushouse/jwreftools/nircam"
)

// ============================================================================
// CSV HELPER — Parses override tables for the wavelength-range builders
// ============================================================================
// Range table (header required, column order free):
//   order,filter,min,max
//   1,F444W,3.69,4.89
//
// Extract-order table (header required):
//   filter,orders
//   F444W,1;2
//
// Orders may be separated by ";" or spaces. Blank lines and lines starting
// with "#" are skipped. Unknown columns are ignored.
// ============================================================================

// ErrMissingColumn is returned when a required header column is absent.
var ErrMissingColumn = errors.New("missing CSV column")

var (
	rangeColumns   = []string{"order", "filter", "min", "max"}
	extractColumns = []string{"filter", "orders"}
)

// ParseRangeCSV parses an (order, filter, min, max) table.
func ParseRangeCSV(data []byte) ([]nircam.RangeEntry, error) {
	rows, cols, err := readTable(data, rangeColumns)
	if err != nil {
		return nil, err
	}

	entries := make([]nircam.RangeEntry, 0, len(rows))
	for _, r := range rows {
		order, err := strconv.Atoi(r.field(cols["order"]))
		if err != nil {
			return nil, fmt.Errorf("row %d: order: %w", r.line, err)
		}
		lo, err := strconv.ParseFloat(r.field(cols["min"]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: min: %w", r.line, err)
		}
		hi, err := strconv.ParseFloat(r.field(cols["max"]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: max: %w", r.line, err)
		}
		filter := r.field(cols["filter"])
		if filter == "" {
			return nil, fmt.Errorf("row %d: empty filter", r.line)
		}
		entries = append(entries, nircam.RangeEntry{Order: order, Filter: filter, Min: lo, Max: hi})
	}
	return entries, nil
}

// ParseExtractOrdersCSV parses a (filter, orders) table.
func ParseExtractOrdersCSV(data []byte) ([]nircam.ExtractOrders, error) {
	rows, cols, err := readTable(data, extractColumns)
	if err != nil {
		return nil, err
	}

	out := make([]nircam.ExtractOrders, 0, len(rows))
	for _, r := range rows {
		filter := r.field(cols["filter"])
		if filter == "" {
			return nil, fmt.Errorf("row %d: empty filter", r.line)
		}
		fields := strings.FieldsFunc(r.field(cols["orders"]), func(c rune) bool {
			return c == ';' || c == ' ' || c == '\t'
		})
		if len(fields) == 0 {
			return nil, fmt.Errorf("row %d: no orders for %s", r.line, filter)
		}
		orders := make([]int, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("row %d: orders: %w", r.line, err)
			}
			orders = append(orders, n)
		}
		out = append(out, nircam.ExtractOrders{Filter: filter, Orders: orders})
	}
	return out, nil
}

type row struct {
	line   int
	fields []string
}

func (r row) field(i int) string {
	if i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// readTable reads the header and data rows of data and maps every required
// column to its index.
func readTable(data []byte, required []string) ([]row, map[string]int, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		cols[toSnakeCase(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var rows []row
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, cols, nil
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
