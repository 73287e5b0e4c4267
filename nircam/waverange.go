package nircam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/hbushouse/jwreftools/reffile"
)

// ============================================================================
// WAVELENGTH RANGES — filter → usable wavelength interval per order
// ============================================================================

// RangeEntry is one (order, filter, min, max) row, wavelengths in microns.
type RangeEntry = reffile.RangeEntry

// ExtractOrders lists the orders extracted by default for a filter.
type ExtractOrders = reffile.ExtractOrders

var rangeSoftware = reffile.Software{
	Name:     "nircam_reftools.py",
	Homepage: reffile.Homepage,
	Version:  "0.7.1",
}

// mode describes one of the two wavelength-range products.
type mode struct {
	expType  string
	title    string
	history  string
	outName  string
	defaults func() []RangeEntry
	// extract builds the default extraction orders from the table.
	extract func(filters []string, orders []int) []ExtractOrders
}

var tsgrismMode = mode{
	expType:  ExpTypeTSGrism,
	title:    "NIRCAM TSGRISM reference file",
	history:  "Ground NIRCAM TSGrism wavelengthrange",
	outName:  "nircam_tsgrism_wavelengthrange.asdf",
	defaults: DefaultTSGrismRanges,
	extract: func(filters []string, _ []int) []ExtractOrders {
		out := make([]ExtractOrders, len(filters))
		for i, f := range filters {
			out[i] = ExtractOrders{Filter: f, Orders: []int{1}}
		}
		return out
	},
}

var wfssMode = mode{
	expType:  ExpTypeWFSS,
	title:    "NIRCAM WFSS reference file",
	history:  "Ground NIRCAM Grism wavelengthrange",
	outName:  "nircam_wfss_wavelengthrange.asdf",
	defaults: DefaultWFSSRanges,
	extract: func(filters []string, orders []int) []ExtractOrders {
		out := make([]ExtractOrders, len(filters))
		for i, f := range filters {
			out[i] = ExtractOrders{Filter: f, Orders: append([]int{}, orders...)}
		}
		return out
	},
}

// CreateTSGrismWavelengthRange writes the time-series wavelength-range file.
// By default every filter extracts order 1 only.
func CreateTSGrismWavelengthRange(ctx context.Context, opts ...RangeOption) (*reffile.WavelengthRangeModel, error) {
	return createWavelengthRange(ctx, tsgrismMode, applyRangeOptions(tsgrismMode, opts))
}

// CreateWFSSWavelengthRange writes the wide-field slitless wavelength-range
// file. By default every filter extracts every order in the table.
func CreateWFSSWavelengthRange(ctx context.Context, opts ...RangeOption) (*reffile.WavelengthRangeModel, error) {
	return createWavelengthRange(ctx, wfssMode, applyRangeOptions(wfssMode, opts))
}

// buildWavelengthRange assembles the model for m without writing it.
func buildWavelengthRange(m mode, cfg *rangeConfig) (*reffile.WavelengthRangeModel, error) {
	meta, err := reffile.CommonKeywords(reffile.Keywords{
		Reftype:     "wavelengthrange",
		Title:       m.title,
		Description: "NIRCAM Grism-Filter Wavelength Ranges",
		ExpType:     m.expType,
		Author:      cfg.Author,
		Pupil:       "ANY",
		ModelType:   "WavelengthrangeModel",
		Filename:    filepath.Base(cfg.OutName),
	})
	if err != nil {
		return nil, err
	}
	meta.Exposure.PExpType = m.expType
	meta.InputUnits = reffile.Micron
	meta.OutputUnits = reffile.Micron

	table := cfg.Ranges
	if table == nil {
		table = m.defaults()
	}
	orders, filters := DistinctOrdersFilters(table)

	extract := cfg.ExtractOrders
	if extract == nil {
		extract = m.extract(filters, orders)
	}

	sw := rangeSoftware
	sw.Author = cfg.Author
	return &reffile.WavelengthRangeModel{
		Meta:              meta,
		WavelengthRange:   table,
		ExtractOrders:     extract,
		Order:             orders,
		WaverangeSelector: filters,
		History:           []reffile.HistoryEntry{reffile.NewHistoryEntry(cfg.History, cfg.Now(), sw)},
	}, nil
}

func createWavelengthRange(ctx context.Context, m mode, cfg *rangeConfig) (*reffile.WavelengthRangeModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model, err := buildWavelengthRange(m, cfg)
	if err != nil {
		return nil, err
	}
	if err := reffile.WriteFile(cfg.OutName, model); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", cfg.OutName, err)
	}
	cfg.Logger.Info("Wrote wavelengthrange reference file",
		zap.String("exp_type", m.expType),
		zap.String("out", cfg.OutName),
		zap.Int("entries", len(model.WavelengthRange)),
		zap.Strings("filters", model.WaverangeSelector))
	return model, nil
}

// DistinctOrdersFilters returns the sorted distinct orders and filter names
// of table.
func DistinctOrdersFilters(table []RangeEntry) (orders []int, filters []string) {
	seenOrder := make(map[int]bool)
	seenFilter := make(map[string]bool)
	for _, e := range table {
		if !seenOrder[e.Order] {
			seenOrder[e.Order] = true
			orders = append(orders, e.Order)
		}
		if !seenFilter[e.Filter] {
			seenFilter[e.Filter] = true
			filters = append(filters, e.Filter)
		}
	}
	sort.Ints(orders)
	sort.Strings(filters)
	return orders, filters
}

// ============================================================================
// BUILT-IN TABLES (microns)
// ============================================================================

var tsgrismRanges = [...]RangeEntry{
	{Order: 1, Filter: "F277W", Min: 2.500411072, Max: 3.807062006},
	{Order: 1, Filter: "F322W2", Min: 2.5011293930000003, Max: 4.215842089},
	{Order: 1, Filter: "F356W", Min: 3.001085025, Max: 4.302320901},
	{Order: 1, Filter: "F444W", Min: 3.696969216, Max: 4.899565197},
	{Order: 2, Filter: "F277W", Min: 2.500411072, Max: 3.2642254050000004},
	{Order: 2, Filter: "F322W2", Min: 2.5011293930000003, Max: 4.136119434},
	{Order: 2, Filter: "F356W", Min: 2.529505253, Max: 4.133416971},
	{Order: 2, Filter: "F444W", Min: 2.5011293930000003, Max: 4.899565197},
}

var wfssRanges = [...]RangeEntry{
	{Order: 1, Filter: "F250M", Min: 2.500411072, Max: 4.800260833},
	{Order: 1, Filter: "F277W", Min: 2.500411072, Max: 3.807062006},
	{Order: 1, Filter: "F300M", Min: 2.684896869, Max: 4.025318456},
	{Order: 1, Filter: "F322W2", Min: 2.5011293930000003, Max: 4.215842089},
	{Order: 1, Filter: "F335M", Min: 3.01459734, Max: 4.260432726},
	{Order: 1, Filter: "F356W", Min: 3.001085025, Max: 4.302320901},
	{Order: 1, Filter: "F360M", Min: 3.178096344, Max: 4.00099629},
	{Order: 1, Filter: "F410M", Min: 3.6267051809999997, Max: 4.5644598},
	{Order: 1, Filter: "F430M", Min: 4.04828939, Max: 4.511761774},
	{Order: 1, Filter: "F444W", Min: 3.696969216, Max: 4.899565197},
	{Order: 1, Filter: "F460M", Min: 3.103778615, Max: 4.881999188},
	{Order: 1, Filter: "F480M", Min: 4.5158154679999996, Max: 4.899565197},
	{Order: 2, Filter: "F250M", Min: 2.500411072, Max: 2.667345336},
	{Order: 2, Filter: "F277W", Min: 2.500411072, Max: 3.2642254050000004},
	{Order: 2, Filter: "F300M", Min: 2.6659796289999997, Max: 3.2997071729999994},
	{Order: 2, Filter: "F322W2", Min: 2.5011293930000003, Max: 4.136119434},
	{Order: 2, Filter: "F335M", Min: 2.54572003, Max: 3.6780519760000003},
	{Order: 2, Filter: "F356W", Min: 2.529505253, Max: 4.133416971},
	{Order: 2, Filter: "F360M", Min: 2.557881113, Max: 4.83740855},
	{Order: 2, Filter: "F410M", Min: 2.5186954019999996, Max: 4.759037127},
	{Order: 2, Filter: "F430M", Min: 2.5362614100000003, Max: 4.541488865},
	{Order: 2, Filter: "F444W", Min: 2.5011293930000003, Max: 4.899565197},
	{Order: 2, Filter: "F460M", Min: 2.575447122, Max: 4.883350419},
	{Order: 2, Filter: "F480M", Min: 2.549773725, Max: 4.899565197},
}

// DefaultTSGrismRanges returns a copy of the built-in time-series table.
func DefaultTSGrismRanges() []RangeEntry {
	return append([]RangeEntry{}, tsgrismRanges[:]...)
}

// DefaultWFSSRanges returns a copy of the built-in wide-field table.
func DefaultWFSSRanges() []RangeEntry {
	return append([]RangeEntry{}, wfssRanges[:]...)
}
