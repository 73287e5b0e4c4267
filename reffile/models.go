package reffile

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hbushouse/jwreftools/poly"
)

// ============================================================================
// REFERENCE MODELS — the two artifacts this module writes
// ============================================================================
//   GrismModel            reftype "specwcs": per-order dispersion polynomials
//   WavelengthRangeModel  reftype "wavelengthrange": filter → wavelength limits
// ============================================================================

// ErrInvalidModel is returned by Validate for structurally broken models.
var ErrInvalidModel = errors.New("invalid reference model")

// Model is a reference file that can be validated and serialized.
type Model interface {
	Validate() error
	GetMeta() Meta
}

// GrismModel holds the NIRCam grism dispersion models. Every polynomial
// collection is indexed like Orders.
type GrismModel struct {
	Meta     Meta                `yaml:"meta"`
	Displ    []poly.Polynomial1D `yaml:"displ"`
	Dispx    []poly.Polynomial1D `yaml:"dispx"`
	Dispy    []poly.Polynomial1D `yaml:"dispy"`
	Invdispl []poly.Polynomial1D `yaml:"invdispl"`
	Invdispx []poly.Polynomial1D `yaml:"invdispx"`
	Invdispy []poly.Polynomial1D `yaml:"invdispy"`
	Orders   []int               `yaml:"orders"`
	History  []HistoryEntry      `yaml:"history"`
}

// GetMeta returns the metadata block.
func (g *GrismModel) GetMeta() Meta { return g.Meta }

// Validate checks the metadata and that every collection matches Orders.
func (g *GrismModel) Validate() error {
	if err := g.Meta.validate(); err != nil {
		return err
	}
	if len(g.Orders) == 0 {
		return fmt.Errorf("%w: no orders", ErrInvalidModel)
	}
	collections := []struct {
		name  string
		polys []poly.Polynomial1D
	}{
		{"displ", g.Displ},
		{"dispx", g.Dispx},
		{"dispy", g.Dispy},
		{"invdispl", g.Invdispl},
		{"invdispx", g.Invdispx},
		{"invdispy", g.Invdispy},
	}
	for _, c := range collections {
		if len(c.polys) != len(g.Orders) {
			return fmt.Errorf("%w: %s has %d models for %d orders", ErrInvalidModel, c.name, len(c.polys), len(g.Orders))
		}
	}
	seen := make(map[int]bool, len(g.Orders))
	for _, o := range g.Orders {
		if seen[o] {
			return fmt.Errorf("%w: order %d listed twice", ErrInvalidModel, o)
		}
		seen[o] = true
	}
	return nil
}

// ============================================================================
// WAVELENGTH RANGE
// ============================================================================

// RangeEntry is one (order, filter, min, max) row of a wavelength-range table.
type RangeEntry struct {
	Order  int
	Filter string
	Min    float64
	Max    float64
}

// MarshalYAML writes the entry as a flow list [order, filter, min, max].
func (e RangeEntry) MarshalYAML() (interface{}, error) {
	var n yaml.Node
	if err := n.Encode([]interface{}{e.Order, e.Filter, e.Min, e.Max}); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

// UnmarshalYAML reads a [order, filter, min, max] list.
func (e *RangeEntry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 4 {
		return fmt.Errorf("wavelength range entry must be a 4-element list (line %d)", n.Line)
	}
	if err := n.Content[0].Decode(&e.Order); err != nil {
		return err
	}
	if err := n.Content[1].Decode(&e.Filter); err != nil {
		return err
	}
	if err := n.Content[2].Decode(&e.Min); err != nil {
		return err
	}
	return n.Content[3].Decode(&e.Max)
}

// ExtractOrders assigns the orders extracted by default for a filter.
type ExtractOrders struct {
	Filter string
	Orders []int
}

// MarshalYAML writes the assignment as [filter, [orders...]].
func (x ExtractOrders) MarshalYAML() (interface{}, error) {
	var n yaml.Node
	if err := n.Encode([]interface{}{x.Filter, x.Orders}); err != nil {
		return nil, err
	}
	n.Style = yaml.FlowStyle
	return &n, nil
}

// UnmarshalYAML reads a [filter, [orders...]] list.
func (x *ExtractOrders) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 {
		return fmt.Errorf("extract_orders entry must be a 2-element list (line %d)", n.Line)
	}
	if err := n.Content[0].Decode(&x.Filter); err != nil {
		return err
	}
	return n.Content[1].Decode(&x.Orders)
}

// WavelengthRangeModel holds per-order, per-filter wavelength limits.
type WavelengthRangeModel struct {
	Meta              Meta            `yaml:"meta"`
	WavelengthRange   []RangeEntry    `yaml:"wavelengthrange"`
	ExtractOrders     []ExtractOrders `yaml:"extract_orders"`
	Order             []int           `yaml:"order"`
	WaverangeSelector []string        `yaml:"waverange_selector"`
	History           []HistoryEntry  `yaml:"history"`
}

// GetMeta returns the metadata block.
func (w *WavelengthRangeModel) GetMeta() Meta { return w.Meta }

// Validate checks the metadata, the ranges and the extract-order filters.
func (w *WavelengthRangeModel) Validate() error {
	if err := w.Meta.validate(); err != nil {
		return err
	}
	if len(w.WavelengthRange) == 0 {
		return fmt.Errorf("%w: empty wavelength range table", ErrInvalidModel)
	}
	filters := make(map[string]bool)
	for _, e := range w.WavelengthRange {
		if e.Filter == "" {
			return fmt.Errorf("%w: order %d entry has no filter", ErrInvalidModel, e.Order)
		}
		if e.Min > e.Max {
			return fmt.Errorf("%w: %s order %d has min %g > max %g", ErrInvalidModel, e.Filter, e.Order, e.Min, e.Max)
		}
		filters[e.Filter] = true
	}
	for _, x := range w.ExtractOrders {
		if !filters[x.Filter] {
			return fmt.Errorf("%w: extract_orders names unknown filter %s", ErrInvalidModel, x.Filter)
		}
	}
	return nil
}
