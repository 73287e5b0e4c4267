// Package poly holds the one-dimensional polynomial models stored in grism
// reference files.
package poly

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tag is the ASDF transform tag written for every polynomial.
const Tag = "!transform/polynomial-1.2.0"

// Polynomial1D is f(t) = c0 + c1*t + c2*t^2 + ...
type Polynomial1D struct {
	Coefficients []float64
}

// Linear returns the degree-1 polynomial c0 + c1*t.
func Linear(c0, c1 float64) Polynomial1D {
	return Polynomial1D{Coefficients: []float64{c0, c1}}
}

// Degree returns the polynomial degree.
func (p Polynomial1D) Degree() int {
	if len(p.Coefficients) == 0 {
		return 0
	}
	return len(p.Coefficients) - 1
}

// Eval evaluates p at t (Horner's scheme).
func (p Polynomial1D) Eval(t float64) float64 {
	var out float64
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		out = out*t + p.Coefficients[i]
	}
	return out
}

// InverseLinear returns the inverse of the linear mapping c0 + c1*t:
// g(v) = -c0/c1 + v/c1. A zero slope has no inverse along that axis and
// yields the identically-zero polynomial.
func InverseLinear(c0, c1 float64) Polynomial1D {
	if c1 == 0 {
		return Linear(0, 0)
	}
	return Linear(-c0/c1, 1/c1)
}

// Inverse returns the inverse of a degree-1 polynomial.
func (p Polynomial1D) Inverse() (Polynomial1D, error) {
	if p.Degree() != 1 {
		return Polynomial1D{}, fmt.Errorf("inverse needs a degree-1 polynomial, got degree %d", p.Degree())
	}
	return InverseLinear(p.Coefficients[0], p.Coefficients[1]), nil
}

// LinearPair returns the forward and inverse mappings of c0 + c1*t.
func LinearPair(c0, c1 float64) (forward, inverse Polynomial1D) {
	return Linear(c0, c1), InverseLinear(c0, c1)
}

// ============================================================================
// SERIALIZATION
// ============================================================================

type polynomialDoc struct {
	Coefficients []float64 `yaml:"coefficients"`
	Degree       int       `yaml:"degree"`
}

// MarshalYAML writes p as a tagged ASDF polynomial transform.
func (p Polynomial1D) MarshalYAML() (interface{}, error) {
	var n yaml.Node
	if err := n.Encode(polynomialDoc{Coefficients: p.Coefficients, Degree: p.Degree()}); err != nil {
		return nil, err
	}
	n.Tag = Tag
	return &n, nil
}

// UnmarshalYAML reads a polynomial written by MarshalYAML.
func (p *Polynomial1D) UnmarshalYAML(n *yaml.Node) error {
	var doc polynomialDoc
	if err := n.Decode(&doc); err != nil {
		return err
	}
	if len(doc.Coefficients) != doc.Degree+1 {
		return fmt.Errorf("polynomial degree %d does not match %d coefficients", doc.Degree, len(doc.Coefficients))
	}
	p.Coefficients = doc.Coefficients
	return nil
}
