package reffile

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// META — keywords shared by every CRDS reference file
// ============================================================================
// Mirrors the "meta" tree of a JWST reference file: who made it, what it is
// for (reftype, exposure type), which instrument configuration it applies to,
// and from when it is valid.
// ============================================================================

// Fixed values for NIRCam ground reference files.
const (
	DefaultAuthor   = "STScI"
	DefaultUseAfter = "2014-01-01T00:00:00"
	Pedigree        = "ground"
	Telescope       = "JWST"
	InstrumentName  = "NIRCAM"
	Homepage        = "https://github.com/spacetelescope/jwreftools"
)

var (
	// ErrExpTypeNotSet is returned when no exposure type was supplied.
	ErrExpTypeNotSet = errors.New("exp_type not set")

	// ErrReftypeNotSet is returned when no reference type was supplied.
	ErrReftypeNotSet = errors.New("Expected reftype value")
)

// Meta is the metadata block of a reference file.
type Meta struct {
	Author      string     `yaml:"author"`
	Description string     `yaml:"description"`
	Exposure    Exposure   `yaml:"exposure"`
	Instrument  Instrument `yaml:"instrument"`
	Pedigree    string     `yaml:"pedigree"`
	Reftype     string     `yaml:"reftype"`
	Telescope   string     `yaml:"telescope"`
	Title       string     `yaml:"title"`
	UseAfter    string     `yaml:"useafter"`
	ModelType   string     `yaml:"model_type,omitempty"`
	Filename    string     `yaml:"filename,omitempty"`
	InputUnits  Unit       `yaml:"input_units,omitempty"`
	OutputUnits Unit       `yaml:"output_units,omitempty"`
}

// Exposure names the exposure types the file applies to. PExpType may hold a
// pipe-separated list ("NRC_WFSS|NRC_TSGRISM").
type Exposure struct {
	Type     string `yaml:"type"`
	PExpType string `yaml:"p_exptype,omitempty"`
}

// Instrument describes the optical configuration.
type Instrument struct {
	Name   string `yaml:"name"`
	Filter string `yaml:"filter,omitempty"`
	Pupil  string `yaml:"pupil,omitempty"`
	Module string `yaml:"module,omitempty"`
}

// Keywords are the caller-supplied inputs to CommonKeywords. ExpType and
// Reftype are required; Author and UseAfter fall back to the defaults.
// ExpType may also be "N/A" or "ANY".
type Keywords struct {
	Reftype     string
	Title       string
	Description string
	ExpType     string
	Author      string
	UseAfter    string
	Module      string
	Filter      string
	Pupil       string
	ModelType   string
	Filename    string
}

// CommonKeywords builds the metadata block shared by all reference files.
func CommonKeywords(k Keywords) (Meta, error) {
	if k.ExpType == "" {
		return Meta{}, ErrExpTypeNotSet
	}
	if k.Reftype == "" {
		return Meta{}, ErrReftypeNotSet
	}

	author := k.Author
	if author == "" {
		author = DefaultAuthor
	}
	useAfter := k.UseAfter
	if useAfter == "" {
		useAfter = DefaultUseAfter
	}

	return Meta{
		Author:      author,
		Description: k.Description,
		Exposure:    Exposure{Type: k.ExpType},
		Instrument: Instrument{
			Name:   InstrumentName,
			Filter: k.Filter,
			Pupil:  k.Pupil,
			Module: k.Module,
		},
		Pedigree:  Pedigree,
		Reftype:   k.Reftype,
		Telescope: Telescope,
		Title:     k.Title,
		UseAfter:  useAfter,
		ModelType: k.ModelType,
		Filename:  k.Filename,
	}, nil
}

func (m Meta) validate() error {
	required := []struct{ name, value string }{
		{"author", m.Author},
		{"exposure.type", m.Exposure.Type},
		{"instrument.name", m.Instrument.Name},
		{"pedigree", m.Pedigree},
		{"reftype", m.Reftype},
		{"telescope", m.Telescope},
		{"useafter", m.UseAfter},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: meta.%s is empty", ErrInvalidModel, f.name)
		}
	}
	return nil
}

// ============================================================================
// UNITS
// ============================================================================

// UnitTag is the ASDF tag written for unit values.
const UnitTag = "!unit/unit-1.0.0"

// Unit is an astropy-style unit string such as "micron".
type Unit string

// Micron is the wavelength unit of every NIRCam grism model.
const Micron Unit = "micron"

// MarshalYAML writes u as a tagged unit scalar.
func (u Unit) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: UnitTag, Value: string(u)}, nil
}

// UnmarshalYAML reads a unit scalar, tagged or not.
func (u *Unit) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("unit must be a scalar, got kind %d", n.Kind)
	}
	*u = Unit(n.Value)
	return nil
}
