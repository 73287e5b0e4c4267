package nircam

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrFilenameInference is returned when filter, pupil or module is unset and
// cannot be read from the conf file name.
var ErrFilenameInference = errors.New("cannot infer instrument setup from file name")

// Instrument is the optical setup a conf file describes.
type Instrument struct {
	Filter string
	Pupil  string
	Module string
}

// InferInstrument reads the setup from a name like NIRCAM_F444W_modB_R.conf:
// the filter is the second "_" field, the pupil is GRISM plus the last
// character of the stem and the module is the third character from the end.
// Only the base name is considered.
func InferInstrument(conffile string) (Instrument, error) {
	base := filepath.Base(conffile)
	stem, _, _ := strings.Cut(base, ".")

	fields := strings.Split(base, "_")
	if len(fields) < 2 || fields[1] == "" {
		return Instrument{}, fmt.Errorf("%w: no filter field in %s", ErrFilenameInference, base)
	}
	if len(stem) < 3 {
		return Instrument{}, fmt.Errorf("%w: stem %q too short", ErrFilenameInference, stem)
	}
	return Instrument{
		Filter: fields[1],
		Pupil:  "GRISM" + stem[len(stem)-1:],
		Module: stem[len(stem)-3 : len(stem)-2],
	}, nil
}

// resolveInstrument fills the unset fields of want from the file name.
// inferred lists the fields that came from the name.
func resolveInstrument(conffile string, want Instrument) (got Instrument, inferred []string, err error) {
	got = want
	if got.Filter != "" && got.Pupil != "" && got.Module != "" {
		return got, nil, nil
	}
	fromName, err := InferInstrument(conffile)
	if err != nil {
		return Instrument{}, nil, err
	}
	if got.Filter == "" {
		got.Filter = fromName.Filter
		inferred = append(inferred, "filter")
	}
	if got.Pupil == "" {
		got.Pupil = fromName.Pupil
		inferred = append(inferred, "pupil")
	}
	if got.Module == "" {
		got.Module = fromName.Module
		inferred = append(inferred, "module")
	}
	return got, inferred, nil
}

// tsgrismFilters are the module A GRISMR filters also used for time series.
var tsgrismFilters = map[string]bool{
	"F277W":  true,
	"F322W2": true,
	"F356W":  true,
	"F444W":  true,
}

// PExpType returns the exposure types a specwcs file for inst applies to.
func PExpType(inst Instrument) string {
	if inst.Module == "A" && inst.Pupil == "GRISMR" && tsgrismFilters[inst.Filter] {
		return ExpTypeWFSS + "|" + ExpTypeTSGrism
	}
	return ExpTypeWFSS
}
