// Package nircam builds the NIRCam grism reference files: the specwcs
// dispersion models read from aXe conf files and the wavelength-range
// tables for the WFSS and time-series modes.
package nircam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hbushouse/jwreftools/beam"
	"github.com/hbushouse/jwreftools/conf"
	"github.com/hbushouse/jwreftools/poly"
	"github.com/hbushouse/jwreftools/reffile"
)

// ============================================================================
// SPECWCS — aXe conf file → per-order dispersion polynomials
// ============================================================================
// For every beam:
//   DISPL = (l0, l1)  →  displ(t) = l0 + l1*t,  invdispl(w) = -l0/l1 + w/l1
//   DISPX, DISPY      →  same construction for the x and y offsets
// A zero slope yields an inverse that is identically zero. GRISMR files have
// zero y coefficients and GRISMC files zero x coefficients.
// ============================================================================

const (
	// DefaultAuthor is recorded when no author is given.
	DefaultAuthor = reffile.DefaultAuthor

	// DefaultSpecWCSName is the default specwcs output path.
	DefaultSpecWCSName = "nircam_wfss_specwcs.asdf"

	// ExpTypeWFSS and ExpTypeTSGrism are the NIRCam grism exposure types.
	ExpTypeWFSS    = "NRC_WFSS"
	ExpTypeTSGrism = "NRC_TSGRISM"
)

var specWCSSoftware = reffile.Software{
	Name:     "nircam_grism_reffiles.py",
	Homepage: reffile.Homepage,
	Version:  "0.8.0",
}

// ErrMissingCoefficients is returned when a beam lacks one of the DISPL,
// DISPX or DISPY coefficient pairs, or when a file has no beams at all.
var ErrMissingCoefficients = errors.New("missing dispersion coefficients")

// requiredPairs are the coefficient pairs every beam must supply.
var requiredPairs = [...]string{"DISPL", "DISPX", "DISPY"}

// Dispersion holds the per-order models. Every collection is indexed like
// Orders.
type Dispersion struct {
	Orders   []int
	Displ    []poly.Polynomial1D
	Dispx    []poly.Polynomial1D
	Dispy    []poly.Polynomial1D
	Invdispl []poly.Polynomial1D
	Invdispx []poly.Polynomial1D
	Invdispy []poly.Polynomial1D
}

// BuildDispersion builds the forward and inverse models of every beam, in
// beam order.
func BuildDispersion(beams *beam.Beams) (*Dispersion, error) {
	if beams == nil || beams.Len() == 0 {
		return nil, fmt.Errorf("%w: no beams", ErrMissingCoefficients)
	}

	d := &Dispersion{}
	for _, name := range beams.Names() {
		order, err := beam.Order(name)
		if err != nil {
			return nil, err
		}
		rec, _ := beams.Get(name)

		var pairs [len(requiredPairs)][2]float64
		for i, key := range requiredPairs {
			v, ok := rec.Get(key)
			if !ok {
				return nil, fmt.Errorf("%w: beam %s has no %s", ErrMissingCoefficients, name, key)
			}
			p, ok := v.Tuple()
			if !ok {
				return nil, fmt.Errorf("%w: beam %s %s is a %s, not a pair", ErrMissingCoefficients, name, key, v.Kind())
			}
			pairs[i] = p
		}

		d.Orders = append(d.Orders, order)
		fwd, inv := poly.LinearPair(pairs[0][0], pairs[0][1])
		d.Displ = append(d.Displ, fwd)
		d.Invdispl = append(d.Invdispl, inv)
		fwd, inv = poly.LinearPair(pairs[1][0], pairs[1][1])
		d.Dispx = append(d.Dispx, fwd)
		d.Invdispx = append(d.Invdispx, inv)
		fwd, inv = poly.LinearPair(pairs[2][0], pairs[2][1])
		d.Dispy = append(d.Dispy, fwd)
		d.Invdispy = append(d.Invdispy, inv)
	}
	return d, nil
}

// CreateGrismSpecWCS converts an aXe conf file into a specwcs reference file
// and writes it. Filter, pupil and module are taken from the file name unless
// set through options. Nothing is written on error.
func CreateGrismSpecWCS(ctx context.Context, conffile string, opts ...SpecWCSOption) (*reffile.GrismModel, error) {
	cfg := applySpecWCSOptions(opts)
	return createGrismSpecWCS(ctx, conffile, cfg)
}

func createGrismSpecWCS(ctx context.Context, conffile string, cfg *specWCSConfig) (*reffile.GrismModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := cfg.Logger.With(zap.String("conf", conffile))

	history := cfg.History
	if history == "" {
		history = "Created from " + conffile
	}

	inst, inferred, err := resolveInstrument(conffile, Instrument{
		Filter: cfg.Filter,
		Pupil:  cfg.Pupil,
		Module: cfg.Module,
	})
	if err != nil {
		return nil, err
	}
	for _, field := range inferred {
		switch field {
		case "filter":
			log.Info("Filter inferred from file name", zap.String("filter", inst.Filter))
		case "pupil":
			log.Info("Pupil inferred from file name", zap.String("pupil", inst.Pupil))
		case "module":
			log.Info("Module inferred from file name", zap.String("module", inst.Module))
		}
	}

	meta, err := reffile.CommonKeywords(reffile.Keywords{
		Reftype:     "specwcs",
		Title:       "NIRCAM Grism Parameters",
		Description: inst.Pupil + " dispersion models",
		ExpType:     ExpTypeWFSS,
		Author:      cfg.Author,
		Module:      inst.Module,
		Filter:      inst.Filter,
		Pupil:       inst.Pupil,
		ModelType:   "NIRCAMGrismModel",
		Filename:    filepath.Base(cfg.OutName),
	})
	if err != nil {
		return nil, err
	}
	meta.Exposure.PExpType = PExpType(inst)
	meta.InputUnits = reffile.Micron
	meta.OutputUnits = reffile.Micron

	rec, err := conf.ReadFile(conffile, conf.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}
	beams, err := beam.Split(rec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", conffile, err)
	}
	disp, err := BuildDispersion(beams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", conffile, err)
	}

	sw := specWCSSoftware
	sw.Author = cfg.Author
	model := &reffile.GrismModel{
		Meta:     meta,
		Displ:    disp.Displ,
		Dispx:    disp.Dispx,
		Dispy:    disp.Dispy,
		Invdispl: disp.Invdispl,
		Invdispx: disp.Invdispx,
		Invdispy: disp.Invdispy,
		Orders:   disp.Orders,
		History:  []reffile.HistoryEntry{reffile.NewHistoryEntry(history, cfg.Now(), sw)},
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := reffile.WriteFile(cfg.OutName, model); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", cfg.OutName, err)
	}
	log.Info("Wrote specwcs reference file",
		zap.String("out", cfg.OutName),
		zap.Ints("orders", model.Orders),
		zap.String("p_exptype", meta.Exposure.PExpType))
	return model, nil
}
