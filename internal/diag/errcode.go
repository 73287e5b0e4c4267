package diag

import (
	"context"
	"errors"
	"os"

	"github.com/hbushouse/jwreftools/beam"
	"github.com/hbushouse/jwreftools/conf"
	"github.com/hbushouse/jwreftools/nircam"
	"github.com/hbushouse/jwreftools/reffile"
)

// Code is a coarse error class, logged next to failures.
// It is independent of the exit status.
type Code string

const (
	CodeUnknown Code = "unknown"
	CodeInput   Code = "input"   // malformed conf file or override table
	CodeModel   Code = "model"   // missing coefficients or invalid artifact
	CodeUsage   Code = "usage"   // caller left a required value unset
	CodeCancel  Code = "cancel"
	CodeIO      Code = "io"
)

// Classify maps err to its Code using the package sentinels only.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, conf.ErrMinMaxExpected) ||
		errors.Is(err, conf.ErrMalformedNumber) ||
		errors.Is(err, beam.ErrUnexpectedRange) ||
		errors.Is(err, beam.ErrRangeCollision) ||
		errors.Is(err, beam.ErrBeamNotInteger) {
		return CodeInput
	}
	if errors.Is(err, nircam.ErrMissingCoefficients) || errors.Is(err, reffile.ErrInvalidModel) {
		return CodeModel
	}
	if errors.Is(err, nircam.ErrFilenameInference) ||
		errors.Is(err, reffile.ErrExpTypeNotSet) ||
		errors.Is(err, reffile.ErrReftypeNotSet) {
		return CodeUsage
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
