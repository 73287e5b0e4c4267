package nircam

import (
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// OPTIONS — Functional options for the reference-file builders
// ============================================================================

// SpecWCSOption configures CreateGrismSpecWCS and CreateGrismSpecWCSBatch.
type SpecWCSOption func(*specWCSConfig)

type specWCSConfig struct {
	Filter  string // inferred from the conf file name when empty
	Pupil   string // inferred from the conf file name when empty
	Module  string // inferred from the conf file name when empty
	Author  string
	History string // "Created from <conffile>" when empty
	OutName string
	Jobs    int // batch concurrency limit
	Logger  *zap.Logger
	Now     func() time.Time
}

// WithFilter sets the filter instead of inferring it from the file name.
func WithFilter(filter string) SpecWCSOption {
	return func(c *specWCSConfig) {
		c.Filter = filter
	}
}

// WithPupil sets the pupil (GRISMR or GRISMC).
func WithPupil(pupil string) SpecWCSOption {
	return func(c *specWCSConfig) {
		c.Pupil = pupil
	}
}

// WithModule sets the NIRCam module (A or B).
func WithModule(module string) SpecWCSOption {
	return func(c *specWCSConfig) {
		c.Module = module
	}
}

// WithAuthor sets the author recorded in the metadata and history.
func WithAuthor(author string) SpecWCSOption {
	return func(c *specWCSConfig) {
		if author != "" {
			c.Author = author
		}
	}
}

// WithHistory sets the history description.
func WithHistory(history string) SpecWCSOption {
	return func(c *specWCSConfig) {
		c.History = history
	}
}

// WithOutName sets the output path. Ignored by the batch builder.
func WithOutName(name string) SpecWCSOption {
	return func(c *specWCSConfig) {
		if name != "" {
			c.OutName = name
		}
	}
}

// WithJobs bounds how many conf files the batch builder converts at once.
// Values below 1 mean one at a time.
func WithJobs(n int) SpecWCSOption {
	return func(c *specWCSConfig) {
		c.Jobs = n
	}
}

// WithLogger routes diagnostics to l.
func WithLogger(l *zap.Logger) SpecWCSOption {
	return func(c *specWCSConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) SpecWCSOption {
	return func(c *specWCSConfig) {
		if now != nil {
			c.Now = now
		}
	}
}

func applySpecWCSOptions(opts []SpecWCSOption) *specWCSConfig {
	cfg := &specWCSConfig{
		Author:  DefaultAuthor,
		OutName: DefaultSpecWCSName,
		Jobs:    1,
		Logger:  zap.NewNop(),
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ============================================================================
// WAVELENGTH RANGE OPTIONS
// ============================================================================

// RangeOption configures the wavelength-range builders.
type RangeOption func(*rangeConfig)

type rangeConfig struct {
	Ranges        []RangeEntry    // nil means the built-in table
	ExtractOrders []ExtractOrders // nil means derived from the table
	Author        string
	History       string
	OutName       string
	Logger        *zap.Logger
	Now           func() time.Time
}

// WithRanges replaces the built-in (order, filter, min, max) table. A nil
// slice keeps the built-in table.
func WithRanges(entries []RangeEntry) RangeOption {
	return func(c *rangeConfig) {
		if entries == nil {
			return
		}
		c.Ranges = append([]RangeEntry{}, entries...)
	}
}

// WithExtractOrders replaces the default per-filter extraction orders.
func WithExtractOrders(xs []ExtractOrders) RangeOption {
	return func(c *rangeConfig) {
		if xs == nil {
			return
		}
		c.ExtractOrders = make([]ExtractOrders, len(xs))
		for i, x := range xs {
			c.ExtractOrders[i] = ExtractOrders{Filter: x.Filter, Orders: append([]int{}, x.Orders...)}
		}
	}
}

// WithRangeAuthor sets the author.
func WithRangeAuthor(author string) RangeOption {
	return func(c *rangeConfig) {
		if author != "" {
			c.Author = author
		}
	}
}

// WithRangeHistory sets the history description.
func WithRangeHistory(history string) RangeOption {
	return func(c *rangeConfig) {
		if history != "" {
			c.History = history
		}
	}
}

// WithRangeOutName sets the output path.
func WithRangeOutName(name string) RangeOption {
	return func(c *rangeConfig) {
		if name != "" {
			c.OutName = name
		}
	}
}

// WithRangeLogger routes diagnostics to l.
func WithRangeLogger(l *zap.Logger) RangeOption {
	return func(c *rangeConfig) {
		if l != nil {
			c.Logger = l
		}
	}
}

// WithRangeClock replaces time.Now for history timestamps.
func WithRangeClock(now func() time.Time) RangeOption {
	return func(c *rangeConfig) {
		if now != nil {
			c.Now = now
		}
	}
}

func applyRangeOptions(m mode, opts []RangeOption) *rangeConfig {
	cfg := &rangeConfig{
		Author:  DefaultAuthor,
		History: m.history,
		OutName: m.outName,
		Logger:  zap.NewNop(),
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
