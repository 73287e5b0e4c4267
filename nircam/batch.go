package nircam

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hbushouse/jwreftools/reffile"
)

// BatchOutName returns the path the batch builder writes conffile to:
// outDir/<stem>_specwcs.asdf.
func BatchOutName(outDir, conffile string) string {
	base := filepath.Base(conffile)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+"_specwcs.asdf")
}

// CreateGrismSpecWCSBatch converts several independent conf files, at most
// WithJobs at a time. Results are returned in input order. The first failure
// cancels the conversions that have not started; files already written stay.
func CreateGrismSpecWCSBatch(ctx context.Context, confs []string, outDir string, opts ...SpecWCSOption) ([]*reffile.GrismModel, error) {
	base := applySpecWCSOptions(opts)
	jobs := base.Jobs
	if jobs < 1 {
		jobs = 1
	}

	results := make([]*reffile.GrismModel, len(confs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)

	for i, conffile := range confs {
		cfg := *base
		cfg.OutName = BatchOutName(outDir, conffile)
		eg.Go(func() error {
			model, err := createGrismSpecWCS(egCtx, conffile, &cfg)
			if err != nil {
				return err
			}
			results[i] = model
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	base.Logger.Info("Batch complete", zap.Int("files", len(confs)), zap.Int("jobs", jobs))
	return results, nil
}
