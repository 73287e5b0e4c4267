package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hbushouse/jwreftools/nircam"
	"github.com/hbushouse/jwreftools/reffile"
)

type specWCSFlags struct {
	filter  string
	pupil   string
	module  string
	out     string
	outDir  string
	author  string
	history string
	jobs    int
}

func newSpecWCSCmd(a *app) *cobra.Command {
	var f specWCSFlags

	cmd := &cobra.Command{
		Use:   "specwcs CONF...",
		Short: "Build specwcs reference files from aXe conf files",
		Long: `Build a specwcs reference file from each aXe conf file.

Filter, pupil and module are read from names like NIRCAM_F444W_modA_R.conf
unless given. A single conf file is written to --out; with several files or
--outdir each is written to OUTDIR/<name>_specwcs.asdf.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSpecWCS(cmd, args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.filter, "filter", "", "Filter name (default: from file name)")
	fl.StringVar(&f.pupil, "pupil", "", "Pupil, GRISMR or GRISMC (default: from file name)")
	fl.StringVar(&f.module, "module", "", "NIRCam module, A or B (default: from file name)")
	fl.StringVar(&f.out, "out", nircam.DefaultSpecWCSName, "Output file for a single conf file")
	fl.StringVar(&f.outDir, "outdir", "", "Output directory for batch runs (default: from config)")
	fl.StringVar(&f.author, "author", "", "Author (default: from config)")
	fl.StringVar(&f.history, "history", "", "History note (default: \"Created from CONF\")")
	fl.IntVar(&f.jobs, "jobs", 0, "Conf files converted at once (default: from config)")
	return cmd
}

func (a *app) runSpecWCS(cmd *cobra.Command, args []string, f specWCSFlags) error {
	batch := len(args) > 1 || cmd.Flags().Changed("outdir")
	if batch && cmd.Flags().Changed("out") {
		return usageError{errors.New("--out applies to a single conf file; use --outdir")}
	}

	author := f.author
	if author == "" {
		author = a.cfg.Author
	}
	opts := []nircam.SpecWCSOption{
		nircam.WithFilter(f.filter),
		nircam.WithPupil(f.pupil),
		nircam.WithModule(f.module),
		nircam.WithAuthor(author),
		nircam.WithHistory(f.history),
		nircam.WithLogger(a.logger),
	}

	ctx := cmd.Context()
	w := cmd.OutOrStdout()
	if !batch {
		model, err := nircam.CreateGrismSpecWCS(ctx, args[0], append(opts, nircam.WithOutName(f.out))...)
		if err != nil {
			return a.fail(err)
		}
		printSpecWCS(w, f.out, model)
		return nil
	}

	outDir := f.outDir
	if outDir == "" {
		outDir = a.cfg.SpecWCS.OutDir
	}
	jobs := f.jobs
	if jobs < 1 {
		jobs = a.cfg.SpecWCS.Jobs
	}
	models, err := nircam.CreateGrismSpecWCSBatch(ctx, args, outDir, append(opts, nircam.WithJobs(jobs))...)
	if err != nil {
		return a.fail(err)
	}
	for i, model := range models {
		printSpecWCS(w, nircam.BatchOutName(outDir, args[i]), model)
	}
	return nil
}

func printSpecWCS(w io.Writer, path string, m *reffile.GrismModel) {
	orders := make([]string, len(m.Orders))
	for i, o := range m.Orders {
		orders[i] = fmt.Sprintf("%+d", o)
	}
	inst := m.Meta.Instrument
	fmt.Fprintf(w, "%s: %s %s module %s, orders %s, p_exptype %s\n",
		path, inst.Filter, inst.Pupil, inst.Module, strings.Join(orders, " "), m.Meta.Exposure.PExpType)
}
