package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hbushouse/jwreftools/config"
	"github.com/hbushouse/jwreftools/internal/diag"
)

// ============================================================================
// JWREFTOOLS CLI — NIRCam grism reference files from aXe conf files
// ============================================================================
//   jwreftools specwcs NIRCAM_F444W_modA_R.conf
//   jwreftools specwcs --outdir build confs/*.conf --jobs 4
//   jwreftools wavelengthrange --mode tsgrism --ranges ranges.csv
//   jwreftools inspect NIRCAM_F444W_modA_R.conf
// ============================================================================

const version = "0.8.0"

// Exit statuses.
const (
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		fatalf(exitCode(err), "%v", err)
	}
}

// app carries the state shared by the subcommands once the persistent flags
// are resolved.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "jwreftools",
		Short: "Build JWST NIRCam grism reference files",
		Long: `jwreftools converts aXe grism configuration files and wavelength-range
tables into NIRCam specwcs and wavelengthrange reference files.

Environment:
  JWREFTOOLS_AUTHOR      Author recorded in generated files
  JWREFTOOLS_LOG_LEVEL   debug, info, warn or error`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML run configuration")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: console, json")

	root.AddCommand(
		newSpecWCSCmd(a),
		newWavelengthRangeCmd(a),
		newInspectCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads the configuration, applies flag overrides and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return usageError{err}
	}

	logger, err := diag.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.Named(cmd.Name())
	return nil
}

// fail logs err with its class and returns it unchanged.
func (a *app) fail(err error) error {
	a.logger.Error("command failed", zap.String("code", string(diag.Classify(err))), zap.Error(err))
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "jwreftools %s\n", version)
			return nil
		},
	}
}

// ============================================================================
// ERRORS & EXIT STATUS
// ============================================================================

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// usageArgs wraps a cobra argument validator so its errors count as usage
// errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func exitCode(err error) int {
	var u usageError
	if errors.As(err, &u) {
		return exitUsage
	}
	return exitError
}

func fatalf(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(code)
}
