// internal/app/app.go
// Command wiring for co2uncert. Run returns a process exit code so main
// stays a one-liner and tests can drive the full CLI in-process.

package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"co2sys-core/carbonate"
	"co2sys-core/deriv"
	"co2sys-core/quantity"
	"co2sys-core/solver"
	"co2sys-core/stepsize"
	"co2sys-core/uncert"
	"co2sys/internal/report"
	"co2sys/internal/scenario"
	"co2sys/internal/version"
)

// Exit codes: 0 success, 1 runtime failure (solver), 2 bad usage or
// validation.
const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

type options struct {
	scenarioPath string
	format       string
	workers      int
	verbose      bool
}

// Run executes the CLI and returns its exit code.
func Run(argv []string, stdout, stderr io.Writer) int {
	opts := &options{}
	root := newRootCmd(opts, stdout, stderr)
	root.SetArgs(argv)
	if err := root.Execute(); err != nil {
		if isValidationError(err) {
			return exitUsage
		}
		return exitRuntime
	}
	return exitOK
}

func isValidationError(err error) bool {
	var se *deriv.SolverError
	if errors.As(err, &se) {
		return false
	}
	var ue usageError
	return errors.Is(err, quantity.ErrUnknownQuantity) ||
		errors.Is(err, stepsize.ErrBadConfig) ||
		errors.As(err, &ue)
}

// usageError marks scenario and flag problems as exit-code-2 failures.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "co2uncert",
		Short:         "propagate uncertainties through seawater carbonate chemistry",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&opts.scenarioPath, "scenario", "s", "", "scenario YAML file (required)")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	root.PersistentFlags().IntVarP(&opts.workers, "workers", "w", 0, "parallel solver invocations (overrides scenario)")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "debug logging")
	root.AddCommand(newForwardCmd(opts, stdout, stderr))
	root.AddCommand(newPropagateCmd(opts, stdout, stderr))
	return root
}

func newForwardCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "forward",
		Short: "forward finite-difference derivatives of outputs w.r.t. inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(opts, stderr)
			if err != nil {
				return err
			}
			defer env.close()
			if len(env.sc.Request.Inputs) == 0 {
				return usageError{fmt.Errorf("scenario: request.inputs is required for forward")}
			}

			start := time.Now()
			table, dxs, err := deriv.Forward(env.solve, env.reg, env.in, env.base,
				env.sc.Request.Outputs, env.sc.Request.Inputs, env.opts)
			if err != nil {
				return err
			}
			env.log.Debugw("computed derivatives",
				"outputs", len(table), "inputs", len(dxs), "took", time.Since(start))

			if opts.format == "json" {
				return report.DerivativesJSON(stdout, table, dxs)
			}
			return report.Derivatives(stdout, table, dxs)
		},
	}
}

func newPropagateCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "propagate",
		Short: "propagate input uncertainties to output uncertainties",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := load(opts, stderr)
			if err != nil {
				return err
			}
			defer env.close()
			if len(env.sc.Request.Sources) == 0 {
				return usageError{fmt.Errorf("scenario: request.sources is required for propagate")}
			}

			start := time.Now()
			totals, components, err := uncert.Propagate(env.solve, env.reg, env.in, env.base,
				env.sc.Request.Outputs, env.sc.SourceMagnitudes(), env.opts)
			if err != nil {
				return err
			}
			env.log.Debugw("propagated uncertainties",
				"outputs", len(totals), "sources", len(env.sc.Request.Sources), "took", time.Since(start))

			if opts.format == "json" {
				return report.UncertaintiesJSON(stdout, totals, components)
			}
			return report.Uncertainties(stdout, totals, components)
		},
	}
}

// env bundles everything a subcommand needs after scenario load and the
// baseline solve.
type env struct {
	sc    *scenario.Scenario
	solve solver.Func
	reg   *quantity.Registry
	in    solver.Input
	base  solver.Result
	opts  deriv.Options
	log   *zap.SugaredLogger
}

func load(opts *options, stderr io.Writer) (*env, error) {
	log := newLogger(stderr, opts.verbose)

	if opts.scenarioPath == "" {
		return nil, usageError{fmt.Errorf("--scenario is required")}
	}
	sc, err := scenario.Load(opts.scenarioPath)
	if err != nil {
		return nil, usageError{err}
	}
	derivOpts, err := sc.DerivOptions()
	if err != nil {
		return nil, err
	}
	if opts.workers > 0 {
		derivOpts.Workers = opts.workers
	}

	eng := carbonate.New(carbonate.Config{})
	in := sc.Input()
	start := time.Now()
	base, err := eng.Solve(in)
	if err != nil {
		return nil, fmt.Errorf("baseline solve: %w", err)
	}
	log.Debugw("solved baseline", "took", time.Since(start))

	return &env{
		sc:    sc,
		solve: eng.Func(),
		reg:   quantity.NewRegistry(carbonate.Vocabulary()),
		in:    in,
		base:  base,
		opts:  derivOpts,
		log:   log,
	}, nil
}

func (e *env) close() { _ = e.log.Sync() }

func newLogger(w io.Writer, verbose bool) *zap.SugaredLogger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}
