// Package frontend decides how a goowl run uses the analysis host and
// configures the host for analysis.
package frontend

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/checker"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"

	"github.com/mpyw/goowl"
	"github.com/mpyw/goowl/internal/config"
	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/fatal"
	"github.com/mpyw/goowl/internal/intercept"
	"github.com/mpyw/goowl/internal/session"
	internalssa "github.com/mpyw/goowl/internal/ssa"
)

// Options are the host settings of an analysis run.
type Options struct {
	// LoadMode never asks for compiled files or export data, so nothing is
	// built and dependencies are type-checked from source.
	LoadMode packages.LoadMode
	// SSAMode is the builder mode; NaiveForm skips every lifting pass.
	SSAMode ssa.BuilderMode
	// Variant selects the inference engine.
	Variant engine.Variant
}

// AnalysisOptions returns the settings every analysis run uses.
func AnalysisOptions() Options {
	return Options{
		LoadMode: packages.LoadAllSyntax | packages.NeedModule,
		SSAMode:  internalssa.DefaultMode,
		Variant:  engine.Dataflow,
	}
}

// Env is what the frontend needs from the process.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
	Dir    string
	Abort  func(error) // nil exits the process
}

// UsageError reports that the host rejected its arguments.
type UsageError struct {
	Code int
	Err  error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// Driver is a host configured for analysis.
type Driver struct {
	opts     Options
	patterns []string
	tests    bool
	dir      string
	stderr   io.Writer
	logger   *slog.Logger
	sess     *session.Session
	analyzer *analysis.Analyzer
}

// Configure parses args the way the host does and returns a driver with the
// interceptor installed. Argument errors are returned as *UsageError.
func Configure(args []string, env Env) (*Driver, error) {
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stderr == nil {
		env.Stderr = os.Stderr
	}
	if env.Config == nil {
		env.Config = config.Default()
	}
	if env.Logger == nil {
		env.Logger = session.NewLogger(env.Config.LogLevel, env.Stderr)
	}

	fs := flag.NewFlagSet(goowl.Analyzer.Name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	tests := fs.Bool("test", true, "indicates whether test files should be analyzed, too")
	goowl.Analyzer.Flags.VisitAll(func(f *flag.Flag) {
		fs.Var(f.Value, f.Name, f.Usage)
	})

	if err := fs.Parse(args); err != nil {
		return nil, &UsageError{Code: 2, Err: err}
	}
	if fs.NArg() == 0 {
		return nil, &UsageError{Code: 2, Err: errors.New("no package patterns given")}
	}

	opts := AnalysisOptions()

	sess, err := session.New(session.Options{
		Config:  env.Config,
		Variant: opts.Variant,
		Out:     env.Stdout,
		Logger:  env.Logger,
		Abort:   env.Abort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	icp := intercept.New(sess.Scheduler, sess.Factory, sess.Sources, sess.Abort, sess.Logger)

	return &Driver{
		opts:     opts,
		patterns: fs.Args(),
		tests:    *tests,
		dir:      env.Dir,
		stderr:   env.Stderr,
		logger:   env.Logger,
		sess:     sess,
		analyzer: goowl.New(icp, internalssa.NewBuilder(opts.SSAMode)),
	}, nil
}

// Run loads the packages, analyzes them and waits until every result has
// been written. It returns the host's exit code.
func (d *Driver) Run(ctx context.Context) int {
	exit := d.analyze(ctx)

	if err := d.sess.Close(); err != nil {
		d.sess.Abort(err)
		return fatal.ExitCode(err)
	}

	return exit
}

func (d *Driver) analyze(ctx context.Context) int {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    d.opts.LoadMode,
		Dir:     d.dir,
		Tests:   d.tests,
	}

	pkgs, err := packages.Load(cfg, d.patterns...)
	if err != nil {
		fmt.Fprintf(d.stderr, "%s: %v\n", goowl.Analyzer.Name, err)
		return 1
	}

	exit := 0
	if n := d.printErrors(pkgs); n > 0 {
		exit = 1
	}

	d.logger.Info("packages loaded", "count", len(pkgs))

	graph, err := checker.Analyze([]*analysis.Analyzer{d.analyzer}, pkgs, &checker.Options{})
	if err != nil {
		fmt.Fprintf(d.stderr, "%s: %v\n", goowl.Analyzer.Name, err)
		return 1
	}

	for _, act := range graph.Roots {
		if act.Err != nil {
			fmt.Fprintf(d.stderr, "%s: %s: %v\n", goowl.Analyzer.Name, act.Package.PkgPath, act.Err)
			exit = 1
		}
	}

	return exit
}

// printErrors prints the load and type errors of pkgs and their
// dependencies, each package once.
func (d *Driver) printErrors(pkgs []*packages.Package) int {
	n := 0
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, err := range pkg.Errors {
			fmt.Fprintln(d.stderr, err)
			n++
		}
	})

	return n
}
