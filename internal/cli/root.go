// Package cli is the goowl command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mpyw/goowl/internal/config"
	"github.com/mpyw/goowl/internal/fatal"
	"github.com/mpyw/goowl/internal/frontend"
	"github.com/mpyw/goowl/internal/session"
)

// ExitError carries the exit code of a finished run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// newRootCmd returns the goowl command. Flag parsing is left to the host, so
// every argument reaches RunE untouched.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "goowl [flags] packages...",
		Short: "Ownership and lifetime facts for Go functions",
		Long: `goowl runs the Go analysis host over the given packages and writes one
JSON record per analyzed function, method or closure to standard output.

Host introspection flags (-V, -flags, -help) run the host unmodified.
Settings are read from .goowl.yaml and GOOWL_* environment variables.`,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frontend.Decide(args) == frontend.ModePassthrough {
				frontend.Passthrough()
				return nil
			}

			return analyze(cmd.Context(), args, stdout, stderr)
		},
	}
}

func analyze(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	dir, err := os.Getwd()
	if err != nil {
		return &ExitError{Code: fatal.ExitEnvironment, Err: fatal.Env("resolve working directory", "", err)}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return &ExitError{Code: fatal.ExitEnvironment, Err: err}
	}

	d, err := frontend.Configure(args, frontend.Env{
		Config: cfg,
		Logger: session.NewLogger(cfg.LogLevel, stderr),
		Stdout: stdout,
		Stderr: stderr,
		Dir:    dir,
	})
	if err != nil {
		var usage *frontend.UsageError
		if errors.As(err, &usage) {
			return &ExitError{Code: usage.Code, Err: err}
		}
		return &ExitError{Code: fatal.ExitInternal, Err: err}
	}

	if code := d.Run(ctx); code != 0 {
		return &ExitError{Code: code}
	}

	return nil
}

// Execute runs the command with the process arguments and returns the exit
// code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *ExitError
	if !errors.As(err, &exit) {
		fmt.Fprintln(stderr, "goowl:", err)
		return 1
	}
	if exit.Err != nil {
		fmt.Fprintln(stderr, "goowl:", exit.Err)
	}

	return exit.Code
}
