// Package session holds the state of one goowl run: the source cache, the
// worker runtime, the scheduler and the result emitter. A Session is built
// once by the frontend and handed to the analyzer by closure capture.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mpyw/goowl/internal/config"
	"github.com/mpyw/goowl/internal/emit"
	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/fatal"
	"github.com/mpyw/goowl/internal/sched"
	"github.com/mpyw/goowl/internal/source"
)

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	Config  *config.Config
	Variant engine.Variant
	Out     io.Writer
	Logger  *slog.Logger
	Clock   sched.Clock

	// Abort replaces the process exit on fatal errors.
	Abort func(error)
}

// Session owns everything a run shares across packages.
type Session struct {
	Sources   *source.Reader
	Scheduler *sched.Scheduler
	Factory   engine.Factory
	Logger    *slog.Logger

	rt    *sched.Runtime
	abort func(error)
}

// New creates a Session and starts its worker runtime.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = NewLogger(cfg.LogLevel, os.Stderr)
	}

	encoding, err := emit.ParseEncoding(cfg.Format)
	if err != nil {
		return nil, err
	}

	emitter, err := emit.New(opts.Out, encoding)
	if err != nil {
		return nil, err
	}

	sources, err := source.NewReader(cfg.SourceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}

	s := &Session{
		Sources: sources,
		Factory: engine.New(opts.Variant),
		Logger:  opts.Logger,
		abort:   opts.Abort,
	}
	if s.abort == nil {
		s.abort = s.exit
	}

	s.rt = sched.NewRuntime(cfg.Workers, cfg.StackMax)
	s.Scheduler = sched.New(s.rt, emitter, sched.Options{
		Grace:   cfg.Grace,
		Clock:   opts.Clock,
		Logger:  opts.Logger,
		OnFatal: s.Abort,
	})

	opts.Logger.Info("session started",
		"workers", cfg.Workers,
		"variant", opts.Variant.String(),
		"format", cfg.Format,
	)

	return s, nil
}

// Abort reports a fatal error. Unless the hook was replaced, it does not
// return.
func (s *Session) Abort(err error) {
	if err == nil {
		return
	}
	s.abort(err)
}

func (s *Session) exit(err error) {
	s.Logger.Error("fatal error", "class", string(fatal.ClassOf(err)), "err", err)
	os.Exit(fatal.ExitCode(err))
}

// Close waits for every spawned unit to be drained, then stops the workers.
// It returns the first fatal error seen by the scheduler.
func (s *Session) Close() error {
	err := s.Scheduler.Wait()

	if rerr := s.rt.Close(); rerr != nil {
		err = errors.Join(err, fatal.Wrap("stop runtime", "", rerr))
	}
	s.Sources.Close()

	return err
}

// NewLogger returns the stderr logger for a verbosity level. "quiet" keeps
// only errors.
func NewLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	default:
		lvl = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
