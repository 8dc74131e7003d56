// Package intercept replaces the host's per-function analysis step: it copies
// each definition's facts out of the host and submits them for analysis.
package intercept

import (
	"fmt"
	"log/slog"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ssa"

	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/facts"
	"github.com/mpyw/goowl/internal/fatal"
	internalssa "github.com/mpyw/goowl/internal/ssa"
)

// Spawner schedules analysis units without blocking.
type Spawner interface {
	Spawn(unit engine.Unit) bool
}

// SourceReader reads whole source files.
type SourceReader interface {
	Read(filename string) (string, error)
}

// Interceptor turns definitions into scheduled analysis units.
type Interceptor struct {
	spawner Spawner
	factory engine.Factory
	sources SourceReader
	abort   func(error)
	logger  *slog.Logger
}

// New creates an Interceptor. abort is called with every environment error
// before it is returned; in a real run it ends the process.
func New(spawner Spawner, factory engine.Factory, sources SourceReader, abort func(error), logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Interceptor{
		spawner: spawner,
		factory: factory,
		sources: sources,
		abort:   abort,
		logger:  logger,
	}
}

// Intercept harvests the facts of fn and submits them. It never waits for the
// analysis and never deduplicates: every call submits a fresh unit.
func (i *Interceptor) Intercept(pass *analysis.Pass, fn *ssa.Function) error {
	ff, err := i.harvest(pass, fn)
	if err != nil {
		if i.abort != nil {
			i.abort(err)
		}
		return err
	}

	i.logger.Debug("facts prepared", "fn", ff.Context.ID, "locals", len(ff.Body.Locals))
	i.spawner.Spawn(i.factory(ff))

	return nil
}

func (i *Interceptor) harvest(pass *analysis.Pass, fn *ssa.Function) (*facts.FunctionFacts, error) {
	ctx := internalssa.Describe(fn)

	tf := pass.Fset.File(fn.Pos())
	if tf == nil {
		return nil, fatal.Env("resolve source file", "", fmt.Errorf("no file for %s", ctx.ID))
	}

	src, err := i.sources.Read(tf.Name())
	if err != nil {
		return nil, err
	}
	if len(src) != tf.Size() {
		return nil, fatal.Env("read source", tf.Name(),
			fmt.Errorf("file has %d bytes on disk but %d when parsed", len(src), tf.Size()))
	}

	return &facts.FunctionFacts{
		Filename: tf.Name(),
		Source:   src,
		Offset:   tf.Base(),
		Context:  ctx,
		Body:     internalssa.Extract(fn, pass.TypesInfo),
	}, nil
}

// Logger returns the interceptor's logger.
func (i *Interceptor) Logger() *slog.Logger {
	return i.logger
}
