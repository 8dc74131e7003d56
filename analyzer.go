// Package goowl provides the go/analysis analyzer that feeds goowl's
// ownership inference. It reports nothing: every function, method and
// closure of a package is handed to the interceptor, and the results leave
// the process as a stream of records on standard output.
package goowl

import (
	"errors"
	"flag"
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ssa"

	"github.com/mpyw/goowl/internal/directive/ignore"
	"github.com/mpyw/goowl/internal/funcspec"
	"github.com/mpyw/goowl/internal/intercept"
	internalssa "github.com/mpyw/goowl/internal/ssa"
)

// Flags for the analyzer.
var (
	skipGenerated bool
	onlyFuncs     string
)

func init() {
	Analyzer.Flags.BoolVar(&skipGenerated, "skip-generated", true,
		"skip files marked as generated")
	Analyzer.Flags.StringVar(&onlyFuncs, "only", "",
		"comma-separated list of top-level functions to analyze (e.g., pkg.Func or pkg.Type.Method)")
}

const doc = "extracts ownership and lifetime facts of every function for visualization"

// Analyzer is the unmodified analyzer. It builds SSA and returns the
// placeholder result without intercepting anything; introspection runs use it.
var Analyzer = &analysis.Analyzer{
	Name:     "goowl",
	Doc:      doc,
	Requires: []*analysis.Analyzer{internalssa.Builder},
	Run:      func(*analysis.Pass) (any, error) { return nil, nil },
	Flags:    flag.FlagSet{},
}

var ErrNoSSA = errors.New("ssa builder result not found")

// New returns an analyzer that hands every definition of each package to icp.
// builder must produce an *internalssa.Program; it is normally
// [internalssa.Builder]. The analyzer reads the flags registered on
// [Analyzer].
func New(icp *intercept.Interceptor, builder *analysis.Analyzer) *analysis.Analyzer {
	return &analysis.Analyzer{
		Name:     Analyzer.Name,
		Doc:      doc,
		Requires: []*analysis.Analyzer{builder},
		Run: func(pass *analysis.Pass) (any, error) {
			return run(pass, icp, builder)
		},
	}
}

func run(pass *analysis.Pass, icp *intercept.Interceptor, builder *analysis.Analyzer) (any, error) {
	prog := internalssa.Result(pass, builder)
	if prog == nil {
		return nil, ErrNoSSA
	}

	skipFiles := buildSkipFiles(pass)
	ignoreMaps := buildIgnoreMaps(pass, skipFiles)
	only := funcspec.ParseList(onlyFuncs)
	if len(only) > 0 {
		icp.Logger().Debug("analysis restricted", "pkg", pass.Pkg.Path(), "only", only.Names())
	}

	for _, fn := range prog.Definitions() {
		filename := pass.Fset.Position(fn.Pos()).Filename
		if skipFiles[filename] {
			continue
		}
		if isIgnored(pass.Fset, ignoreMaps[filename], fn) {
			continue
		}
		if !only.Matches(declaredFunc(fn)) {
			continue
		}

		if err := icp.Intercept(pass, fn); err != nil {
			return nil, err
		}
	}

	logUnusedIgnores(pass, icp, ignoreMaps)

	// The placeholder result: no diagnostics, no facts.
	return nil, nil
}

// buildSkipFiles creates a set of filenames to skip.
func buildSkipFiles(pass *analysis.Pass) map[string]bool {
	skipFiles := make(map[string]bool)
	if !skipGenerated {
		return skipFiles
	}

	for _, file := range pass.Files {
		if ast.IsGenerated(file) {
			skipFiles[pass.Fset.Position(file.Pos()).Filename] = true
		}
	}

	return skipFiles
}

// buildIgnoreMaps creates ignore maps for each file in the pass.
func buildIgnoreMaps(pass *analysis.Pass, skipFiles map[string]bool) map[string]ignore.Map {
	ignoreMaps := make(map[string]ignore.Map)

	for _, file := range pass.Files {
		filename := pass.Fset.Position(file.Pos()).Filename
		if skipFiles[filename] {
			continue
		}
		ignoreMaps[filename] = ignore.Build(pass.Fset, file)
	}

	return ignoreMaps
}

// isIgnored reports whether fn or any function enclosing it carries an
// ignore directive.
func isIgnored(fset *token.FileSet, m ignore.Map, fn *ssa.Function) bool {
	if len(m) == 0 {
		return false
	}

	for ; fn != nil; fn = fn.Parent() {
		if m.ShouldIgnore(fset.Position(fn.Pos()).Line) {
			return true
		}
	}

	return false
}

// declaredFunc returns the declared function enclosing fn.
func declaredFunc(fn *ssa.Function) *types.Func {
	f, _ := internalssa.Outermost(fn).Object().(*types.Func)
	return f
}

func logUnusedIgnores(pass *analysis.Pass, icp *intercept.Interceptor, ignoreMaps map[string]ignore.Map) {
	for _, m := range ignoreMaps {
		for _, unused := range m.Unused() {
			icp.Logger().Info("unused goowl:ignore directive", "pos", pass.Fset.Position(unused.Pos()).String())
		}
	}
}
