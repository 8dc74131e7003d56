// Package ssa builds the SSA form goowl extracts ownership facts from.
package ssa

import (
	"go/ast"
	"go/types"
	"reflect"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/ssa"
)

// DefaultMode keeps every local in memory (no register lifting) and records
// debug references from source expressions to SSA values.
const DefaultMode = ssa.NaiveForm | ssa.GlobalDebug

// Builder builds SSA with [DefaultMode].
var Builder = NewBuilder(DefaultMode)

// NewBuilder returns an analyzer whose result is a *Program built with mode.
func NewBuilder(mode ssa.BuilderMode) *analysis.Analyzer {
	return &analysis.Analyzer{
		Name:       "goowlssa",
		Doc:        "build SSA form for ownership fact extraction",
		Run:        func(pass *analysis.Pass) (any, error) { return Build(pass, mode), nil },
		ResultType: reflect.TypeOf(new(Program)),
	}
}

// Program wraps an SSA program with the analyzed package.
type Program struct {
	*ssa.Program
	Pkg *ssa.Package

	// Decls holds the functions and methods declared in the package source,
	// in file and declaration order. Closures hang off their AnonFuncs.
	Decls []*ssa.Function
}

// Build creates the SSA program for the analysis pass with the given mode.
//
// Each pass gets its own program; only the direct imports are created, from
// type information alone, as buildssa does.
func Build(pass *analysis.Pass, mode ssa.BuilderMode) *Program {
	prog := ssa.NewProgram(pass.Fset, mode)

	for _, p := range pass.Pkg.Imports() {
		prog.CreatePackage(p, nil, nil, true)
	}

	pkg := prog.CreatePackage(pass.Pkg, pass.Files, pass.TypesInfo, false)
	pkg.Build()

	var decls []*ssa.Function
	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fdecl, ok := decl.(*ast.FuncDecl)
			if !ok {
				continue
			}
			obj, ok := pass.TypesInfo.Defs[fdecl.Name].(*types.Func)
			if !ok {
				continue
			}
			if fn := prog.FuncValue(obj); fn != nil {
				decls = append(decls, fn)
			}
		}
	}

	return &Program{
		Program: prog,
		Pkg:     pkg,
		Decls:   decls,
	}
}

// Result returns the *Program that the builder analyzer produced for pass,
// or nil if the builder is not among the pass's requirements.
func Result(pass *analysis.Pass, builder *analysis.Analyzer) *Program {
	prog, ok := pass.ResultOf[builder].(*Program)
	if !ok {
		return nil
	}

	return prog
}

// Definitions returns every definition of the package: each declaration
// followed by its closures, depth first, then the closures of package-level
// variable initializers.
func (p *Program) Definitions() []*ssa.Function {
	if p == nil {
		return nil
	}

	var defs []*ssa.Function
	var add func(fn *ssa.Function)
	add = func(fn *ssa.Function) {
		if fn.Blocks == nil {
			return
		}
		defs = append(defs, fn)
		for _, anon := range fn.AnonFuncs {
			add(anon)
		}
	}

	for _, fn := range p.Decls {
		add(fn)
	}

	// Closures in package-level initializers belong to the synthetic init.
	if p.Pkg != nil {
		if init := p.Pkg.Func("init"); init != nil {
			for _, anon := range init.AnonFuncs {
				add(anon)
			}
		}
	}

	return defs
}

// Outermost returns the top-level declaration enclosing fn.
func Outermost(fn *ssa.Function) *ssa.Function {
	for fn.Parent() != nil {
		fn = fn.Parent()
	}

	return fn
}
