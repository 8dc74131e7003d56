package ssa

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/mpyw/goowl/internal/facts"
)

const src = `package p

func foo(n int) int {
	x := n
	y := &x
	return *y
}

func withClosure() func() int {
	count := 0
	return func() int {
		count++
		return count
	}
}

type point struct{ x, y int }

func (p *point) sum() (total int) {
	total = p.x + p.y
	return
}

var handler = func(n int) int {
	x := n
	return x
}

func loop(xs []int) int {
	s := 0
	for _, v := range xs {
		s += v
	}
	return s
}
`

func buildPackage(t *testing.T) (*ssa.Package, *types.Info) {
	t.Helper()

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	require.NoError(t, err)

	pkg := types.NewPackage("example.com/p", "")
	conf := &types.Config{Importer: importer.Default()}
	ssapkg, info, err := ssautil.BuildPackage(conf, fset, pkg, []*ast.File{f}, DefaultMode)
	require.NoError(t, err)

	return ssapkg, info
}

func local(t *testing.T, body facts.Body, name string) facts.Local {
	t.Helper()

	for _, l := range body.Locals {
		if l.Name == name {
			return l
		}
	}
	t.Fatalf("local %q not found in %+v", name, body.Locals)

	return facts.Local{}
}

func eventKinds(body facts.Body, id int) map[facts.EventKind]int {
	kinds := make(map[facts.EventKind]int)
	for _, ev := range body.Events {
		if ev.Local == id {
			kinds[ev.Kind]++
		}
	}

	return kinds
}

func TestDescribe(t *testing.T) {
	pkg, _ := buildPackage(t)

	foo := Describe(pkg.Func("foo"))
	assert.Equal(t, "example.com/p.foo", foo.ID)
	assert.Equal(t, "foo", foo.Name)
	assert.Equal(t, "example.com/p", foo.PkgPath)
	assert.Equal(t, facts.KindFunc, foo.Kind)
	assert.True(t, foo.Span.Valid())
	assert.Empty(t, foo.Parent)

	closure := Describe(pkg.Func("withClosure").AnonFuncs[0])
	assert.Equal(t, facts.KindClosure, closure.Kind)
	assert.Equal(t, "example.com/p.withClosure", closure.Parent)

	point := pkg.Type("point").Type()
	sum := pkg.Prog.LookupMethod(types.NewPointer(point), pkg.Pkg, "sum")
	assert.Equal(t, facts.KindMethod, Describe(sum).Kind)
}

func TestExtractLocals(t *testing.T) {
	pkg, info := buildPackage(t)

	body := Extract(pkg.Func("foo"), info)

	n := local(t, body, "n")
	assert.Equal(t, facts.OriginParam, n.Origin)
	assert.Equal(t, "int", n.Type)

	x := local(t, body, "x")
	assert.Equal(t, facts.OriginVar, x.Origin)
	assert.True(t, x.Decl.Valid())
	assert.Equal(t, len("x"), x.Decl.Hi-x.Decl.Lo)

	y := local(t, body, "y")
	assert.Equal(t, "*int", y.Type)

	assert.NotZero(t, eventKinds(body, x.ID)[facts.EventWrite])
	assert.NotZero(t, eventKinds(body, y.ID)[facts.EventRead])
	assert.NotZero(t, eventKinds(body, n.ID)[facts.EventRead])

	// &x flows into a store to y.
	assert.NotZero(t, eventKinds(body, x.ID)[facts.EventMutableBorrow])

	require.NotEmpty(t, body.Blocks)
	assert.Equal(t, 0, body.Blocks[0].Index)
	assert.Contains(t, body.Blocks[0].Defs, x.ID)
}

func TestExtractResultsAndReceiver(t *testing.T) {
	pkg, info := buildPackage(t)

	point := pkg.Type("point").Type()
	sum := pkg.Prog.LookupMethod(types.NewPointer(point), pkg.Pkg, "sum")
	body := Extract(sum, info)

	assert.Equal(t, facts.OriginParam, local(t, body, "p").Origin)
	assert.Equal(t, facts.OriginResult, local(t, body, "total").Origin)
}

func TestExtractCapture(t *testing.T) {
	pkg, info := buildPackage(t)

	outer := pkg.Func("withClosure")
	body := Extract(outer, info)

	count := local(t, body, "count")
	assert.True(t, count.Escapes)
	assert.NotZero(t, eventKinds(body, count.ID)[facts.EventCapture])

	inner := Extract(outer.AnonFuncs[0], info)
	captured := local(t, inner, "count")
	assert.Equal(t, facts.OriginCaptured, captured.Origin)
	assert.Equal(t, "int", captured.Type)
	assert.NotZero(t, eventKinds(inner, captured.ID)[facts.EventWrite])
}

func TestExtractLoopBlocks(t *testing.T) {
	pkg, info := buildPackage(t)

	body := Extract(pkg.Func("loop"), info)

	require.Greater(t, len(body.Blocks), 2)

	back := false
	for _, b := range body.Blocks {
		for _, succ := range b.Succs {
			if succ <= b.Index {
				back = true
			}
		}
	}
	assert.True(t, back, "a loop has a back edge")

	s := local(t, body, "s")
	v := local(t, body, "v")
	assert.Equal(t, facts.OriginVar, s.Origin)
	assert.NotEqual(t, s.ID, v.ID)

	for _, ev := range body.Events {
		assert.GreaterOrEqual(t, ev.Block, 0)
		assert.Less(t, ev.Block, len(body.Blocks))
	}
}

func TestDefinitions(t *testing.T) {
	pkg, _ := buildPackage(t)

	outer := pkg.Func("withClosure")
	prog := &Program{
		Program: pkg.Prog,
		Pkg:     pkg,
		Decls:   []*ssa.Function{pkg.Func("foo"), outer},
	}

	defs := prog.Definitions()
	require.Len(t, defs, 4)
	assert.Equal(t, "foo", defs[0].Name())
	assert.Equal(t, "withClosure", defs[1].Name())
	assert.Equal(t, "withClosure$1", defs[2].Name())
	assert.Equal(t, "init$1", defs[3].Name(), "closure of a package-level initializer")
	assert.Equal(t, facts.KindClosure, Describe(defs[3]).Kind)

	assert.Same(t, outer, Outermost(defs[2]))
	assert.Same(t, outer, Outermost(outer))

	var nilProg *Program
	assert.Nil(t, nilProg.Definitions())
}
