package funcspec

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Spec
	}{
		{"context.WithCancel", Spec{PkgPath: "context", FuncName: "WithCancel"}},
		{"golang.org/x/sync/errgroup.Group.Go", Spec{PkgPath: "golang.org/x/sync/errgroup", TypeName: "Group", FuncName: "Go"}},
		{"example.com/v2.run", Spec{PkgPath: "example.com/v2", FuncName: "run"}},
		{"main", Spec{FuncName: "main"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "errgroup.Group.Go", Parse("golang.org/x/sync/errgroup.Group.Go").FullName())
	assert.Equal(t, "context.WithCancel", Parse("context.WithCancel").FullName())
}

func TestParseList(t *testing.T) {
	list := ParseList(" a.F, ,b.T.M,")
	require.Len(t, list, 2)
	assert.Equal(t, "F", list[0].FuncName)
	assert.Equal(t, "T", list[1].TypeName)
	assert.Empty(t, ParseList(""))
	assert.Equal(t, []string{"a.F", "b.T.M"}, list.Names())
}

func TestListMatches(t *testing.T) {
	const src = `package app

type Server struct{}

func (s *Server) Serve() {}
func (s Server) Name() string { return "" }
func Run() {}
func helper() {}
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "app.go", src, 0)
	require.NoError(t, err)

	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("example.com/app", fset, []*ast.File{file}, nil)
	require.NoError(t, err)

	server := pkg.Scope().Lookup("Server").Type().(*types.Named)
	method := func(name string) *types.Func {
		for i := range server.NumMethods() {
			if m := server.Method(i); m.Name() == name {
				return m
			}
		}
		t.Fatalf("method %s not found", name)
		return nil
	}
	fn := func(name string) *types.Func {
		return pkg.Scope().Lookup(name).(*types.Func)
	}

	only := ParseList("example.com/app.Run,example.com/app.Server.Serve,example.com/app.Server.Name")

	assert.True(t, only.Matches(fn("Run")))
	assert.True(t, only.Matches(method("Serve")))
	assert.True(t, only.Matches(method("Name")))
	assert.False(t, only.Matches(fn("helper")))
	assert.False(t, only.Matches(nil))
	assert.False(t, ParseList("other.com/app.Run").Matches(fn("Run")))

	var all List
	assert.True(t, all.Matches(fn("helper")))
}
