package ssa

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"

	"github.com/mpyw/goowl/internal/facts"
	"github.com/mpyw/goowl/internal/typeutil"
)

// Describe returns the identity of fn.
func Describe(fn *ssa.Function) facts.Context {
	ctx := facts.Context{
		ID:   fn.String(),
		Name: fn.Name(),
		Kind: facts.KindFunc,
		Span: nodeSpan(fn.Syntax()),
	}
	if fn.Pkg != nil {
		ctx.PkgPath = fn.Pkg.Pkg.Path()
	}

	switch {
	case fn.Parent() != nil:
		ctx.Kind = facts.KindClosure
		ctx.Parent = fn.Parent().String()
	case fn.Signature.Recv() != nil:
		ctx.Kind = facts.KindMethod
	}

	return ctx
}

// Extract copies the ownership facts of fn's body into an owned value.
// fn must have been built in NaiveForm, so that every named variable is an
// Alloc touched only through loads and stores; with GlobalDebug the debug
// references provide expression spans for loads.
func Extract(fn *ssa.Function, info *types.Info) facts.Body {
	x := &extractor{
		fn:      fn,
		locals:  make(map[ssa.Value]int),
		byDecl:  make(map[token.Pos]int),
		byValue: make(map[int]bool),
		refs:    make(map[ssa.Value]facts.Span),
	}
	if fn.Pkg != nil {
		x.pkg = fn.Pkg.Pkg
	}

	x.collectRefs()
	x.collectLocals(declaredVars(fn.Syntax(), info))
	x.collectBlocks()

	return x.body
}

type extractor struct {
	fn      *ssa.Function
	pkg     *types.Package
	locals  map[ssa.Value]int
	byDecl  map[token.Pos]int
	byValue map[int]bool // captured by value, never addressed
	refs    map[ssa.Value]facts.Span
	body    facts.Body
}

// declaredVars maps the declaring identifier position of every local variable
// in syntax (parameters and results included) to its name.
func declaredVars(syntax ast.Node, info *types.Info) map[token.Pos]string {
	vars := make(map[token.Pos]string)
	if syntax == nil || info == nil {
		return vars
	}

	ast.Inspect(syntax, func(n ast.Node) bool {
		id, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		if obj := info.Defs[id]; obj != nil && typeutil.IsLocalVar(obj) {
			vars[id.Pos()] = id.Name
		}
		return true
	})

	return vars
}

func (x *extractor) collectRefs() {
	for _, b := range x.fn.Blocks {
		for _, instr := range b.Instrs {
			ref, ok := instr.(*ssa.DebugRef)
			if !ok {
				continue
			}
			if _, isAlloc := ref.X.(*ssa.Alloc); isAlloc {
				// One Alloc has a reference per mention; the span is ambiguous.
				continue
			}
			if _, seen := x.refs[ref.X]; !seen {
				x.refs[ref.X] = nodeSpan(ref.Expr)
			}
		}
	}
}

func (x *extractor) collectLocals(declared map[token.Pos]string) {
	origins := make(map[token.Pos]facts.Origin)
	sig := x.fn.Signature
	if recv := sig.Recv(); recv != nil {
		origins[recv.Pos()] = facts.OriginParam
	}
	for i := 0; i < sig.Params().Len(); i++ {
		origins[sig.Params().At(i).Pos()] = facts.OriginParam
	}
	for i := 0; i < sig.Results().Len(); i++ {
		origins[sig.Results().At(i).Pos()] = facts.OriginResult
	}

	for _, fv := range x.fn.FreeVars {
		byValue := !typeutil.IsPointer(fv.Type())
		t := fv.Type()
		if !byValue {
			t = typeutil.Elem(t)
		}
		id := x.addLocal(fv, facts.Local{
			Name:    fv.Name(),
			Type:    typeutil.TypeString(t, x.pkg),
			Decl:    identSpan(fv.Pos(), fv.Name()),
			Origin:  facts.OriginCaptured,
			Escapes: !byValue,
		})
		x.byValue[id] = byValue
	}

	for _, b := range x.fn.Blocks {
		for _, instr := range b.Instrs {
			alloc, ok := instr.(*ssa.Alloc)
			if !ok {
				continue
			}
			name, ok := declared[alloc.Pos()]
			if !ok || name != alloc.Comment {
				continue
			}

			// Per-iteration loop variables get one Alloc per copy.
			if id, dup := x.byDecl[alloc.Pos()]; dup {
				x.locals[alloc] = id
				x.body.Locals[id].Escapes = x.body.Locals[id].Escapes || alloc.Heap
				continue
			}

			origin, ok := origins[alloc.Pos()]
			if !ok {
				origin = facts.OriginVar
			}
			id := x.addLocal(alloc, facts.Local{
				Name:    name,
				Type:    typeutil.TypeString(typeutil.Elem(alloc.Type()), x.pkg),
				Decl:    identSpan(alloc.Pos(), name),
				Origin:  origin,
				Escapes: alloc.Heap,
			})
			x.byDecl[alloc.Pos()] = id
		}
	}
}

func (x *extractor) addLocal(v ssa.Value, l facts.Local) int {
	l.ID = len(x.body.Locals)
	x.body.Locals = append(x.body.Locals, l)
	x.locals[v] = l.ID

	return l.ID
}

func (x *extractor) collectBlocks() {
	for _, b := range x.fn.Blocks {
		blk := facts.Block{Index: b.Index, Comment: b.Comment}
		for _, succ := range b.Succs {
			blk.Succs = append(blk.Succs, succ.Index)
		}

		used := make(map[int]bool)
		defined := make(map[int]bool)
		for _, instr := range b.Instrs {
			blk.Span = widen(blk.Span, x.instrSpan(instr))

			for _, ev := range x.classify(instr) {
				ev.Block = b.Index
				x.body.Events = append(x.body.Events, ev)
				blk.Span = widen(blk.Span, ev.Span)

				if ev.Kind == facts.EventWrite {
					if !defined[ev.Local] {
						defined[ev.Local] = true
						blk.Defs = append(blk.Defs, ev.Local)
					}
					continue
				}
				if !defined[ev.Local] && !used[ev.Local] {
					used[ev.Local] = true
					blk.Uses = append(blk.Uses, ev.Local)
				}
			}
		}

		x.body.Blocks = append(x.body.Blocks, blk)
	}
}

func (x *extractor) classify(instr ssa.Instruction) []facts.Event {
	switch i := instr.(type) {
	case *ssa.DebugRef:
		return nil

	case *ssa.Alloc:
		// An Alloc zeroes its variable, so it counts as the first write.
		if id, ok := x.locals[i]; ok {
			return []facts.Event{{Local: id, Kind: facts.EventWrite, Span: x.body.Locals[id].Decl}}
		}
		return nil

	case *ssa.Store:
		var evs []facts.Event
		if id, ok := x.locals[i.Addr]; ok {
			evs = append(evs, facts.Event{Local: id, Kind: facts.EventWrite, Span: x.identSpan(i.Pos(), id)})
		}
		if id, ok := x.locals[i.Val]; ok {
			evs = append(evs, facts.Event{Local: id, Kind: x.escapeKind(id), Span: posSpan(i.Pos(), 1)})
		}
		return evs

	case *ssa.UnOp:
		if id, ok := x.locals[i.X]; ok && i.Op == token.MUL {
			span, found := x.refs[i]
			if !found {
				span = x.identSpan(i.Pos(), id)
			}
			return []facts.Event{{Local: id, Kind: facts.EventRead, Span: span}}
		}

	case *ssa.FieldAddr:
		if id, ok := x.locals[i.X]; ok {
			return []facts.Event{{Local: id, Kind: x.borrowKind(id, i), Span: x.spanOf(i, i.Pos())}}
		}

	case *ssa.IndexAddr:
		if id, ok := x.locals[i.X]; ok {
			return []facts.Event{{Local: id, Kind: x.borrowKind(id, i), Span: x.spanOf(i, i.Pos())}}
		}

	case *ssa.MakeClosure:
		var evs []facts.Event
		for _, binding := range i.Bindings {
			if id, ok := x.locals[binding]; ok {
				evs = append(evs, facts.Event{Local: id, Kind: facts.EventCapture, Span: x.spanOf(i, i.Pos())})
			}
		}
		return evs
	}

	return x.operandEvents(instr)
}

// operandEvents reports locals whose address flows into instr: passed to a
// call, returned, converted or stored in an aggregate.
func (x *extractor) operandEvents(instr ssa.Instruction) []facts.Event {
	var evs []facts.Event
	for _, op := range Operands(instr) {
		id, ok := x.locals[op]
		if !ok {
			continue
		}

		span := posSpan(instr.Pos(), 1)
		if v, isValue := instr.(ssa.Value); isValue {
			span = x.spanOf(v, instr.Pos())
		}
		evs = append(evs, facts.Event{Local: id, Kind: x.escapeKind(id), Span: span})
	}

	return evs
}

func (x *extractor) borrowKind(id int, addr ssa.Value) facts.EventKind {
	if x.byValue[id] || OnlyLoaded(addr) {
		return facts.EventSharedBorrow
	}

	return facts.EventMutableBorrow
}

func (x *extractor) escapeKind(id int) facts.EventKind {
	if x.byValue[id] {
		return facts.EventRead
	}

	return facts.EventMutableBorrow
}

// spanOf returns the source span of v: its own debug reference, the debug
// reference of a value loaded from it, or a one-byte span at pos.
func (x *extractor) spanOf(v ssa.Value, pos token.Pos) facts.Span {
	if span, ok := x.refs[v]; ok {
		return span
	}

	if refs := v.Referrers(); refs != nil {
		for _, ref := range *refs {
			if rv, ok := ref.(ssa.Value); ok {
				if span, found := x.refs[rv]; found {
					return span
				}
			}
		}
	}

	return posSpan(pos, 1)
}

func (x *extractor) identSpan(pos token.Pos, id int) facts.Span {
	return identSpan(pos, x.body.Locals[id].Name)
}

func (x *extractor) instrSpan(instr ssa.Instruction) facts.Span {
	if ref, ok := instr.(*ssa.DebugRef); ok {
		return nodeSpan(ref.Expr)
	}

	return posSpan(instr.Pos(), 1)
}

func identSpan(pos token.Pos, name string) facts.Span {
	return posSpan(pos, max(len(name), 1))
}

func posSpan(pos token.Pos, width int) facts.Span {
	if !pos.IsValid() {
		return facts.Span{}
	}

	return facts.Span{Lo: int(pos), Hi: int(pos) + width}
}

func nodeSpan(n ast.Node) facts.Span {
	if n == nil || !n.Pos().IsValid() {
		return facts.Span{}
	}

	return facts.Span{Lo: int(n.Pos()), Hi: int(n.End())}
}

func widen(a, b facts.Span) facts.Span {
	if !b.Valid() {
		return a
	}
	if !a.Valid() {
		return b
	}

	return facts.Span{Lo: min(a.Lo, b.Lo), Hi: max(a.Hi, b.Hi)}
}
