// Package engine turns the ownership facts of one definition into an analyzed
// item: per local, where it lives, where it is borrowed, and where it can be
// dropped.
package engine

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/mpyw/goowl/internal/facts"
	"github.com/mpyw/goowl/internal/fatal"
)

// Variant selects the lifetime inference algorithm.
type Variant int

const (
	// Lexical: a local lives from its declaration to its last use.
	Lexical Variant = iota
	// Dataflow: a local lives where control-flow liveness says it does.
	Dataflow
)

func (v Variant) String() string {
	switch v {
	case Lexical:
		return "lexical"
	case Dataflow:
		return "dataflow"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant parses a variant name.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "lexical":
		return Lexical, nil
	case "dataflow", "":
		return Dataflow, nil
	default:
		return 0, fmt.Errorf("unknown inference variant %q", s)
	}
}

// Result pairs an analyzed item with the file it belongs to.
type Result struct {
	Filename string
	Item     any
}

// Unit is one scheduled analysis.
type Unit interface {
	Analyze() (Result, error)
}

// Factory builds the unit that analyzes ff. The unit owns ff.
type Factory func(ff *facts.FunctionFacts) Unit

// New returns a factory for units using variant v.
func New(v Variant) Factory {
	return func(ff *facts.FunctionFacts) Unit {
		return &unit{variant: v, ff: ff}
	}
}

type unit struct {
	variant Variant
	ff      *facts.FunctionFacts
}

func (u *unit) Analyze() (Result, error) {
	item, err := u.analyze()
	if err != nil {
		return Result{}, err
	}

	return Result{Filename: u.ff.Filename, Item: item}, nil
}

func (u *unit) analyze() (*Item, error) {
	ff := u.ff
	body := &ff.Body
	conv := converter{offset: ff.Offset, size: len(ff.Source), subject: ff.Context.ID}

	events := make([][]facts.Event, len(body.Locals))
	for _, ev := range body.Events {
		if ev.Local < 0 || ev.Local >= len(body.Locals) {
			return nil, fatal.Internalf("analyze", ff.Context.ID, "event refers to unknown local %d", ev.Local)
		}
		events[ev.Local] = append(events[ev.Local], ev)
	}

	var lives [][]facts.Span
	switch u.variant {
	case Lexical:
		lives = lexicalLives(body, events)
	default:
		lives = dataflowLives(body, events)
	}

	fnSpan, err := conv.span(ff.Context.Span)
	if err != nil {
		return nil, err
	}

	item := &Item{
		Kind:        "function",
		Name:        ff.Context.Name,
		ID:          ff.Context.ID,
		DefKind:     string(ff.Context.Kind),
		Parent:      ff.Context.Parent,
		Span:        fnSpan,
		Decls:       make([]Decl, 0, len(body.Locals)),
		BasicBlocks: make([]BasicBlock, 0, len(body.Blocks)),
	}

	for id, local := range body.Locals {
		decl, err := u.decl(conv, local, events[id], lives[id])
		if err != nil {
			return nil, err
		}
		item.Decls = append(item.Decls, decl)
	}

	for _, b := range body.Blocks {
		bb := BasicBlock{Index: b.Index, Comment: b.Comment, Succs: append([]int{}, b.Succs...)}
		if b.Span.Valid() {
			r, err := conv.span(b.Span)
			if err != nil {
				return nil, err
			}
			bb.Span = &r
		}
		item.BasicBlocks = append(item.BasicBlocks, bb)
	}

	return item, nil
}

func (u *unit) decl(conv converter, local facts.Local, events []facts.Event, lives []facts.Span) (Decl, error) {
	var shared, mutable, captured []facts.Span
	for _, ev := range events {
		switch ev.Kind {
		case facts.EventSharedBorrow:
			shared = append(shared, ev.Span)
		case facts.EventMutableBorrow:
			mutable = append(mutable, ev.Span)
		case facts.EventCapture:
			captured = append(captured, ev.Span)
		}
	}

	var drop []facts.Span
	if !local.Escapes && len(lives) > 0 {
		end := u.ff.Context.Span.Hi
		if last := lives[len(lives)-1].Hi; last < end {
			drop = []facts.Span{{Lo: last, Hi: end}}
		}
	}

	var mustLive []facts.Span
	for _, s := range merge(append(append(append([]facts.Span{}, shared...), mutable...), captured...)) {
		if local.Escapes || !covered(s, lives) {
			mustLive = append(mustLive, s)
		}
	}

	decl := Decl{
		Local:   local.ID,
		Name:    local.Name,
		Ty:      local.Type,
		Origin:  string(local.Origin),
		Escapes: local.Escapes,
	}

	var err error
	if decl.Span, err = conv.span(local.Decl); err != nil {
		return Decl{}, err
	}
	if decl.Lives, err = conv.spans(lives); err != nil {
		return Decl{}, err
	}
	if decl.SharedBorrow, err = conv.spans(merge(shared)); err != nil {
		return Decl{}, err
	}
	if decl.MutableBorrow, err = conv.spans(merge(mutable)); err != nil {
		return Decl{}, err
	}
	if decl.Captured, err = conv.spans(merge(captured)); err != nil {
		return Decl{}, err
	}
	if decl.DropRange, err = conv.spans(drop); err != nil {
		return Decl{}, err
	}
	if decl.MustLiveAt, err = conv.spans(mustLive); err != nil {
		return Decl{}, err
	}

	return decl, nil
}

// converter turns host positions into byte offsets within one file.
type converter struct {
	offset  int
	size    int
	subject string
}

func (c converter) span(s facts.Span) (Range, error) {
	if !s.Valid() {
		return Range{}, nil
	}

	lo, hi := s.Lo-c.offset, s.Hi-c.offset
	if hi > c.size {
		return Range{}, fatal.Internalf("convert span", c.subject, "span [%d,%d) exceeds file size %d", lo, hi, c.size)
	}

	from, err := safecast.Conv[uint32](lo)
	if err != nil {
		return Range{}, fatal.Wrap("convert span", c.subject, err)
	}
	until, err := safecast.Conv[uint32](hi)
	if err != nil {
		return Range{}, fatal.Wrap("convert span", c.subject, err)
	}

	return Range{From: from, Until: until}, nil
}

func (c converter) spans(spans []facts.Span) ([]Range, error) {
	out := make([]Range, 0, len(spans))
	for _, s := range spans {
		if !s.Valid() {
			continue
		}
		r, err := c.span(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, nil
}
