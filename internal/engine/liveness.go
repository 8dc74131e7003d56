package engine

import (
	"github.com/mpyw/goowl/internal/facts"
)

// lexicalLives: a local lives from its declaration to its last event.
func lexicalLives(body *facts.Body, events [][]facts.Event) [][]facts.Span {
	lives := make([][]facts.Span, len(body.Locals))
	for id, local := range body.Locals {
		span := local.Decl
		for _, ev := range events[id] {
			if !ev.Span.Valid() {
				continue
			}
			if !span.Valid() {
				span = ev.Span
				continue
			}
			span.Lo = min(span.Lo, ev.Span.Lo)
			span.Hi = max(span.Hi, ev.Span.Hi)
		}
		lives[id] = merge([]facts.Span{span})
	}

	return lives
}

// dataflowLives runs backward liveness over the block graph:
//
//	live-out(b) = ∪ live-in(s) for s in succs(b)
//	live-in(b)  = use(b) ∪ (live-out(b) − def(b))
//
// and turns the result into source ranges per local. A block without any
// positioned instruction or event has no source range, so a local that is
// only live through it gets nothing there.
func dataflowLives(body *facts.Body, events [][]facts.Event) [][]facts.Span {
	nLocals := len(body.Locals)
	nBlocks := len(body.Blocks)

	use := make([][]bool, nBlocks)
	def := make([][]bool, nBlocks)
	in := make([][]bool, nBlocks)
	out := make([][]bool, nBlocks)
	for i, b := range body.Blocks {
		use[i] = make([]bool, nLocals)
		def[i] = make([]bool, nLocals)
		in[i] = make([]bool, nLocals)
		out[i] = make([]bool, nLocals)
		for _, l := range b.Uses {
			use[i][l] = true
		}
		for _, l := range b.Defs {
			def[i][l] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for i := nBlocks - 1; i >= 0; i-- {
			for l := range nLocals {
				o := false
				for _, s := range body.Blocks[i].Succs {
					if s >= 0 && s < nBlocks && in[s][l] {
						o = true
						break
					}
				}
				n := use[i][l] || (o && !def[i][l])
				if o != out[i][l] || n != in[i][l] {
					out[i][l], in[i][l] = o, n
					changed = true
				}
			}
		}
	}

	lives := make([][]facts.Span, nLocals)
	for l, local := range body.Locals {
		var spans []facts.Span
		for i, b := range body.Blocks {
			first, last, ok := eventBounds(events[l], i)
			lo, hi := b.Span.Lo, b.Span.Hi
			if !b.Span.Valid() && ok {
				// No instruction in the block has a position; its events
				// still do.
				lo, hi = first, last
			}
			switch {
			case in[i][l] && out[i][l]:
				spans = append(spans, facts.Span{Lo: lo, Hi: hi})
			case in[i][l] && ok:
				spans = append(spans, facts.Span{Lo: lo, Hi: last})
			case out[i][l] && ok:
				spans = append(spans, facts.Span{Lo: first, Hi: hi})
			case ok:
				spans = append(spans, facts.Span{Lo: first, Hi: last})
			}
		}
		spans = append(spans, local.Decl)

		merged := merge(spans)
		if local.Decl.Valid() && local.Origin == facts.OriginVar {
			merged = clip(merged, local.Decl.Lo)
		}
		lives[l] = merged
	}

	return lives
}

// eventBounds returns the lowest start and highest end of the events in block.
func eventBounds(events []facts.Event, block int) (first, last int, ok bool) {
	for _, ev := range events {
		if ev.Block != block || !ev.Span.Valid() {
			continue
		}
		if !ok {
			first, last, ok = ev.Span.Lo, ev.Span.Hi, true
			continue
		}
		first = min(first, ev.Span.Lo)
		last = max(last, ev.Span.Hi)
	}

	return first, last, ok
}
