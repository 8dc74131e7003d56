// Package facts holds the per-function ownership facts that goowl harvests
// from the host and hands to the inference engine.
//
// A [FunctionFacts] value is fully owned: it holds copies of everything the
// engine needs and no pointer into the host's SSA or type-checker data, so it
// can be analyzed after the host has moved on to other functions.
package facts

// Span is a half-open range of positions in the host's position space
// (token.Pos values). Subtract [FunctionFacts.Offset] to get a byte offset
// into [FunctionFacts.Source].
type Span struct {
	Lo int
	Hi int
}

// Valid reports whether the span carries a position.
func (s Span) Valid() bool { return s.Lo > 0 && s.Hi >= s.Lo }

// Kind is the kind of a definition.
type Kind string

// Definition kinds.
const (
	KindFunc    Kind = "func"
	KindMethod  Kind = "method"
	KindClosure Kind = "closure"
)

// Context identifies the analyzed definition.
type Context struct {
	ID      string // fully qualified SSA name, unique within a run
	Name    string // short name
	PkgPath string
	Kind    Kind
	Parent  string // ID of the enclosing definition, closures only
	Span    Span
}

// Origin tells where a local comes from.
type Origin string

// Local origins.
const (
	OriginParam    Origin = "param"
	OriginResult   Origin = "result"
	OriginVar      Origin = "var"
	OriginCaptured Origin = "captured"
)

// Local is one named variable of the definition.
type Local struct {
	ID      int
	Name    string
	Type    string
	Decl    Span
	Origin  Origin
	Escapes bool // allocated on the heap
}

// EventKind classifies how an instruction touches a local.
type EventKind string

// Event kinds.
const (
	EventWrite         EventKind = "write"
	EventRead          EventKind = "read"
	EventSharedBorrow  EventKind = "shared_borrow"
	EventMutableBorrow EventKind = "mutable_borrow"
	EventCapture       EventKind = "capture"
)

// Event is one touch of a local by one instruction.
type Event struct {
	Local int
	Kind  EventKind
	Span  Span
	Block int
}

// Block is one basic block of the definition's control-flow graph.
type Block struct {
	Index   int
	Comment string
	Span    Span
	Succs   []int
	Uses    []int // locals read before any write in this block
	Defs    []int // locals written in this block
}

// Body holds the facts of one definition body.
type Body struct {
	Locals []Local
	Blocks []Block
	Events []Event
}

// FunctionFacts bundles everything the engine needs about one definition.
type FunctionFacts struct {
	Filename string
	Source   string
	Offset   int // base of Filename in the position space
	Context  Context
	Body     Body
}
