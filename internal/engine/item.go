package engine

// Range is a half-open byte range in a source file.
type Range struct {
	From  uint32 `json:"from"`
	Until uint32 `json:"until"`
}

// Item is the analyzed form of one definition.
type Item struct {
	Kind        string       `json:"kind"`
	Name        string       `json:"name"`
	ID          string       `json:"fn_id"`
	DefKind     string       `json:"def_kind"`
	Parent      string       `json:"parent,omitempty"`
	Span        Range        `json:"span"`
	Decls       []Decl       `json:"decls"`
	BasicBlocks []BasicBlock `json:"basic_blocks"`
}

// Decl describes one local of the definition.
type Decl struct {
	Local         int     `json:"local"`
	Name          string  `json:"name"`
	Ty            string  `json:"ty"`
	Origin        string  `json:"origin"`
	Span          Range   `json:"span"`
	Escapes       bool    `json:"escapes"`
	Lives         []Range `json:"lives"`
	SharedBorrow  []Range `json:"shared_borrow"`
	MutableBorrow []Range `json:"mutable_borrow"`
	Captured      []Range `json:"captured"`
	DropRange     []Range `json:"drop_range"`
	MustLiveAt    []Range `json:"must_live_at"`
}

// BasicBlock is one block of the definition's control-flow graph.
type BasicBlock struct {
	Index   int    `json:"index"`
	Comment string `json:"comment,omitempty"`
	Span    *Range `json:"span,omitempty"`
	Succs   []int  `json:"succs"`
}
