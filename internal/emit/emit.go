// Package emit streams analyzed items as workspace fragments.
//
// Every completed analysis becomes its own fragment holding exactly one item
// under its file name:
//
//	{"a.go":{"items":[<item for foo>]}}
//	{"a.go":{"items":[<item for bar>]}}
//
// Fragments for the same file are never merged here; consumers merge them
// by file name (see [Merge]).
package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/fatal"
)

// File holds the items of one source file.
type File struct {
	Items []any `json:"items" msgpack:"items"`
}

// Workspace maps file names to their items.
type Workspace map[string]File

// Encoding selects the record encoding.
type Encoding string

// Supported encodings.
const (
	JSON    Encoding = "json"
	MsgPack Encoding = "msgpack"
)

// ParseEncoding parses an encoding name; empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case JSON, "":
		return JSON, nil
	case MsgPack:
		return MsgPack, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

type encoder interface {
	Encode(v any) error
}

// Emitter writes one self-contained record per result and flushes it at once.
// It is safe for concurrent use; writes are serialized.
type Emitter struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc encoder
}

// New creates an Emitter writing to w.
func New(w io.Writer, encoding Encoding) (*Emitter, error) {
	bw := bufio.NewWriter(w)

	var enc encoder
	switch encoding {
	case JSON, "":
		je := json.NewEncoder(bw)
		je.SetEscapeHTML(false)
		enc = je
	case MsgPack:
		me := msgpack.NewEncoder(bw)
		me.SetCustomStructTag("json")
		enc = me
	default:
		return nil, fmt.Errorf("unknown output format %q", encoding)
	}

	return &Emitter{w: bw, enc: enc}, nil
}

// Fragment wraps one result into a workspace with a single file and item.
func Fragment(res engine.Result) Workspace {
	return Workspace{res.Filename: File{Items: []any{res.Item}}}
}

// Emit writes res as one record and flushes.
func (e *Emitter) Emit(res engine.Result) error {
	ws := Fragment(res)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enc.Encode(ws); err != nil {
		return fatal.Wrap("encode fragment", res.Filename, err)
	}
	if err := e.w.Flush(); err != nil {
		return fatal.Wrap("write fragment", res.Filename, err)
	}

	return nil
}

// Merge combines fragments into one workspace, concatenating items per file
// in the order given. goowl never calls it; it is for consumers of the
// stream.
func Merge(fragments ...Workspace) Workspace {
	merged := make(Workspace)
	for _, ws := range fragments {
		for name, file := range ws {
			m := merged[name]
			m.Items = append(m.Items, file.Items...)
			merged[name] = m
		}
	}

	return merged
}
