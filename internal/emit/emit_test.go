package emit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/fatal"
)

func TestEmitSingleItemLine(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(&buf, JSON)
	require.NoError(t, err)

	item := map[string]any{"kind": "function", "name": "foo"}
	require.NoError(t, e.Emit(engine.Result{Filename: "a.rs", Item: item}))

	assert.Equal(t, `{"a.rs":{"items":[{"kind":"function","name":"foo"}]}}`+"\n", buf.String())
}

func TestEmitSameFileTwice(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(&buf, JSON)
	require.NoError(t, err)

	require.NoError(t, e.Emit(engine.Result{Filename: "m.rs", Item: map[string]any{"name": "foo"}}))
	require.NoError(t, e.Emit(engine.Result{Filename: "m.rs", Item: map[string]any{"name": "bar"}}))

	assert.Equal(t,
		`{"m.rs":{"items":[{"name":"foo"}]}}`+"\n"+
			`{"m.rs":{"items":[{"name":"bar"}]}}`+"\n",
		buf.String())
}

func TestEmitDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(&buf, JSON)
	require.NoError(t, err)

	require.NoError(t, e.Emit(engine.Result{Filename: "g.go", Item: map[string]any{"name": "Map[K, V]", "ty": "<-chan int"}}))
	assert.Contains(t, buf.String(), `"ty":"<-chan int"`)
}

func TestEmitItemStruct(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(&buf, JSON)
	require.NoError(t, err)

	item := &engine.Item{
		Kind: "function", Name: "foo", ID: "example.com/a.foo", DefKind: "func",
		Span:        engine.Range{From: 0, Until: 10},
		Decls:       []engine.Decl{},
		BasicBlocks: []engine.BasicBlock{},
	}
	require.NoError(t, e.Emit(engine.Result{Filename: "a.go", Item: item}))

	var got map[string]struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got["a.go"].Items, 1)
	assert.Equal(t, "example.com/a.foo", got["a.go"].Items[0]["fn_id"])
	assert.Equal(t, []any{}, got["a.go"].Items[0]["decls"])
}

func TestEmitConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(&buf, JSON)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.Emit(engine.Result{Filename: "m.go", Item: map[string]any{"name": fmt.Sprintf("fn%d", i)}}))
		}()
	}
	wg.Wait()

	lines := 0
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var ws Workspace
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ws), "line %q", sc.Text())
		require.Len(t, ws["m.go"].Items, 1)
		lines++
	}
	assert.Equal(t, 50, lines)
}

func TestEmitMsgPack(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(&buf, MsgPack)
	require.NoError(t, err)

	require.NoError(t, e.Emit(engine.Result{Filename: "a.go", Item: &engine.Item{Kind: "function", Name: "foo"}}))
	require.NoError(t, e.Emit(engine.Result{Filename: "a.go", Item: &engine.Item{Kind: "function", Name: "bar"}}))

	dec := msgpack.NewDecoder(&buf)
	var names []string
	for range 2 {
		var ws map[string]map[string][]map[string]any
		require.NoError(t, dec.Decode(&ws))
		require.Len(t, ws["a.go"]["items"], 1)
		names = append(names, ws["a.go"]["items"][0]["name"].(string))
	}
	assert.Equal(t, []string{"foo", "bar"}, names)
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestEmitWriteFailure(t *testing.T) {
	e, err := New(brokenWriter{}, JSON)
	require.NoError(t, err)

	err = e.Emit(engine.Result{Filename: "a.go", Item: map[string]any{"name": "foo"}})
	require.Error(t, err)
	assert.Equal(t, fatal.Internal, fatal.ClassOf(err))
}

func TestEmitEncodeFailure(t *testing.T) {
	var buf bytes.Buffer
	e, err := New(&buf, JSON)
	require.NoError(t, err)

	err = e.Emit(engine.Result{Filename: "a.go", Item: func() {}})
	require.Error(t, err)
	assert.Equal(t, fatal.Internal, fatal.ClassOf(err))
	assert.True(t, strings.Contains(err.Error(), "encode fragment"))
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("")
	require.NoError(t, err)
	assert.Equal(t, JSON, enc)

	enc, err = ParseEncoding("msgpack")
	require.NoError(t, err)
	assert.Equal(t, MsgPack, enc)

	_, err = ParseEncoding("xml")
	assert.Error(t, err)

	_, err = New(&bytes.Buffer{}, Encoding("xml"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	merged := Merge(
		Fragment(engine.Result{Filename: "m.go", Item: "foo"}),
		Fragment(engine.Result{Filename: "n.go", Item: "baz"}),
		Fragment(engine.Result{Filename: "m.go", Item: "bar"}),
	)

	assert.Equal(t, Workspace{
		"m.go": {Items: []any{"foo", "bar"}},
		"n.go": {Items: []any{"baz"}},
	}, merged)
}
