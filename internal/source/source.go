// Package source reads analyzed source files, caching their text for the
// duration of one run.
package source

import (
	"fmt"
	"os"

	"github.com/maypok86/otter"

	"github.com/mpyw/goowl/internal/fatal"
)

// DefaultCapacity is the number of files kept in memory by default.
const DefaultCapacity = 4096

// Reader reads whole source files. Many definitions share one file, so the
// text is cached by path. The cache lives only as long as the Reader.
type Reader struct {
	cache    otter.Cache[string, string]
	readFile func(string) ([]byte, error)
}

// NewReader creates a Reader holding up to capacity files.
func NewReader(capacity int) (*Reader, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	cache, err := otter.MustBuilder[string, string](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("build source cache: %w", err)
	}

	return &Reader{cache: cache, readFile: os.ReadFile}, nil
}

// Read returns the full text of filename. A file that cannot be read is an
// environment error.
func (r *Reader) Read(filename string) (string, error) {
	if filename == "" {
		return "", fatal.Env("resolve source file", "", fmt.Errorf("definition has no file"))
	}

	if text, ok := r.cache.Get(filename); ok {
		return text, nil
	}

	data, err := r.readFile(filename)
	if err != nil {
		return "", fatal.Env("read source", filename, err)
	}

	text := string(data)
	r.cache.Set(filename, text)

	return text, nil
}

// Close releases the cache.
func (r *Reader) Close() {
	r.cache.Close()
}
