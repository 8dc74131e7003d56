// Package ignore handles //goowl:ignore directives.
package ignore

import (
	"go/ast"
	"go/token"
	"strings"
)

const directive = "goowl:ignore"

// Entry tracks an ignore directive and its usage.
type Entry struct {
	pos    token.Pos // Position of the ignore comment
	reason string    // Text after " - ", if any
	used   bool
}

// Pos returns the position of the directive.
func (e *Entry) Pos() token.Pos { return e.pos }

// Reason returns the free-form reason given after the directive.
func (e *Entry) Reason() string { return e.reason }

// Map tracks ignore entries by line number.
type Map map[int]*Entry

// Build scans a file for ignore comments and returns a map.
func Build(fset *token.FileSet, file *ast.File) Map {
	m := make(Map)

	for _, cg := range file.Comments {
		for _, c := range cg.List {
			if reason, ok := parseComment(c.Text); ok {
				line := fset.Position(c.Pos()).Line
				m[line] = &Entry{
					pos:    c.Pos(),
					reason: reason,
				}
			}
		}
	}

	return m
}

// parseComment parses an ignore directive and returns its reason.
// Returns false if not an ignore comment.
func parseComment(text string) (string, bool) {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)

	rest, ok := strings.CutPrefix(text, directive)
	if !ok {
		return "", false
	}

	// "goowl:ignoreme" is not the directive
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}

	rest = strings.TrimSpace(rest)

	// Stop at a trailing comment
	if idx := strings.Index(rest, "//"); idx >= 0 {
		rest = strings.TrimSpace(rest[:idx])
	}

	if rest == "-" {
		return "", true
	}

	return strings.TrimSpace(strings.TrimPrefix(rest, "- ")), true
}

// ShouldIgnore returns true if a directive sits on line or the line above.
func (m Map) ShouldIgnore(line int) bool {
	for _, l := range []int{line, line - 1} {
		if entry := m[l]; entry != nil {
			entry.used = true
			return true
		}
	}

	return false
}

// Unused returns the directives that did not match any definition, in no
// particular order.
func (m Map) Unused() []*Entry {
	var unused []*Entry
	for _, entry := range m {
		if !entry.used {
			unused = append(unused, entry)
		}
	}

	return unused
}
