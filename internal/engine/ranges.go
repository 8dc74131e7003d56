package engine

import (
	"slices"

	"github.com/mpyw/goowl/internal/facts"
)

// merge sorts spans and joins the ones that overlap or touch.
// Invalid spans are dropped.
func merge(spans []facts.Span) []facts.Span {
	valid := make([]facts.Span, 0, len(spans))
	for _, s := range spans {
		if s.Valid() {
			valid = append(valid, s)
		}
	}

	slices.SortFunc(valid, func(a, b facts.Span) int {
		if a.Lo != b.Lo {
			return a.Lo - b.Lo
		}
		return a.Hi - b.Hi
	})

	var out []facts.Span
	for _, s := range valid {
		if n := len(out); n > 0 && s.Lo <= out[n-1].Hi {
			out[n-1].Hi = max(out[n-1].Hi, s.Hi)
			continue
		}
		out = append(out, s)
	}

	return out
}

// clip drops everything before lo.
func clip(spans []facts.Span, lo int) []facts.Span {
	var out []facts.Span
	for _, s := range spans {
		if s.Hi <= lo {
			continue
		}
		s.Lo = max(s.Lo, lo)
		out = append(out, s)
	}

	return out
}

// covered reports whether s lies inside one of the merged spans.
func covered(s facts.Span, merged []facts.Span) bool {
	for _, m := range merged {
		if m.Lo <= s.Lo && s.Hi <= m.Hi {
			return true
		}
	}

	return false
}
