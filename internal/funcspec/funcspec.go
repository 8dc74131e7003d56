package funcspec

import (
	"go/types"
	"strings"
	"unicode"
)

// Spec holds parsed components of a function specification.
// Format: "pkg/path.Func" or "pkg/path.Type.Method".
type Spec struct {
	PkgPath  string
	TypeName string // empty for package-level functions
	FuncName string
}

// Parse parses a single function specification string into components.
// Format: "pkg/path.Func" or "pkg/path.Type.Method".
func Parse(s string) Spec {
	spec := Spec{}

	lastDot := strings.LastIndex(s, ".")
	if lastDot == -1 {
		spec.FuncName = s

		return spec
	}

	spec.FuncName = s[lastDot+1:]
	prefix := s[:lastDot]

	// Check if there's another dot (indicating Type.Method)
	// Type names start with uppercase in Go.
	secondLastDot := strings.LastIndex(prefix, ".")
	if secondLastDot != -1 {
		possibleType := prefix[secondLastDot+1:]
		if len(possibleType) > 0 && unicode.IsUpper(rune(possibleType[0])) {
			spec.TypeName = possibleType
			spec.PkgPath = prefix[:secondLastDot]

			return spec
		}
	}

	spec.PkgPath = prefix

	return spec
}

// Matches checks if a types.Func matches this specification.
func (s Spec) Matches(fn *types.Func) bool {
	if fn.Name() != s.FuncName {
		return false
	}

	pkg := fn.Pkg()
	if pkg == nil || pkg.Path() != s.PkgPath {
		return false
	}

	// Check if it's a method
	sig, ok := fn.Type().(*types.Signature)
	if !ok {
		return false
	}
	recv := sig.Recv()

	if s.TypeName == "" {
		// Package-level function: should have no receiver
		return recv == nil
	}

	// Method: should have receiver of correct type
	if recv == nil {
		return false
	}

	recvType := recv.Type()
	// Handle pointer receivers
	if ptr, ok := recvType.(*types.Pointer); ok {
		recvType = ptr.Elem()
	}

	named, ok := types.Unalias(recvType).(*types.Named)
	if !ok {
		return false
	}

	return named.Obj().Name() == s.TypeName
}

// FullName returns a short display name such as "errgroup.Group.Go".
func (s Spec) FullName() string {
	pkg := s.PkgPath
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		pkg = pkg[i+1:]
	}

	parts := make([]string, 0, 3)
	if pkg != "" {
		parts = append(parts, pkg)
	}
	if s.TypeName != "" {
		parts = append(parts, s.TypeName)
	}

	return strings.Join(append(parts, s.FuncName), ".")
}

// List is a set of specifications parsed from a comma-separated flag value.
type List []Spec

// ParseList parses "a.F,b.T.M" into a List. Empty elements are skipped.
func ParseList(s string) List {
	var list List
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		list = append(list, Parse(part))
	}

	return list
}

// Matches reports whether fn matches any spec in the list. An empty list
// matches everything.
func (l List) Matches(fn *types.Func) bool {
	if len(l) == 0 {
		return true
	}
	if fn == nil {
		return false
	}

	for _, spec := range l {
		if spec.Matches(fn) {
			return true
		}
	}

	return false
}

// Names returns the display names of the specs in the list.
func (l List) Names() []string {
	names := make([]string, 0, len(l))
	for _, spec := range l {
		names = append(names, spec.FullName())
	}

	return names
}
