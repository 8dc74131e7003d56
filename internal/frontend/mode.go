package frontend

import (
	"strings"

	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/mpyw/goowl"
)

// Mode is the way a run uses the host.
type Mode int

const (
	// ModeAnalysis runs the host with the interceptor installed.
	ModeAnalysis Mode = iota
	// ModePassthrough runs the host unmodified.
	ModePassthrough
)

func (m Mode) String() string {
	switch m {
	case ModeAnalysis:
		return "analysis"
	case ModePassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// printFlags are the host flags that print something and exit.
var printFlags = map[string]bool{
	"flags": true,
	"help":  true,
	"h":     true,
}

// Decide selects the mode for args. Any introspection query selects
// passthrough.
func Decide(args []string) Mode {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if IsIntrospection(arg) {
			return ModePassthrough
		}
	}

	return ModeAnalysis
}

// IsIntrospection reports whether arg is a version query (-V, -V=full) or a
// print flag (-flags, -help, -h), with one or two leading dashes.
func IsIntrospection(arg string) bool {
	name, ok := strings.CutPrefix(arg, "-")
	if !ok {
		return false
	}
	name = strings.TrimPrefix(name, "-")

	if name == "V" || strings.HasPrefix(name, "V=") {
		return true
	}

	return printFlags[name]
}

// Passthrough runs the unmodified host on os.Args and exits with its code.
func Passthrough() {
	singlechecker.Main(goowl.Analyzer)
}
