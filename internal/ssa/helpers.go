package ssa

import (
	"go/token"

	"golang.org/x/tools/go/ssa"
)

// OnlyLoaded reports whether the address addr is only ever read through:
// every referrer is a load, a debug reference, or a further field or element
// address that is itself only loaded.
func OnlyLoaded(addr ssa.Value) bool {
	return onlyLoaded(addr, make(map[ssa.Value]bool))
}

func onlyLoaded(addr ssa.Value, visited map[ssa.Value]bool) bool {
	if visited[addr] {
		return true
	}
	visited[addr] = true

	refs := addr.Referrers()
	if refs == nil {
		return true
	}

	for _, ref := range *refs {
		switch r := ref.(type) {
		case *ssa.DebugRef:
		case *ssa.UnOp:
			if r.Op != token.MUL {
				return false
			}
		case *ssa.FieldAddr:
			if !onlyLoaded(r, visited) {
				return false
			}
		case *ssa.IndexAddr:
			if !onlyLoaded(r, visited) {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// Operands returns the values instr reads, skipping nil slots.
func Operands(instr ssa.Instruction) []ssa.Value {
	var vals []ssa.Value
	for _, op := range instr.Operands(nil) {
		if op != nil && *op != nil {
			vals = append(vals, *op)
		}
	}

	return vals
}
