// Package ssa builds the SSA form goowl extracts ownership facts from.
//
// # Builder Mode
//
// goowl does not use buildssa: it needs a different builder mode. [Builder]
// builds every package with [DefaultMode]:
//
//   - ssa.NaiveForm keeps each local variable as an Alloc that is touched only
//     through loads and stores. No optimization or register lifting happens, so
//     every read and write of a variable stays visible.
//   - ssa.GlobalDebug emits a DebugRef for each source expression, which maps
//     loads back to the identifier that produced them.
//
// # Definitions
//
// [Program.Definitions] lists every function, method and closure body of the
// package. Each one is intercepted separately:
//
//	prog := ssa.Result(pass, ssa.Builder)
//	for _, fn := range prog.Definitions() {
//	    body := ssa.Extract(fn, pass.TypesInfo)
//	    ...
//	}
//
// # Facts
//
// [Extract] copies the facts of one definition into a facts.Body:
//
//	x := n       // write x, read n
//	p := &x      // mutable borrow of x (its address is stored)
//	_ = s.f      // shared borrow of s (field address only loaded)
//	go func() {  // capture of every variable bound into the closure
//	    use(x)
//	}()
//
// Each block records the locals it reads before writing (uses) and the locals
// it writes (defs), which is all the engine needs for liveness.
package ssa
