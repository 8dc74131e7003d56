// Package sched runs analysis units on a dedicated worker pool and drains
// their results through a single elected owner.
//
// # Runtime
//
// [Runtime] is a fixed pool of worker goroutines reading an unbounded queue,
// so submitting work never blocks the caller:
//
//	rt := sched.NewRuntime(sched.DefaultWorkers, sched.DefaultStackMax)
//	defer rt.Close()
//
// # Drain Ownership
//
// [Scheduler.Spawn] inserts a task into the in-flight set and reads the set's
// size in one critical section. The caller that sees the size become exactly
// 1 is elected drain owner:
//
//	spawn A: set {A}        size 1 -> A's caller owns the drain
//	spawn B: set {A, B}     size 2 -> nothing more to do
//	drain:   wait grace, then emit A or B as each completes
//	drain:   set {}         -> ownership lapses
//	spawn C: set {C}        size 1 -> a new owner is elected
//
// The owner first waits a grace period so that a burst of submissions lands in
// the set it drains, then takes completed tasks in completion order, removes
// them from the set and hands their results to the [Sink]. There is never a
// permanently running drain goroutine, and there is always exactly one while
// work is pending.
//
// # Failure
//
// A unit that returns an error or panics, and a sink that cannot write, are
// fatal: the error is passed to Options.OnFatal and returned by
// [Scheduler.Wait]. No result is ever skipped silently.
package sched
