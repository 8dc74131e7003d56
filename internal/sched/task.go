package sched

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/fatal"
)

// State is the lifecycle state of a task.
type State int32

// Task states. A task only moves forward.
const (
	Pending State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

var errRuntimeClosed = errors.New("runtime is closed")

// Task is one scheduled analysis unit.
type Task struct {
	ID uuid.UUID

	unit  engine.Unit
	state atomic.Int32

	// Written by the worker before completion, read by the drain owner after.
	result engine.Result
	err    error
}

func newTask(unit engine.Unit) *Task {
	return &Task{ID: uuid.New(), unit: unit}
}

// State returns the current state.
func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) run() {
	t.state.Store(int32(Running))
	defer t.state.Store(int32(Completed))

	var pc panics.Catcher
	pc.Try(func() {
		t.result, t.err = t.unit.Analyze()
	})

	if r := pc.Recovered(); r != nil {
		t.err = fatal.Wrap("analyze", t.ID.String(), r.AsError())
		return
	}
	t.err = fatal.Wrap("analyze", t.ID.String(), t.err)
}

func (t *Task) abandon(err error) {
	t.err = fatal.Wrap("schedule", t.ID.String(), err)
	t.state.Store(int32(Completed))
}
