package vm

import (
	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/op"
)

// Observer is an interface for observing VM execution events. It can be used
// to trace a roll, for example to show every die that was drawn.
//
// Implementations can embed NoOpObserver to provide default no-op
// implementations for methods they don't need.
type Observer interface {
	// OnStep is called before each instruction executes.
	OnStep(event StepEvent)

	// OnRoll is called after each individual die is drawn.
	OnRoll(event RollEvent)
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// IP is the instruction pointer (index into the instruction array).
	IP int

	// Instruction is the instruction being executed.
	Instruction op.Instruction

	// Location is the source location of the instruction.
	Location errz.Location

	// StackDepth is the current depth of the value stack.
	StackDepth int
}

// RollEvent describes one die drawn by a DICE instruction.
type RollEvent struct {
	// IP is the instruction pointer of the DICE instruction.
	IP int

	// Die is the 0-indexed number of this die within the roll.
	Die uint64

	// Times is the total number of dice in the roll.
	Times uint64

	// Sides is the number of sides of each die.
	Sides uint64

	// Face is the value shown, in [1, Sides].
	Face int64
}

// NoOpObserver is an Observer implementation that does nothing.
type NoOpObserver struct{}

func (NoOpObserver) OnStep(StepEvent) {}
func (NoOpObserver) OnRoll(RollEvent) {}

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}
