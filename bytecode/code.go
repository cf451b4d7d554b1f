package bytecode

import (
	"fmt"
	"strings"

	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/op"
)

// Code is a compiled roll. It is immutable after creation and safe for
// concurrent use.
type Code struct {
	instructions []op.Instruction
	stackSize    int
	source       string

	// Source map: one location per instruction for error reporting
	locations []errz.Location
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Instructions []op.Instruction
	StackSize    int
	Source       string
	Locations    []errz.Location
}

// NewCode creates a new immutable Code from the given parameters. Input
// slices are copied. Locations may be empty; if given, there must be one per
// instruction or they are discarded.
func NewCode(params CodeParams) *Code {
	code := &Code{
		instructions: make([]op.Instruction, len(params.Instructions)),
		stackSize:    params.StackSize,
		source:       params.Source,
	}
	copy(code.instructions, params.Instructions)
	if len(params.Locations) == len(params.Instructions) {
		code.locations = make([]errz.Location, len(params.Locations))
		copy(code.locations, params.Locations)
	}
	return code
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// InstructionAt returns the instruction at the given index.
func (c *Code) InstructionAt(index int) op.Instruction {
	return c.instructions[index]
}

// StackSize returns the maximum evaluation stack depth reached while running
// the instructions.
func (c *Code) StackSize() int {
	return c.stackSize
}

// Source returns the expression the code was compiled from.
func (c *Code) Source() string {
	return c.source
}

// LocationAt returns the source location of the instruction at the given
// index, or a zero Location if none was recorded.
func (c *Code) LocationAt(index int) errz.Location {
	if index < 0 || index >= len(c.locations) {
		return errz.Location{}
	}
	return c.locations[index]
}

// Equal reports whether two codes hold the same instructions and stack size.
// Source text and locations are not compared.
func (c *Code) Equal(other *Code) bool {
	if c.stackSize != other.stackSize || len(c.instructions) != len(other.instructions) {
		return false
	}
	for i, instr := range c.instructions {
		if instr != other.instructions[i] {
			return false
		}
	}
	return true
}

// String renders the instructions in stack order, e.g. "[10 5 ADD]".
func (c *Code) String() string {
	parts := make([]string, len(c.instructions))
	for i, instr := range c.instructions {
		parts[i] = instr.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Verify simulates the stack effect of each instruction and returns the
// maximum depth reached. It fails if an opcode is unknown, if any instruction
// would pop from an empty stack, or if the sequence does not leave exactly
// one value behind.
func Verify(instructions []op.Instruction) (int, error) {
	var current, max int
	for i, instr := range instructions {
		if !instr.Code.IsValid() {
			return 0, fmt.Errorf("invalid opcode at offset %d: %d", i, instr.Code)
		}
		info := op.GetInfo(instr.Code)
		if current < info.Pops {
			return 0, fmt.Errorf("stack underflow at offset %d (%s)", i, info.Name)
		}
		current += info.Pushes - info.Pops
		if current > max {
			max = current
		}
	}
	if current != 1 {
		return 0, fmt.Errorf("expected 1 value on the stack at exit (got %d)", current)
	}
	return max, nil
}
