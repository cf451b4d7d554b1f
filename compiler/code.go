package compiler

import (
	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/op"
)

// stackTracker follows the evaluation stack depth at compile time.
type stackTracker struct {
	current int
	max     int
}

func (s *stackTracker) push(n int) {
	s.current += n
	if s.current > s.max {
		s.max = s.current
	}
}

func (s *stackTracker) pop(n int) {
	s.current -= n
}

// code accumulates instructions during compilation.
type code struct {
	instructions []op.Instruction
	locations    []errz.Location
	stack        stackTracker
}

func newCode() *code {
	return &code{
		instructions: make([]op.Instruction, 0, 64),
		locations:    make([]errz.Location, 0, 64),
	}
}

// emit appends an instruction and applies its stack effect.
func (c *code) emit(instr op.Instruction, loc errz.Location) {
	info := op.GetInfo(instr.Code)
	c.stack.pop(info.Pops)
	c.stack.push(info.Pushes)
	c.instructions = append(c.instructions, instr)
	c.locations = append(c.locations, loc)
}

func (c *code) toBytecode(source string) *bytecode.Code {
	return bytecode.NewCode(bytecode.CodeParams{
		Instructions: c.instructions,
		StackSize:    c.stack.max,
		Source:       source,
		Locations:    c.locations,
	})
}
