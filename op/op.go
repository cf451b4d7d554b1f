// Package op defines the opcodes used by the roll compiler and virtual machine.
package op

import "fmt"

// Code is an integer opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = 0

	// Push constants
	Num Code = 1

	// Arithmetic
	Add Code = 10
	Sub Code = 11
	Mul Code = 12
	Div Code = 13
	Neg Code = 14

	// Dice
	Dice Code = 20
)

// Info contains information about an opcode, including its effect on the
// evaluation stack.
type Info struct {
	Code   Code
	Name   string
	Symbol string
	Pops   int
	Pushes int
}

var infos = make([]Info, 256)

func init() {
	type opInfo struct {
		op     Code
		name   string
		symbol string
		pops   int
		pushes int
	}
	ops := []opInfo{
		{Num, "NUM", "", 0, 1},
		{Add, "ADD", "+", 2, 1},
		{Sub, "SUB", "-", 2, 1},
		{Mul, "MUL", "*", 2, 1},
		{Div, "DIV", "/", 2, 1},
		{Neg, "NEG", "-", 1, 1},
		{Dice, "DICE", "d", 2, 1},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:   o.op,
			Name:   o.name,
			Symbol: o.symbol,
			Pops:   o.pops,
			Pushes: o.pushes,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	return infos[op]
}

// IsValid reports whether the opcode is one the virtual machine executes.
func (c Code) IsValid() bool {
	return infos[c].Name != ""
}

// String returns the opcode name, e.g. "DICE".
func (c Code) String() string {
	if info := infos[c]; info.Name != "" {
		return info.Name
	}
	return fmt.Sprintf("INVALID(%d)", uint8(c))
}

// Instruction is a single stack machine instruction. Value is only meaningful
// for Num instructions.
type Instruction struct {
	Code  Code
	Value int64
}

// Const returns a Num instruction that pushes v.
func Const(v int64) Instruction {
	return Instruction{Code: Num, Value: v}
}

// Of returns an instruction without an operand.
func Of(code Code) Instruction {
	return Instruction{Code: code}
}

// String renders the instruction in stack order notation: numbers print as
// themselves and operators by name.
func (i Instruction) String() string {
	if i.Code == Num {
		return fmt.Sprintf("%d", i.Value)
	}
	return i.Code.String()
}
