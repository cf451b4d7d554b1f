// Package dis supports analysis of compiled rolls by disassembling them.
// This works with the opcodes defined in the `op` package and the source map
// kept by bytecode.Code.
package dis

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/internal/table"
	"github.com/risor-io/roll/op"
)

// Instruction represents a single bytecode instruction.
type Instruction struct {
	Offset int
	Name   string
	Opcode op.Code
	// Operand is set for NUM only
	Operand *int64
	// Depth is the stack depth after the instruction executes
	Depth int
	// Annotation is the source text the instruction was compiled from, or
	// the operator symbol when the code carries no source map
	Annotation string
}

// Disassemble returns a parsed representation of the given bytecode.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	source := []rune(code.Source())
	instructions := make([]Instruction, 0, code.InstructionCount())
	var depth int
	for i := 0; i < code.InstructionCount(); i++ {
		instr := code.InstructionAt(i)
		if !instr.Code.IsValid() {
			return nil, fmt.Errorf("invalid opcode at offset %d: %s", i, instr.Code)
		}
		info := op.GetInfo(instr.Code)
		depth += info.Pushes - info.Pops
		entry := Instruction{
			Offset:     i,
			Name:       info.Name,
			Opcode:     instr.Code,
			Depth:      depth,
			Annotation: sourceText(source, code, i),
		}
		if entry.Annotation == "" {
			entry.Annotation = info.Symbol
		}
		if instr.Code == op.Num {
			v := instr.Value
			entry.Operand = &v
		}
		instructions = append(instructions, entry)
	}
	return instructions, nil
}

func sourceText(source []rune, code *bytecode.Code, index int) string {
	loc := code.LocationAt(index)
	if loc.IsZero() {
		return ""
	}
	start := loc.Column - 1
	end := start + loc.Width
	if start < 0 || end > len(source) {
		return ""
	}
	return string(source[start:end])
}

var (
	bold   = color.New(color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
)

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) {
	var lines [][]string
	for _, instr := range instructions {
		operand := ""
		if instr.Operand != nil {
			operand = yellow(fmt.Sprintf("%d", *instr.Operand))
		}
		var annotation string
		if instr.Annotation != "" {
			annotation = cyan(instr.Annotation)
		}
		lines = append(lines, []string{
			fmt.Sprintf("%d", instr.Offset),
			bold(instr.Name),
			operand,
			fmt.Sprintf("%d", instr.Depth),
			annotation,
		})
	}

	table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERAND", "DEPTH", "SOURCE"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

// MaxDepth returns the deepest stack depth reached by the instructions.
func MaxDepth(instructions []Instruction) int {
	var max int
	for _, instr := range instructions {
		if instr.Depth > max {
			max = instr.Depth
		}
	}
	return max
}
