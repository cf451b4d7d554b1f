package bytecode

import (
	"encoding/json"
	"fmt"

	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/op"
)

// Marshal converts a Code object into a JSON representation.
func Marshal(code *Code) ([]byte, error) {
	return json.Marshal(stateFromCode(code))
}

// MarshalIndent is like Marshal but indents the output.
func MarshalIndent(code *Code) ([]byte, error) {
	return json.MarshalIndent(stateFromCode(code), "", "  ")
}

// Unmarshal converts a JSON representation into a Code object. The decoded
// instructions are verified and the recorded stack size must match the one
// Verify computes.
func Unmarshal(data []byte) (*Code, error) {
	var state codeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return codeFromState(&state)
}

// Serialization types

type instructionDef struct {
	Op    string `json:"op"`
	Value *int64 `json:"value,omitempty"`
}

type locationDef struct {
	Column int `json:"column"`
	Width  int `json:"width"`
}

type codeState struct {
	Source       string           `json:"source,omitempty"`
	StackSize    int              `json:"stack_size"`
	Instructions []instructionDef `json:"instructions"`
	Locations    []locationDef    `json:"locations,omitempty"`
}

var codesByName = map[string]op.Code{}

func init() {
	for _, code := range []op.Code{op.Num, op.Add, op.Sub, op.Mul, op.Div, op.Neg, op.Dice} {
		codesByName[op.GetInfo(code).Name] = code
	}
}

func stateFromCode(code *Code) *codeState {
	state := &codeState{
		Source:       code.source,
		StackSize:    code.stackSize,
		Instructions: make([]instructionDef, len(code.instructions)),
	}
	for i, instr := range code.instructions {
		def := instructionDef{Op: instr.Code.String()}
		if instr.Code == op.Num {
			v := instr.Value
			def.Value = &v
		}
		state.Instructions[i] = def
	}
	for _, loc := range code.locations {
		state.Locations = append(state.Locations, locationDef{Column: loc.Column, Width: loc.Width})
	}
	return state
}

func codeFromState(state *codeState) (*Code, error) {
	instructions := make([]op.Instruction, len(state.Instructions))
	for i, def := range state.Instructions {
		code, ok := codesByName[def.Op]
		if !ok {
			return nil, fmt.Errorf("unknown opcode at offset %d: %q", i, def.Op)
		}
		instr := op.Instruction{Code: code}
		if code == op.Num {
			if def.Value == nil {
				return nil, fmt.Errorf("missing value for NUM at offset %d", i)
			}
			instr.Value = *def.Value
		}
		instructions[i] = instr
	}
	stackSize, err := Verify(instructions)
	if err != nil {
		return nil, err
	}
	if stackSize != state.StackSize {
		return nil, fmt.Errorf("stack size mismatch: recorded %d, computed %d",
			state.StackSize, stackSize)
	}
	var locations []errz.Location
	for _, loc := range state.Locations {
		locations = append(locations, errz.Location{Column: loc.Column, Width: loc.Width})
	}
	return NewCode(CodeParams{
		Instructions: instructions,
		StackSize:    stackSize,
		Source:       state.Source,
		Locations:    locations,
	}), nil
}
