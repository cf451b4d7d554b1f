package compiler

import (
	"errors"
	"strconv"
	"testing"

	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/op"
	"github.com/stretchr/testify/require"
)

func instructions(code *bytecode.Code) []op.Instruction {
	result := make([]op.Instruction, code.InstructionCount())
	for i := range result {
		result[i] = code.InstructionAt(i)
	}
	return result
}

var (
	add  = op.Of(op.Add)
	sub  = op.Of(op.Sub)
	mul  = op.Of(op.Mul)
	div  = op.Of(op.Div)
	neg  = op.Of(op.Neg)
	dice = op.Of(op.Dice)
	num  = op.Const
)

func TestCompile(t *testing.T) {
	tests := []struct {
		input     string
		expected  []op.Instruction
		stackSize int
	}{
		{"10 + 5", []op.Instruction{num(10), num(5), add}, 2},
		{"10 - 5", []op.Instruction{num(10), num(5), sub}, 2},
		{"10 * 5", []op.Instruction{num(10), num(5), mul}, 2},
		{"10 / 5", []op.Instruction{num(10), num(5), div}, 2},
		{"10 d 5", []op.Instruction{num(10), num(5), dice}, 2},
		{"- 5", []op.Instruction{num(5), neg}, 1},
		{"d 5", []op.Instruction{num(1), num(5), dice}, 2},
		{"d5", []op.Instruction{num(1), num(5), dice}, 2},
		{"42", []op.Instruction{num(42)}, 1},
		{"10 d ( 50 + 50 )", []op.Instruction{num(10), num(50), num(50), add, dice}, 3},
		{"10 + 5 * 5", []op.Instruction{num(10), num(5), num(5), mul, add}, 3},
		{"10 * 5 + 5", []op.Instruction{num(10), num(5), mul, num(5), add}, 2},
		{"1 - 2 - 3", []op.Instruction{num(1), num(2), sub, num(3), sub}, 2},
		{"8 / 4 / 2", []op.Instruction{num(8), num(4), div, num(2), div}, 2},
		{"(1d4)d(1d6)", []op.Instruction{num(1), num(4), dice, num(1), num(6), dice, dice}, 3},
		{"-d6", []op.Instruction{num(1), num(6), dice, neg}, 2},
		{"-2d6", []op.Instruction{num(2), num(6), dice, neg}, 2},
		{"3d6+2", []op.Instruction{num(3), num(6), dice, num(2), add}, 2},
		{"((((7))))", []op.Instruction{num(7)}, 1},
		{"((1+2))", []op.Instruction{num(1), num(2), add}, 2},
		{"(1)+(2)", []op.Instruction{num(1), num(2), add}, 2},
		{"((1+2)) d (( 6 ))", []op.Instruction{num(1), num(2), add, num(6), dice}, 2},
		{"-(-(1))", []op.Instruction{num(1), neg, neg}, 1},
		{"1+(2+(3+(4)))", []op.Instruction{num(1), num(2), num(3), num(4), add, add, add}, 4},
		{"9223372036854775807", []op.Instruction{num(9223372036854775807)}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, err := Compile(tt.input)
			require.Nil(t, err)
			require.Equal(t, tt.expected, instructions(code))
			require.Equal(t, tt.stackSize, code.StackSize())
			require.Equal(t, tt.input, code.Source())
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		input  string
		kind   errz.Kind
		errMsg string
		column int
	}{
		{"10 * *", errz.UnexpectedInput, `unexpected input: "*"`, 6},
		{"10 * (", errz.UnexpectedEOF, "unexpected end of input", 7},
		{"10 * (10", errz.ExpectedInput, `expected ")", got end of input`, 9},
		{"((10)", errz.ExpectedInput, `expected ")", got end of input`, 6},
		{"((1)+2)", errz.ExpectedInput, `expected ")", got "+"`, 5},
		{"((1+2)*3)", errz.ExpectedInput, `expected ")", got "*"`, 7},
		{"(((4))", errz.ExpectedInput, `expected ")", got end of input`, 7},
		{"((4)))", errz.UnexpectedInput, `unexpected input: ")"`, 6},
		{"(10 5)", errz.ExpectedInput, `expected ")", got "5"`, 5},
		{"10 * asd", errz.UnexpectedInput, `unexpected input: "as"`, 6},
		{"", errz.UnexpectedEOF, "unexpected end of input", 1},
		{"   ", errz.UnexpectedEOF, "unexpected end of input", 4},
		{"d", errz.UnexpectedEOF, "unexpected end of input", 2},
		{"1d", errz.UnexpectedEOF, "unexpected end of input", 3},
		{"1dd6", errz.UnexpectedInput, `unexpected input: "d"`, 3},
		{"10 5", errz.UnexpectedInput, `unexpected input: "5"`, 4},
		{"1)", errz.UnexpectedInput, `unexpected input: ")"`, 2},
		{"1d6 x", errz.UnexpectedInput, `unexpected input: "x"`, 5},
		{"--1", errz.UnexpectedInput, `unexpected input: "-"`, 2},
		{"+1", errz.UnexpectedInput, `unexpected input: "+"`, 1},
		{"1d6d6", errz.UnexpectedInput, `unexpected input: "d"`, 4},
		{
			"99999999999999999999",
			errz.InvalidInteger,
			`invalid integer "99999999999999999999": strconv.ParseInt: parsing "99999999999999999999": value out of range`,
			1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Compile(tt.input)
			require.NotNil(t, err)
			require.Equal(t, tt.errMsg, err.Error())
			var e *errz.Error
			require.True(t, errors.As(err, &e))
			require.Equal(t, tt.kind, e.Kind)
			require.Equal(t, tt.column, e.Location.Column)
		})
	}
}

func TestInvalidIntegerCause(t *testing.T) {
	_, err := Compile("1 + 18446744073709551616")
	require.True(t, errors.Is(err, errz.ErrInvalidInteger))
	require.True(t, errors.Is(err, strconv.ErrRange))
}

func TestCompileIsDeterministic(t *testing.T) {
	for _, input := range corpus {
		a, err := Compile(input)
		require.Nil(t, err, input)
		b, err := Compile(input)
		require.Nil(t, err, input)
		require.True(t, a.Equal(b), input)
		require.Equal(t, instructions(a), instructions(b))
	}
}

// corpus is a set of valid expressions used to check compiler invariants.
var corpus = []string{
	"1",
	"d20",
	"3d6+2",
	"(1d4)d(1d6)",
	"(1d20)d(1d20)",
	"10 d ( 50 + 50 )",
	"-(-(-(-(1))))",
	"2 * (3 + 4) - 5 / (6 - 7)",
	"1+2*3-4/5+6*7-8/9",
	"((((((1+2))))))",
	"(1+2)*(3+(4*(5+(6*7))))",
	"1+(2+(3+(4+(5+(6+(7+(8+(9))))))))",
	"d(d(d(d(6))))",
	"4d6 - 1d6 + -2",
	"-d4 * -d4",
	"100 / 7 / 2 d 3",
}

// The stack size recorded by the compiler must match the depth computed by an
// independent replay of the instructions, and that replay must never
// underflow and must end with exactly one value.
func TestStackSizeMatchesReplay(t *testing.T) {
	for _, input := range corpus {
		code, err := Compile(input)
		require.Nil(t, err, input)
		depth, err := bytecode.Verify(instructions(code))
		require.Nil(t, err, input)
		require.Equal(t, depth, code.StackSize(), input)
	}
}

func TestLocations(t *testing.T) {
	code, err := Compile("12 / d6")
	require.Nil(t, err)
	require.Equal(t, []op.Instruction{num(12), num(1), num(6), dice, div}, instructions(code))
	require.Equal(t, errz.Location{Column: 1, Width: 2}, code.LocationAt(0))
	require.Equal(t, errz.Location{Column: 6, Width: 1}, code.LocationAt(1))
	require.Equal(t, errz.Location{Column: 7, Width: 1}, code.LocationAt(2))
	require.Equal(t, errz.Location{Column: 6, Width: 1}, code.LocationAt(3))
	require.Equal(t, errz.Location{Column: 4, Width: 1}, code.LocationAt(4))
}
