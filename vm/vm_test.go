package vm

import (
	"errors"
	"math"
	"testing"

	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/compiler"
	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/op"
	"github.com/risor-io/roll/rng"
	"github.com/stretchr/testify/require"
)

func run(input string, limit uint64, sampler rng.Sampler) (int64, error) {
	code, err := compiler.Compile(input)
	if err != nil {
		return 0, err
	}
	return Run(code, limit, sampler)
}

func TestEval(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"10 + 5", 15},
		{"10 - 5", 5},
		{"10 * 5", 50},
		{"10 / 5", 2},
		{"10 d 5", 10 * 3},
		{"- 5", -5},
		{"d 5", 3},
		{"10 d ( 50 + 50 )", 10 * 50},
		{"10 + 5 * 5", 35},
		{"10 * 5 + 5", 55},
		{"1 - 2 - 3", -4},
		{"100 / 10 / 5", 2},
		{"7 / 2", 3},
		{"-7 / 2", -3},
		{"7 / -2", -3},
		{"-7 / -2", 3},
		{"0d6", 0},
		{"6d0", 0},
		{"0d0", 0},
		{"(1d4)d(1d6)", 2 * 2},
		{"-d6", -3},
		{"((1+2))", 3},
		{"9223372036854775807", math.MaxInt64},
		{"-9223372036854775807 - 1", math.MinInt64},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := run(tt.input, math.MaxUint64, rng.Midpoint())
			require.Nil(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		input string
		limit uint64
		err   *errz.Error
		msg   string
	}{
		{"(-1)d1", math.MaxUint64, errz.ErrRollMinTimes, "can't roll less than 0 times"},
		{"10d(-1)", math.MaxUint64, errz.ErrRollMinSides, "can't roll a less than 0-sided die"},
		{"(-1)d(-1)", math.MaxUint64, errz.ErrRollMinTimes, "can't roll less than 0 times"},
		{"2d5", 1, errz.ErrTooManyRolls, "too many rolls"},
		{"2d0", 1, errz.ErrTooManyRolls, "too many rolls"},
		{"1000000000d1000000000", 1000, errz.ErrTooManyRolls, "too many rolls"},
		{"1/0", math.MaxUint64, errz.ErrDivideByZero, "can't divide by zero"},
		{"1/(1-1)", math.MaxUint64, errz.ErrDivideByZero, "can't divide by zero"},
		{"9223372036854775807 + 1", math.MaxUint64, errz.ErrOverflow, "number overflowed"},
		{"-9223372036854775807 - 2", math.MaxUint64, errz.ErrOverflow, "number overflowed"},
		{"4611686018427387904 * 2", math.MaxUint64, errz.ErrOverflow, "number overflowed"},
		{"-(-9223372036854775807 - 1)", math.MaxUint64, errz.ErrOverflow, "number overflowed"},
		{"(-9223372036854775807 - 1) / -1", math.MaxUint64, errz.ErrOverflow, "number overflowed"},
		{"(-9223372036854775807 - 1) * -1", math.MaxUint64, errz.ErrOverflow, "number overflowed"},
		{"2d9223372036854775807", math.MaxUint64, errz.ErrOverflow, "number overflowed"},
		{"((1)+2)", math.MaxUint64, errz.ErrExpectedInput, `expected ")", got "+"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sampler := rng.Midpoint()
			if tt.err == errz.ErrOverflow {
				// push dice sums to the top of their range
				sampler = rng.NewFixed(math.MaxUint64)
			}
			_, err := run(tt.input, tt.limit, sampler)
			require.NotNil(t, err)
			require.True(t, errors.Is(err, tt.err), "got %v", err)
			require.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestFixedSamplerProperty(t *testing.T) {
	for _, v := range []uint64{0, 1, 3, 5, 100} {
		for _, k := range []int64{0, 1, 2, 7} {
			for _, n := range []int64{1, 2, 6, 20} {
				code := bytecode.NewCode(bytecode.CodeParams{
					Instructions: []op.Instruction{op.Const(k), op.Const(n), op.Of(op.Dice)},
					StackSize:    2,
				})
				result, err := Run(code, math.MaxUint64, rng.NewFixed(v))
				require.Nil(t, err)
				require.Equal(t, k*(1+int64(min(v, uint64(n-1)))), result)
			}
		}
	}
}

// counting wraps a sampler and records how many draws were made.
type counting struct {
	rng.Sampler
	draws int
}

func (c *counting) Sample(n uint64) uint64 {
	c.draws++
	return c.Sampler.Sample(n)
}

func TestLimitCheckedBeforeSampling(t *testing.T) {
	sampler := &counting{Sampler: rng.Midpoint()}
	_, err := run("1d6 + 3d6", 2, sampler)
	require.True(t, errors.Is(err, errz.ErrTooManyRolls))
	require.Equal(t, 1, sampler.draws)

	// zero dice or zero sides roll nothing, but still count toward the limit
	sampler = &counting{Sampler: rng.Midpoint()}
	result, err := run("0d6 + 6d0", 6, sampler)
	require.Nil(t, err)
	require.Equal(t, int64(0), result)
	require.Equal(t, 0, sampler.draws)

	sampler = &counting{Sampler: rng.Midpoint()}
	result, err = run("0d6 + 0d0", 0, sampler)
	require.Nil(t, err)
	require.Equal(t, int64(0), result)
	require.Equal(t, 0, sampler.draws)

	sampler = &counting{Sampler: rng.Midpoint()}
	_, err = run("6d0", 5, sampler)
	require.True(t, errors.Is(err, errz.ErrTooManyRolls))
	require.Equal(t, 0, sampler.draws)
}

func TestFacesWithinSides(t *testing.T) {
	code, err := compiler.Compile("200d7")
	require.Nil(t, err)
	obs := &recorder{}
	_, err = Run(code, 1000, rng.New(11), WithObserver(obs))
	require.Nil(t, err)
	require.Len(t, obs.rolls, 200)
	for i, roll := range obs.rolls {
		require.GreaterOrEqual(t, roll.Face, int64(1))
		require.LessOrEqual(t, roll.Face, int64(7))
		require.Equal(t, uint64(i), roll.Die)
		require.Equal(t, uint64(200), roll.Times)
	}
}

func TestSeededReproducible(t *testing.T) {
	tests := []struct {
		input    string
		seed     uint64
		expected int64
	}{
		{"1d20", 0, 2},
		{"1d20", 1, 17},
		{"1d20", 1423, 12},
		{"3d6+2", 0, 11},
		{"3d6+2", 42, 18},
		{"(1d20)d(1d20)", 1, 70},
		{"(1d20)d(1d20)", 1423, 108},
	}
	for _, tt := range tests {
		code, err := compiler.Compile(tt.input)
		require.Nil(t, err)
		first, err := Run(code, math.MaxUint64, rng.New(tt.seed))
		require.Nil(t, err)
		second, err := Run(code, math.MaxUint64, rng.New(tt.seed))
		require.Nil(t, err)
		require.Equal(t, tt.expected, first, "%s seed %d", tt.input, tt.seed)
		require.Equal(t, first, second)
	}
}

type recorder struct {
	NoOpObserver
	steps []StepEvent
	rolls []RollEvent
}

func (r *recorder) OnStep(event StepEvent) { r.steps = append(r.steps, event) }
func (r *recorder) OnRoll(event RollEvent) { r.rolls = append(r.rolls, event) }

func TestObserver(t *testing.T) {
	code, err := compiler.Compile("2d6 + 1")
	require.Nil(t, err)
	obs := &recorder{}
	result, err := Run(code, 10, rng.NewFixed(4), WithObserver(obs))
	require.Nil(t, err)
	require.Equal(t, int64(11), result)

	require.Len(t, obs.steps, 5)
	depths := []int{0, 1, 2, 1, 2}
	for i, step := range obs.steps {
		require.Equal(t, i, step.IP)
		require.Equal(t, code.InstructionAt(i), step.Instruction)
		require.Equal(t, depths[i], step.StackDepth)
	}
	require.Equal(t, []RollEvent{
		{IP: 2, Die: 0, Times: 2, Sides: 6, Face: 5},
		{IP: 2, Die: 1, Times: 2, Sides: 6, Face: 5},
	}, obs.rolls)
}

func TestErrorLocation(t *testing.T) {
	_, err := run("4 + 1 / 0", math.MaxUint64, rng.Midpoint())
	var e *errz.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, errz.Location{Column: 7, Width: 1}, e.Location)
}

func TestVirtualMachineReuse(t *testing.T) {
	code, err := compiler.Compile("(2d6) * (1d4 + 1)")
	require.Nil(t, err)
	machine := New(code)
	for seed := uint64(0); seed < 50; seed++ {
		a, err := machine.Run(100, rng.New(seed))
		require.Nil(t, err)
		b, err := Run(code, 100, rng.New(seed))
		require.Nil(t, err)
		require.Equal(t, b, a)
	}
}

func TestInvalidOpcode(t *testing.T) {
	code := bytecode.NewCode(bytecode.CodeParams{
		Instructions: []op.Instruction{op.Const(1), {Code: op.Code(77)}},
		StackSize:    1,
	})
	_, err := Run(code, 1, rng.Midpoint())
	require.EqualError(t, err, "invalid opcode at offset 1: INVALID(77)")
}

func TestArithHelpers(t *testing.T) {
	_, ok := addInt64(math.MaxInt64, 1)
	require.False(t, ok)
	_, ok = addInt64(math.MinInt64, -1)
	require.False(t, ok)
	v, ok := addInt64(math.MaxInt64, math.MinInt64)
	require.True(t, ok)
	require.Equal(t, int64(-1), v)

	_, ok = subInt64(math.MinInt64, 1)
	require.False(t, ok)
	_, ok = subInt64(0, math.MinInt64)
	require.False(t, ok)
	v, ok = subInt64(-1, math.MinInt64)
	require.True(t, ok)
	require.Equal(t, int64(math.MaxInt64), v)

	_, ok = mulInt64(math.MinInt64, -1)
	require.False(t, ok)
	_, ok = mulInt64(-1, math.MinInt64)
	require.False(t, ok)
	_, ok = mulInt64(1<<32, 1<<31)
	require.False(t, ok)
	v, ok = mulInt64(-(1 << 31), 1<<32)
	require.True(t, ok)
	require.Equal(t, int64(math.MinInt64), v)

	_, ok = divInt64(math.MinInt64, -1)
	require.False(t, ok)
	v, ok = divInt64(-9, 4)
	require.True(t, ok)
	require.Equal(t, int64(-2), v)

	_, ok = negInt64(math.MinInt64)
	require.False(t, ok)
	v, ok = negInt64(math.MaxInt64)
	require.True(t, ok)
	require.Equal(t, int64(-math.MaxInt64), v)
}

func BenchmarkRun(b *testing.B) {
	code, err := compiler.Compile("(1d20)d(1d20) + 3d6 * 2")
	require.Nil(b, err)
	machine := New(code)
	sampler := rng.New(1423)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := machine.Run(math.MaxUint64, sampler); err != nil {
			b.Fatal(err)
		}
	}
}
