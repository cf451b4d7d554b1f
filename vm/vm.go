// Package vm provides a VirtualMachine that executes compiled rolls.
//
// The machine is a plain value stack. Instructions run left to right: NUM
// pushes its operand, and every other opcode pops its operands (the one pushed
// first is the left operand) and pushes one result. The stack is allocated
// once with the size the compiler computed, so a well-formed bytecode.Code
// never grows it.
package vm

import (
	"fmt"

	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/op"
	"github.com/risor-io/roll/rng"
)

// VirtualMachine evaluates one compiled roll. It may be run any number of
// times but is not safe for concurrent use; the Code it runs is.
type VirtualMachine struct {
	ip       int // instruction pointer
	sp       int // stack pointer
	code     *bytecode.Code
	stack    []int64
	observer Observer
}

// New creates a new Virtual Machine for code.
func New(code *bytecode.Code, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		sp:    -1,
		code:  code,
		stack: make([]int64, code.StackSize()),
	}
	for _, opt := range options {
		opt(vm)
	}
	return vm
}

// Run evaluates code once. It is shorthand for New(code, options...).Run.
func Run(code *bytecode.Code, limit uint64, sampler rng.Sampler, options ...Option) (int64, error) {
	return New(code, options...).Run(limit, sampler)
}

// Run evaluates the code and returns its result. limit caps the number of
// dice any single DICE instruction may roll; it is checked before the first
// die of that instruction is drawn. Evaluation stops at the first error.
func (vm *VirtualMachine) Run(limit uint64, sampler rng.Sampler) (int64, error) {
	vm.ip = 0
	vm.sp = -1
	code := vm.code
	count := code.InstructionCount()
	for vm.ip = 0; vm.ip < count; vm.ip++ {
		instr := code.InstructionAt(vm.ip)
		if vm.observer != nil {
			vm.observer.OnStep(StepEvent{
				IP:          vm.ip,
				Instruction: instr,
				Location:    code.LocationAt(vm.ip),
				StackDepth:  vm.sp + 1,
			})
		}
		switch instr.Code {
		case op.Num:
			vm.push(instr.Value)
		case op.Add:
			l, r := vm.pop2()
			result, ok := addInt64(l, r)
			if !ok {
				return 0, vm.evalError(errz.Overflow)
			}
			vm.push(result)
		case op.Sub:
			l, r := vm.pop2()
			result, ok := subInt64(l, r)
			if !ok {
				return 0, vm.evalError(errz.Overflow)
			}
			vm.push(result)
		case op.Mul:
			l, r := vm.pop2()
			result, ok := mulInt64(l, r)
			if !ok {
				return 0, vm.evalError(errz.Overflow)
			}
			vm.push(result)
		case op.Div:
			l, r := vm.pop2()
			if r == 0 {
				return 0, vm.evalError(errz.DivideByZero)
			}
			result, ok := divInt64(l, r)
			if !ok {
				return 0, vm.evalError(errz.Overflow)
			}
			vm.push(result)
		case op.Neg:
			result, ok := negInt64(vm.pop())
			if !ok {
				return 0, vm.evalError(errz.Overflow)
			}
			vm.push(result)
		case op.Dice:
			times, sides := vm.pop2()
			result, err := vm.roll(times, sides, limit, sampler)
			if err != nil {
				return 0, err
			}
			vm.push(result)
		default:
			return 0, fmt.Errorf("invalid opcode at offset %d: %s", vm.ip, instr.Code)
		}
	}
	if vm.sp != 0 {
		return 0, fmt.Errorf("expected 1 value on the stack at exit (got %d)", vm.sp+1)
	}
	return vm.pop(), nil
}

// roll sums times dice of the given number of sides.
func (vm *VirtualMachine) roll(times, sides int64, limit uint64, sampler rng.Sampler) (int64, error) {
	if times < 0 {
		return 0, vm.evalError(errz.RollMinTimes)
	}
	if sides < 0 {
		return 0, vm.evalError(errz.RollMinSides)
	}
	n, s := uint64(times), uint64(sides)
	if n > limit {
		return 0, vm.evalError(errz.TooManyRolls)
	}
	if n == 0 || s == 0 {
		return 0, nil
	}
	var sum int64
	for i := uint64(0); i < n; i++ {
		// sampler output is below s, which is at most MaxInt64
		face := 1 + int64(sampler.Sample(s))
		if vm.observer != nil {
			vm.observer.OnRoll(RollEvent{IP: vm.ip, Die: i, Times: n, Sides: s, Face: face})
		}
		var ok bool
		if sum, ok = addInt64(sum, face); !ok {
			return 0, vm.evalError(errz.Overflow)
		}
	}
	return sum, nil
}

func (vm *VirtualMachine) pop() int64 {
	v := vm.stack[vm.sp]
	vm.sp--
	return v
}

// pop2 pops the top two values, returning them in the order they were pushed.
func (vm *VirtualMachine) pop2() (int64, int64) {
	r := vm.stack[vm.sp]
	l := vm.stack[vm.sp-1]
	vm.sp -= 2
	return l, r
}

func (vm *VirtualMachine) push(v int64) {
	vm.sp++
	vm.stack[vm.sp] = v
}

// evalError creates an evaluation error located at the current instruction.
func (vm *VirtualMachine) evalError(kind errz.Kind) *errz.Error {
	return errz.New(kind).At(vm.code.LocationAt(vm.ip))
}
