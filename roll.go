// Package roll evaluates dice notation such as "3d6+2" or "(1d20)d(1d20)".
//
// An expression is compiled once into a compact postfix program and can then
// be evaluated any number of times, concurrently if desired, against any
// source of randomness:
//
//	code, err := roll.Compile("(1d20)d(1d20)")
//	if err != nil {
//		return err
//	}
//	result, err := roll.Evaluate(code, roll.DefaultLimit, rng.New(1423))
//
// Eval combines both steps with a seeded generator, so the same seed and
// expression always produce the same result.
package roll

import (
	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/compiler"
	"github.com/risor-io/roll/rng"
	"github.com/risor-io/roll/vm"
)

// DefaultLimit is the number of dice a single roll may throw when the caller
// has no better bound in mind.
const DefaultLimit uint64 = 1_000_000

// Compile parses source and compiles it into executable bytecode.
// The returned Code is immutable and safe for concurrent use.
func Compile(source string) (*bytecode.Code, error) {
	return compiler.Compile(source)
}

// Evaluate runs compiled code with the given sampler. limit caps the number
// of dice any one roll may throw. Each call creates fresh VM state, so the
// same Code may be evaluated from many goroutines as long as each one uses
// its own sampler.
func Evaluate(code *bytecode.Code, limit uint64, sampler rng.Sampler, opts ...Option) (int64, error) {
	o := collectOptions(opts...)
	return vm.Run(code, limit, sampler, o.vmOpts()...)
}

// Eval is a convenience function that compiles source and evaluates it with a
// generator seeded from seed.
func Eval(source string, seed, limit uint64, opts ...Option) (int64, error) {
	code, err := Compile(source)
	if err != nil {
		return 0, err
	}
	return Evaluate(code, limit, rng.New(seed), opts...)
}
