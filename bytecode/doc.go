// Package bytecode provides the immutable representation of a compiled roll.
//
// A [Code] is the output of compilation: an ordered list of stack machine
// instructions in postfix order, plus the maximum evaluation stack depth the
// list needs. It is created once per successfully compiled expression and can
// be evaluated any number of times, with any seed and roll limit, including
// from several goroutines at once.
//
// # Immutability Guarantees
//
//   - No mutation methods exist on [Code]
//   - All fields are unexported
//   - [NewCode] copies its input slices
//   - Index-based accessors are provided instead of slice getters
//
//	code, err := compiler.Compile("3d6 + 2")
//	if err != nil {
//	    return err
//	}
//	for i := 0; i < code.InstructionCount(); i++ {
//	    fmt.Println(code.InstructionAt(i))
//	}
//	fmt.Println("stack size:", code.StackSize())
//
// # Serialization
//
// [Marshal] and [Unmarshal] convert a Code to and from JSON. Unmarshal runs
// [Verify] on the decoded instructions, so a Code obtained from JSON carries
// the same stack guarantee as one produced by the compiler.
package bytecode
