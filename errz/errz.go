// Package errz defines the closed set of errors produced while compiling and
// evaluating dice expressions.
package errz

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind identifies one member of the error taxonomy.
type Kind int

const (
	// Overflow indicates checked 64-bit arithmetic wrapped around.
	Overflow Kind = iota + 1
	// DivideByZero indicates a division with a zero right operand.
	DivideByZero
	// RollMinTimes indicates a dice roll with a negative number of dice.
	RollMinTimes
	// RollMinSides indicates a dice roll with a negative number of sides.
	RollMinSides
	// TooManyRolls indicates a dice roll exceeding the caller's roll limit.
	TooManyRolls
	// UnexpectedEOF indicates the input ended where a term was expected.
	UnexpectedEOF
	// UnexpectedInput indicates a token that cannot start a valid construct.
	UnexpectedInput
	// ExpectedInput indicates a required delimiter was missing.
	ExpectedInput
	// InvalidInteger indicates a number literal that does not fit in an int64.
	InvalidInteger
)

// String returns the name of the error kind.
func (k Kind) String() string {
	switch k {
	case Overflow:
		return "Overflow"
	case DivideByZero:
		return "DivideByZero"
	case RollMinTimes:
		return "RollMinTimes"
	case RollMinSides:
		return "RollMinSides"
	case TooManyRolls:
		return "TooManyRolls"
	case UnexpectedEOF:
		return "UnexpectedEOF"
	case UnexpectedInput:
		return "UnexpectedInput"
	case ExpectedInput:
		return "ExpectedInput"
	case InvalidInteger:
		return "InvalidInteger"
	default:
		return "Unknown"
	}
}

// Category groups kinds by the stage that raises them.
func (k Kind) Category() string {
	switch k {
	case UnexpectedEOF, UnexpectedInput, ExpectedInput, InvalidInteger:
		return "syntax error"
	case Overflow, DivideByZero, RollMinTimes, RollMinSides, TooManyRolls:
		return "eval error"
	default:
		return "error"
	}
}

// Location is the span of source text an error refers to. Column is 1-based;
// a zero Location means the position is unknown.
type Location struct {
	Column int
	Width  int
}

// IsZero returns true if the location has not been set.
func (l Location) IsZero() bool {
	return l.Column == 0
}

// Error is the single error type returned by the compiler and the virtual
// machine. Only the fields relevant to Kind are set.
type Error struct {
	Kind     Kind
	Text     string // offending source text (UnexpectedInput, InvalidInteger)
	Expected string // required token (ExpectedInput)
	Got      string // token found instead, empty at end of input (ExpectedInput)
	Cause    error  // conversion failure (InvalidInteger)
	Location Location
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case Overflow:
		return "number overflowed"
	case DivideByZero:
		return "can't divide by zero"
	case RollMinTimes:
		return "can't roll less than 0 times"
	case RollMinSides:
		return "can't roll a less than 0-sided die"
	case TooManyRolls:
		return "too many rolls"
	case UnexpectedEOF:
		return "unexpected end of input"
	case UnexpectedInput:
		return fmt.Sprintf("unexpected input: %q", e.Text)
	case ExpectedInput:
		if e.Got == "" {
			return fmt.Sprintf("expected %q, got end of input", e.Expected)
		}
		return fmt.Sprintf("expected %q, got %q", e.Expected, e.Got)
	case InvalidInteger:
		return fmt.Sprintf("invalid integer %q: %v", e.Text, e.Cause)
	default:
		return "unknown error"
	}
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind, which lets the
// sentinels below be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// At returns the error with its location set.
func (e *Error) At(loc Location) *Error {
	e.Location = loc
	return e
}

// FriendlyErrorMessage returns the error with a snippet of source and a caret
// marker beneath the offending text, when the location is known.
func (e *Error) FriendlyErrorMessage(source string) string {
	var msg bytes.Buffer
	msg.WriteString(fmt.Sprintf("%s: %s\n", e.Kind.Category(), e.Error()))
	if e.Location.IsZero() || source == "" {
		return msg.String()
	}
	width := e.Location.Width
	if width < 1 {
		width = 1
	}
	msg.WriteString(" | ")
	msg.WriteString(source)
	msg.WriteString("\n | ")
	msg.WriteString(strings.Repeat(" ", e.Location.Column-1))
	msg.WriteString(strings.Repeat("^", width))
	msg.WriteString("\n")
	return msg.String()
}

// Sentinels for use with errors.Is.
var (
	ErrOverflow        = &Error{Kind: Overflow}
	ErrDivideByZero    = &Error{Kind: DivideByZero}
	ErrRollMinTimes    = &Error{Kind: RollMinTimes}
	ErrRollMinSides    = &Error{Kind: RollMinSides}
	ErrTooManyRolls    = &Error{Kind: TooManyRolls}
	ErrUnexpectedEOF   = &Error{Kind: UnexpectedEOF}
	ErrUnexpectedInput = &Error{Kind: UnexpectedInput}
	ErrExpectedInput   = &Error{Kind: ExpectedInput}
	ErrInvalidInteger  = &Error{Kind: InvalidInteger}
)

// New returns a new error of the given kind.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// NewUnexpectedInput returns an UnexpectedInput error for text.
func NewUnexpectedInput(text string) *Error {
	return &Error{Kind: UnexpectedInput, Text: text}
}

// NewExpectedInput returns an ExpectedInput error. An empty got means the
// input ended.
func NewExpectedInput(expected, got string) *Error {
	return &Error{Kind: ExpectedInput, Expected: expected, Got: got}
}

// NewInvalidInteger returns an InvalidInteger error for text.
func NewInvalidInteger(text string, cause error) *Error {
	return &Error{Kind: InvalidInteger, Text: text, Cause: cause}
}
