// Package token defines the tokens produced when lexing dice notation.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string. Dice
// expressions are a single line, so only the byte offset and the column are
// tracked.
type Position struct {
	Char   int // byte offset within the input
	Column int // 0-indexed column number, counted in runes
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes spanning the given
// number of runes.
func (p Position) Advance(n, runes int) Position {
	return Position{
		Char:   p.Char + n,
		Column: p.Column + runes,
	}
}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	ASTERISK Type = "*"
	DICE     Type = "d"
	EOF      Type = "EOF"
	ILLEGAL  Type = "ILLEGAL"
	INT      Type = "INT"
	LPAREN   Type = "("
	MINUS    Type = "-"
	PLUS     Type = "+"
	RPAREN   Type = ")"
	SLASH    Type = "/"
)

// Single-character tokens, keyed by the byte that produces them.
var punctuation = map[byte]Type{
	'*': ASTERISK,
	'd': DICE,
	'(': LPAREN,
	'-': MINUS,
	'+': PLUS,
	')': RPAREN,
	'/': SLASH,
}

// LookupPunctuation returns the token type produced by the given byte, if any.
func LookupPunctuation(ch byte) (Type, bool) {
	typ, ok := punctuation[ch]
	return typ, ok
}

// String returns the text used for this token type in diagnostics.
func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case INT:
		return "number"
	case ILLEGAL:
		return "<error>"
	default:
		return string(t)
	}
}
