// Package lexer turns dice notation source text into a stream of tokens.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/risor-io/roll/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	// The input string being lexed
	input string

	// Position of the next unread character
	position token.Position
}

// New returns a Lexer positioned at the start of input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Position returns the position of the next unread character.
func (l *Lexer) Position() token.Position {
	return l.position
}

// Next returns the next token from the input. Once the input is exhausted,
// every call returns an EOF token positioned at the end of the input.
//
// Characters that cannot start any token are folded into a single ILLEGAL
// token that covers the whole contiguous run of them, so "10 * asd" produces
// one ILLEGAL token "as" followed by a DICE token.
func (l *Lexer) Next() token.Token {
	l.skipWhitespace()
	start := l.Position()
	if l.position.Char >= len(l.input) {
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}
	}
	ch := l.input[l.position.Char]
	if typ, ok := token.LookupPunctuation(ch); ok {
		l.advance(1, 1)
		return l.newToken(typ, start)
	}
	if isDigit(ch) {
		n := 0
		for l.position.Char+n < len(l.input) && isDigit(l.input[l.position.Char+n]) {
			n++
		}
		l.advance(n, n)
		return l.newToken(token.INT, start)
	}
	for l.position.Char < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.position.Char:])
		if l.startsToken(r) {
			break
		}
		l.advance(size, 1)
	}
	return l.newToken(token.ILLEGAL, start)
}

// startsToken reports whether r ends an ILLEGAL run: whitespace or any
// character that begins a valid token.
func (l *Lexer) startsToken(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	if r >= utf8.RuneSelf {
		return false
	}
	if _, ok := token.LookupPunctuation(byte(r)); ok {
		return true
	}
	return isDigit(byte(r))
}

func (l *Lexer) newToken(typ token.Type, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       l.input[start.Char:l.position.Char],
		StartPosition: start,
		EndPosition:   l.Position(),
	}
}

func (l *Lexer) skipWhitespace() {
	for l.position.Char < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.position.Char:])
		if !unicode.IsSpace(r) {
			return
		}
		l.advance(size, 1)
	}
}

func (l *Lexer) advance(n, runes int) {
	l.position = l.position.Advance(n, runes)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
