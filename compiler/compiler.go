// Package compiler compiles dice notation directly into stack machine
// bytecode.
//
// There is no syntax tree. A recursive-descent parser consumes tokens from the
// lexer and, as each grammar rule recognizes its construct, appends the
// matching instruction to the output. Operands are therefore emitted before
// the operator that consumes them, which yields a postfix sequence the VM can
// run with a single stack.
//
// # Grammar
//
// From lowest to highest precedence:
//
//	expr        := term
//	term        := factor (("+" | "-") factor)*
//	factor      := prefix (("*" | "/") prefix)*
//	prefix      := "-" dice_unary | dice_unary
//	dice_unary  := "d" primary | dice_binary
//	dice_binary := primary ("d" primary)?
//	primary     := NUMBER | "("+ expr ")"+
//
// A leading "d" has an implicit count of one, so "d6" compiles exactly like
// "1d6".
//
// A run of opening parentheses is counted and closed together: after the
// run, one expression is parsed and then exactly as many closing parentheses
// must follow in sequence. "((1+2))" is valid but "((1)+2)" is not, since the
// second ")" is expected where the "+" appears. A parenthesis that follows an
// operator starts a new run, so "(1)+(2)" and "-(-(1))" are fine.
//
// The whole input must form one expression. Parsing does not stop quietly
// after the first complete expression: trailing tokens such as the "5" in
// "10 5" are reported as unexpected input rather than ignored.
//
// # Stack Sizing
//
// Every emitted instruction applies its stack effect (see op.Info) to a
// compile-time tracker, and the deepest point reached becomes the stack size
// of the resulting bytecode.Code. The VM allocates exactly that many slots.
package compiler

import (
	"strconv"
	"unicode/utf8"

	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/errz"
	"github.com/risor-io/roll/internal/lexer"
	"github.com/risor-io/roll/internal/token"
	"github.com/risor-io/roll/op"
)

// Compiler turns one dice expression into bytecode. A Compiler is used once.
type Compiler struct {
	// The expression being compiled
	source string

	l *lexer.Lexer

	// curToken holds the current token from the lexer.
	curToken token.Token

	// The code being emitted
	code *code
}

// Compile compiles the given dice expression and returns immutable bytecode.
func Compile(source string) (*bytecode.Code, error) {
	return New(source).Compile()
}

// New creates and returns a new Compiler for source.
func New(source string) *Compiler {
	return &Compiler{
		source: source,
		l:      lexer.New(source),
		code:   newCode(),
	}
}

// Compile runs the compiler. It stops at the first error.
func (c *Compiler) Compile() (*bytecode.Code, error) {
	if err := c.nextToken(); err != nil {
		return nil, err
	}
	if err := c.parseExpr(); err != nil {
		return nil, err
	}
	if c.curToken.Type != token.EOF {
		return nil, errz.NewUnexpectedInput(c.curToken.Literal).At(locationOf(c.curToken))
	}
	return c.code.toBytecode(c.source), nil
}

// nextToken advances to the next token. Unlexable input is reported as soon
// as it becomes the current token.
func (c *Compiler) nextToken() error {
	c.curToken = c.l.Next()
	if c.curToken.Type == token.ILLEGAL {
		return errz.NewUnexpectedInput(c.curToken.Literal).At(locationOf(c.curToken))
	}
	return nil
}

func (c *Compiler) emit(instr op.Instruction, tok token.Token) {
	c.code.emit(instr, locationOf(tok))
}

func (c *Compiler) parseExpr() error {
	return c.parseTerm()
}

func (c *Compiler) parseTerm() error {
	if err := c.parseFactor(); err != nil {
		return err
	}
	for {
		var code op.Code
		switch c.curToken.Type {
		case token.PLUS:
			code = op.Add
		case token.MINUS:
			code = op.Sub
		default:
			return nil
		}
		opToken := c.curToken
		if err := c.nextToken(); err != nil {
			return err
		}
		if err := c.parseFactor(); err != nil {
			return err
		}
		c.emit(op.Of(code), opToken)
	}
}

func (c *Compiler) parseFactor() error {
	if err := c.parsePrefix(); err != nil {
		return err
	}
	for {
		var code op.Code
		switch c.curToken.Type {
		case token.ASTERISK:
			code = op.Mul
		case token.SLASH:
			code = op.Div
		default:
			return nil
		}
		opToken := c.curToken
		if err := c.nextToken(); err != nil {
			return err
		}
		if err := c.parsePrefix(); err != nil {
			return err
		}
		c.emit(op.Of(code), opToken)
	}
}

func (c *Compiler) parsePrefix() error {
	if c.curToken.Type != token.MINUS {
		return c.parseDiceUnary()
	}
	minus := c.curToken
	if err := c.nextToken(); err != nil {
		return err
	}
	if err := c.parseDiceUnary(); err != nil {
		return err
	}
	c.emit(op.Of(op.Neg), minus)
	return nil
}

func (c *Compiler) parseDiceUnary() error {
	if c.curToken.Type != token.DICE {
		return c.parseDiceBinary()
	}
	dice := c.curToken
	if err := c.nextToken(); err != nil {
		return err
	}
	c.emit(op.Const(1), dice)
	if err := c.parsePrimary(); err != nil {
		return err
	}
	c.emit(op.Of(op.Dice), dice)
	return nil
}

func (c *Compiler) parseDiceBinary() error {
	if err := c.parsePrimary(); err != nil {
		return err
	}
	if c.curToken.Type != token.DICE {
		return nil
	}
	dice := c.curToken
	if err := c.nextToken(); err != nil {
		return err
	}
	if err := c.parsePrimary(); err != nil {
		return err
	}
	c.emit(op.Of(op.Dice), dice)
	return nil
}

func (c *Compiler) parsePrimary() error {
	tok := c.curToken
	switch tok.Type {
	case token.INT:
		if err := c.nextToken(); err != nil {
			return err
		}
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return errz.NewInvalidInteger(tok.Literal, err).At(locationOf(tok))
		}
		c.emit(op.Const(value), tok)
		return nil
	case token.LPAREN:
		depth := 0
		for c.curToken.Type == token.LPAREN {
			depth++
			if err := c.nextToken(); err != nil {
				return err
			}
		}
		if err := c.parseExpr(); err != nil {
			return err
		}
		for ; depth > 0; depth-- {
			if err := c.expect(token.RPAREN); err != nil {
				return err
			}
		}
		return nil
	case token.EOF:
		return errz.New(errz.UnexpectedEOF).At(locationOf(tok))
	default:
		return errz.NewUnexpectedInput(tok.Literal).At(locationOf(tok))
	}
}

// expect consumes the current token if it has the given type, and otherwise
// reports which token was expected.
func (c *Compiler) expect(typ token.Type) error {
	if c.curToken.Type == typ {
		return c.nextToken()
	}
	got := c.curToken.Literal
	if c.curToken.Type == token.EOF {
		got = ""
	}
	return errz.NewExpectedInput(typ.String(), got).At(locationOf(c.curToken))
}

// locationOf converts a token span into an error location. EOF is given a
// width of one so a caret can point just past the input.
func locationOf(tok token.Token) errz.Location {
	width := utf8.RuneCountInString(tok.Literal)
	if width == 0 {
		width = 1
	}
	return errz.Location{
		Column: tok.StartPosition.ColumnNumber(),
		Width:  width,
	}
}
