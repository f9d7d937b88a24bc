// Package lexer turns minirs source text into a stream of tokens.
//
// The lexer never fails: malformed input is reported in-band as
// token.Error tokens carrying a diagnostic message, and every token other
// than token.EOF consumes at least one character, so scanning terminates
// after at most len(input) tokens.
package lexer

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/dhamidi/minirs/lang/token"
)

type Option func(*Lexer)

// WithComments makes the lexer emit comments as LineComment and
// BlockComment tokens instead of discarding them.
func WithComments() Option {
	return func(l *Lexer) {
		l.keepComments = true
	}
}

func WithFile(path string) Option {
	return func(l *Lexer) {
		l.file = path
	}
}

type Lexer struct {
	input        []byte
	file         string
	keepComments bool
	pos          int
	line         int
	column       int
}

func New(input []byte, opts ...Option) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize scans src from the beginning and returns every token up to and
// including EOF.
func Tokenize(src []byte, opts ...Option) []token.Token {
	return New(src, opts...).Tokenize()
}

// Tokenize rewinds the lexer and scans the whole input. Repeated calls
// return identical results.
func (l *Lexer) Tokenize() []token.Token {
	l.Reset()
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) Reset() {
	l.pos = 0
	l.line = 1
	l.column = 1
}

func (l *Lexer) Position() token.Position {
	return token.Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// advance consumes one character. Columns count characters, so a
// multi-byte UTF-8 sequence moves the column by one.
func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	_, size := utf8.DecodeRune(l.input[l.pos:])
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos += size
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespace()
		start := l.Position()

		if l.atEOF() {
			return token.Token{Kind: token.EOF, Span: token.Span{Start: start, End: start}}
		}

		ch := l.peek()

		if ch == '/' && l.peekN(1) == '/' {
			tok := l.scanLineComment(start)
			if l.keepComments {
				return tok
			}
			continue
		}
		if ch == '/' && l.peekN(1) == '*' {
			tok := l.scanBlockComment(start)
			if l.keepComments || tok.Kind == token.Error {
				return tok
			}
			continue
		}

		switch {
		case isLetter(ch):
			return l.scanIdentOrKeyword(start)
		case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
			return l.scanNumber(start)
		case ch == '"':
			return l.scanString(start)
		}

		return l.scanOperator(start)
	}
}

func (l *Lexer) scanLineComment(start token.Position) token.Token {
	l.advanceN(2)
	for !l.atEOF() && l.peek() != '\n' {
		l.advance()
	}
	return l.token(token.LineComment, start)
}

func (l *Lexer) scanBlockComment(start token.Position) token.Token {
	l.advanceN(2)
	for {
		if l.atEOF() {
			return l.errorToken(start, "unterminated block comment")
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			return l.token(token.BlockComment, start)
		}
		l.advance()
	}
}

func (l *Lexer) scanIdentOrKeyword(start token.Position) token.Token {
	for isLetterOrDigit(l.peek()) {
		l.advance()
	}
	lexeme := string(l.input[start.Offset:l.pos])
	return l.token(token.LookupKeyword(lexeme), start)
}

// scanNumber accepts digits ['.' digits] and '.' digits. A trailing '.'
// without a digit after it is left for the next token.
func (l *Lexer) scanNumber(start token.Position) token.Token {
	isFloat := false
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	if isLetter(l.peek()) {
		for isLetterOrDigit(l.peek()) {
			l.advance()
		}
		return l.errorToken(start, "invalid numeric literal")
	}

	tok := l.token(token.Number, start)
	if isFloat {
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return l.errorToken(start, "invalid numeric literal")
		}
		tok.Literal = v
		return tok
	}

	if v, err := strconv.ParseInt(tok.Lexeme, 10, 64); err == nil {
		tok.Literal = v
		return tok
	}
	n, ok := new(big.Int).SetString(tok.Lexeme, 10)
	if !ok {
		return l.errorToken(start, "invalid numeric literal")
	}
	tok.Literal = n
	return tok
}

// scanString consumes a double-quoted string. A backslash takes the next
// character verbatim; the literal is the raw text between the quotes.
func (l *Lexer) scanString(start token.Position) token.Token {
	l.advance()
	for !l.atEOF() {
		switch l.peek() {
		case '"':
			l.advance()
			tok := l.token(token.String, start)
			tok.Literal = tok.Lexeme[1 : len(tok.Lexeme)-1]
			return tok
		case '\n':
			return l.errorToken(start, "newline in string literal")
		case '\\':
			l.advance()
			if !l.atEOF() && l.peek() != '\n' {
				l.advance()
			}
		default:
			l.advance()
		}
	}
	return l.errorToken(start, "unterminated string literal")
}

func (l *Lexer) scanOperator(start token.Position) token.Token {
	ch := l.peek()

	switch ch {
	case '+':
		l.advance()
		return l.token(token.Plus, start)
	case '-':
		l.advance()
		return l.token(token.Minus, start)
	case '*':
		l.advance()
		return l.token(token.Star, start)
	case '/':
		l.advance()
		return l.token(token.Slash, start)
	case '%':
		l.advance()
		return l.token(token.Percent, start)
	case '(':
		l.advance()
		return l.token(token.LParen, start)
	case ')':
		l.advance()
		return l.token(token.RParen, start)
	case '{':
		l.advance()
		return l.token(token.LBrace, start)
	case '}':
		l.advance()
		return l.token(token.RBrace, start)
	case ',':
		l.advance()
		return l.token(token.Comma, start)
	case ';':
		l.advance()
		return l.token(token.Semicolon, start)
	case ':':
		l.advance()
		return l.token(token.Colon, start)

	case '=':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(token.RelOp, start)
		}
		l.advance()
		return l.token(token.Assign, start)

	case '!':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(token.RelOp, start)
		}
		l.advance()
		return l.token(token.Not, start)

	case '<', '>':
		if l.peekN(1) == '=' {
			l.advanceN(2)
			return l.token(token.RelOp, start)
		}
		l.advance()
		return l.token(token.RelOp, start)

	case '&':
		if l.peekN(1) == '&' {
			l.advanceN(2)
			return l.token(token.And, start)
		}
		l.advance()
		return l.errorToken(start, "unexpected '&', logical and is '&&'")

	case '|':
		if l.peekN(1) == '|' {
			l.advanceN(2)
			return l.token(token.Or, start)
		}
		l.advance()
		return l.errorToken(start, "unexpected '|', logical or is '||'")
	}

	l.advance()
	return l.errorToken(start, fmt.Sprintf("unexpected character %q", string(l.input[start.Offset:l.pos])))
}

func (l *Lexer) token(kind token.Kind, start token.Position) token.Token {
	end := l.Position()
	return token.Token{
		Kind:   kind,
		Lexeme: string(l.input[start.Offset:end.Offset]),
		Span:   token.Span{Start: start, End: end},
	}
}

func (l *Lexer) errorToken(start token.Position, msg string) token.Token {
	tok := l.token(token.Error, start)
	tok.Literal = msg
	return tok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isLetterOrDigit(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}
