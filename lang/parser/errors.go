package parser

import (
	"fmt"
	"strings"

	"github.com/dhamidi/minirs/lang/token"
)

// Error is a syntax error anchored at the token the parser could not
// accept.
type Error struct {
	Message string
	Token   token.Token
}

func (e *Error) Error() string {
	near := e.Token.Lexeme
	if e.Token.Kind == token.EOF {
		near = "end of input"
	}
	return fmt.Sprintf("%s: %s (near %q)", e.Token.Span.Start, e.Message, near)
}

func (e *Error) Line() int {
	return e.Token.Line()
}

func (e *Error) Column() int {
	return e.Token.Column()
}

// ErrorList is the ordered list of syntax errors found in one parse.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns nil for an empty list and the list itself otherwise.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
