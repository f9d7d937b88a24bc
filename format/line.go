package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/minirs/lang/token"
)

// LineEncoder writes one token per line in the form
// "line:col Kind lexeme", followed by the decoded literal or the error
// message when the token carries one.
type LineEncoder struct {
	w      io.Writer
	tokens []token.Token
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tokens []token.Token) error {
	e.tokens = tokens
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	for _, tok := range e.tokens {
		fmt.Fprintln(&sb, tok.String())
	}
	return []byte(sb.String()), nil
}
