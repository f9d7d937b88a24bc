package format

import (
	"encoding/json"
	"io"
	"math"

	"github.com/dhamidi/minirs/lang/token"
)

// JSONEncoder writes a token stream as a JSON array.
type JSONEncoder struct {
	w      io.Writer
	tokens []token.Token
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(tokens []token.Token) error {
	e.tokens = tokens
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := make([]jsonToken, len(e.tokens))
	for i, tok := range e.tokens {
		data[i] = buildToken(tok)
	}
	return json.MarshalIndent(data, "", "  ")
}

type jsonToken struct {
	Kind    string       `json:"kind"`
	Lexeme  string       `json:"lexeme"`
	Literal any          `json:"literal,omitempty"`
	Error   string       `json:"error,omitempty"`
	Start   jsonPosition `json:"start"`
	End     jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func buildToken(tok token.Token) jsonToken {
	jt := jsonToken{
		Kind:   tok.Kind.String(),
		Lexeme: tok.Lexeme,
		Start:  buildPosition(tok.Span.Start),
		End:    buildPosition(tok.Span.End),
	}
	if tok.Kind == token.Error {
		jt.Error = tok.Message()
		return jt
	}
	switch v := tok.Literal.(type) {
	case float64:
		// JSON has no encoding for infinities
		if math.IsInf(v, 0) || math.IsNaN(v) {
			jt.Literal = tok.Lexeme
		} else {
			jt.Literal = v
		}
	default:
		jt.Literal = v
	}
	return jt
}

func buildPosition(p token.Position) jsonPosition {
	return jsonPosition{Offset: p.Offset, Line: p.Line, Column: p.Column}
}
