package frontend

import (
	"fmt"

	"github.com/dhamidi/minirs/lang/token"
)

type Phase string

const (
	PhaseLexical Phase = "lexical"
	PhaseSyntax  Phase = "syntax"
)

type Severity int

// Every lexical and syntax problem is an error; the language has no
// warnings.
const SeverityError Severity = 1

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "unknown"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Diagnostic is one reportable problem. Line and column are 1-based; the
// end position is exclusive.
type Diagnostic struct {
	File      string   `json:"file,omitempty"`
	Severity  Severity `json:"severity"`
	Phase     Phase    `json:"phase"`
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	EndLine   int      `json:"endLine"`
	EndColumn int      `json:"endColumn"`
	Message   string   `json:"message"`
	Lexeme    string   `json:"lexeme,omitempty"`
}

// String renders the diagnostic as file:line:col: phase severity: message.
func (d Diagnostic) String() string {
	pos := fmt.Sprintf("%d:%d", d.Line, d.Column)
	if d.File != "" {
		pos = d.File + ":" + pos
	}
	return fmt.Sprintf("%s: %s %s: %s", pos, d.Phase, d.Severity, d.Message)
}

func diagnosticAt(file string, phase Phase, tok token.Token, msg string) Diagnostic {
	end := tok.Span.End
	if end.Line == 0 {
		end = tok.Span.Start
	}
	return Diagnostic{
		File:      file,
		Severity:  SeverityError,
		Phase:     phase,
		Line:      tok.Line(),
		Column:    tok.Column(),
		EndLine:   end.Line,
		EndColumn: end.Column,
		Message:   msg,
		Lexeme:    tok.Lexeme,
	}
}

// Diagnostics lists lexical errors followed by syntax errors, each in
// source order.
func (r *Result) Diagnostics() []Diagnostic {
	diags := make([]Diagnostic, 0, len(r.LexErrors)+len(r.SyntaxErrors))
	for _, tok := range r.LexErrors {
		diags = append(diags, diagnosticAt(r.File, PhaseLexical, tok, tok.Message()))
	}
	for _, err := range r.SyntaxErrors {
		diags = append(diags, diagnosticAt(r.File, PhaseSyntax, err.Token, err.Message))
	}
	return diags
}
