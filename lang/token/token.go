package token

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type Kind int

const (
	EOF Kind = iota
	Error
	LineComment
	BlockComment

	// Literals
	Ident
	Number
	String

	// Keywords
	Fn
	Main
	Let
	Mut
	I32
	F64
	Read
	Print
	If
	Else
	While
	Return

	// Operators and punctuation
	Plus
	Minus
	Star
	Slash
	Percent
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Semicolon
	Colon
	Assign
	RelOp
	And
	Or
	Not
)

var kindNames = map[Kind]string{
	EOF:          "EOF",
	Error:        "Error",
	LineComment:  "LineComment",
	BlockComment: "BlockComment",
	Ident:        "Identifier",
	Number:       "Number",
	String:       "String",
	Fn:           "fn",
	Main:         "main",
	Let:          "let",
	Mut:          "mut",
	I32:          "i32",
	F64:          "f64",
	Read:         "read",
	Print:        "print",
	If:           "if",
	Else:         "else",
	While:        "while",
	Return:       "return",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	LParen:       "(",
	RParen:       ")",
	LBrace:       "{",
	RBrace:       "}",
	Comma:        ",",
	Semicolon:    ";",
	Colon:        ":",
	Assign:       "=",
	RelOp:        "RelOp",
	And:          "&&",
	Or:           "||",
	Not:          "!",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether k is one of the reserved words.
func (k Kind) IsKeyword() bool {
	return k >= Fn && k <= Return
}

// IsComment reports whether k is a line or block comment.
func (k Kind) IsComment() bool {
	return k == LineComment || k == BlockComment
}

// Token is a single lexeme together with its decoded value.
//
// Literal holds an int64, float64 or *big.Int for numbers, the raw payload
// between the quotes for strings, and the diagnostic message for Error
// tokens. It is nil for every other kind.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal any
	Span    Span
}

func (t Token) Line() int {
	return t.Span.Start.Line
}

func (t Token) Column() int {
	return t.Span.Start.Column
}

// Message returns the diagnostic carried by an Error token.
func (t Token) Message() string {
	if t.Kind != Error {
		return ""
	}
	msg, _ := t.Literal.(string)
	return msg
}

func (t Token) String() string {
	s := fmt.Sprintf("%d:%d %s %s", t.Line(), t.Column(), t.Kind, t.Lexeme)
	switch {
	case t.Kind == Error:
		s += fmt.Sprintf(" error=%q", t.Message())
	case t.Literal != nil:
		s += fmt.Sprintf(" literal=%v", t.Literal)
	}
	return s
}

var keywords = map[string]Kind{
	"fn":     Fn,
	"main":   Main,
	"let":    Let,
	"mut":    Mut,
	"i32":    I32,
	"f64":    F64,
	"read":   Read,
	"print":  Print,
	"if":     If,
	"else":   Else,
	"while":  While,
	"return": Return,
}

func LookupKeyword(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return Ident
}
