package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/minirs/lang/ast"
	"github.com/dhamidi/minirs/lang/lexer"
	"github.com/dhamidi/minirs/lang/token"
)

func parseSource(src string) (*ast.Program, ErrorList) {
	return Parse(lexer.Tokenize([]byte(src)))
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, errs := parseSource(src)
	require.Empty(t, errs, "unexpected errors: %v", errs)
	require.NotNil(t, prog)
	return prog
}

// condition parses src as the condition of an if statement.
func condition(t *testing.T, cond string) ast.RelExpr {
	t.Helper()
	prog := mustParse(t, "fn main() { if "+cond+" { } }")
	require.Len(t, prog.Block.Commands, 1)
	return prog.Block.Commands[0].(*ast.Conditional).Cond
}

// expr parses src as the right-hand side of an assignment.
func expr(t *testing.T, src string) ast.ArithExpr {
	t.Helper()
	prog := mustParse(t, "fn main() { x = "+src+"; }")
	require.Len(t, prog.Block.Commands, 1)
	return prog.Block.Commands[0].(*ast.Assignment).Value
}

func TestParseMinimalProgram(t *testing.T) {
	prog := mustParse(t, "fn main() { let x: i32; x = 1 + 2 * 3; print!(x); }")

	cmds := prog.Block.Commands
	require.Len(t, cmds, 3)

	decl, ok := cmds[0].(*ast.Declaration)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, "i32", decl.Type)
	assert.False(t, decl.Mutable)

	assign, ok := cmds[1].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
	sum, ok := assign.Value.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", sum.Op)
	assert.Equal(t, int64(1), sum.Left.(*ast.Number).Value)
	product, ok := sum.Right.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", product.Op)
	assert.Equal(t, int64(2), product.Left.(*ast.Number).Value)
	assert.Equal(t, int64(3), product.Right.(*ast.Number).Value)

	print, ok := cmds[2].(*ast.Print)
	require.True(t, ok)
	assert.Equal(t, "x", print.Value)
	assert.True(t, print.IsIdentifier)
}

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"mutable declaration",
			"let mut total: f64;",
			"Declaration mut total: f64\n",
		},
		{
			"read",
			"read(n);",
			"Read n\n",
		},
		{
			"print string",
			`print!("hello, world");`,
			"Print \"hello, world\"\n",
		},
		{
			"nested block",
			"{ let a: i32; }",
			"Block\n  Declaration a: i32\n",
		},
		{
			"if else",
			"if a < b { read(a); } else { read(b); }",
			"Conditional\n  RelationalOp <\n    Identifier a\n    Identifier b\n  Block\n    Read a\n  Block\n    Read b\n",
		},
		{
			"while",
			"while i <= 10 { i = i + 1; }",
			"While\n  RelationalOp <=\n    Identifier i\n    Number 10\n  Block\n    Assignment i\n      BinaryOp +\n        Identifier i\n        Number 1\n",
		},
		{
			"unary minus",
			"x = -y * +2;",
			"Assignment x\n  BinaryOp *\n    UnaryOp -\n      Identifier y\n    UnaryOp +\n      Number 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := mustParse(t, "fn main() { "+tt.body+" }")
			require.Len(t, prog.Block.Commands, 1)
			assert.Equal(t, tt.want, ast.String(prog.Block.Commands[0]))
		})
	}
}

func TestParseEmptyProgram(t *testing.T) {
	prog := mustParse(t, "fn main() {}")
	assert.Empty(t, prog.Block.Commands)
	assert.Equal(t, 1, prog.Pos().Line)
	assert.Equal(t, 1, prog.Pos().Column)
}

func TestParseLeftAssociativity(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a - b - c", "BinaryOp -\n  BinaryOp -\n    Identifier a\n    Identifier b\n  Identifier c\n"},
		{"a / b * c % d", "BinaryOp %\n  BinaryOp *\n    BinaryOp /\n      Identifier a\n      Identifier b\n    Identifier c\n  Identifier d\n"},
		{"(a + b) * c", "BinaryOp *\n  BinaryOp +\n    Identifier a\n    Identifier b\n  Identifier c\n"},
		{"a + b * c - d", "BinaryOp -\n  BinaryOp +\n    Identifier a\n    BinaryOp *\n      Identifier b\n      Identifier c\n  Identifier d\n"},
		{"1.5 * .5", "BinaryOp *\n  Number 1.5\n  Number .5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, ast.String(expr(t, tt.src)))
		})
	}
}

func TestParseLogicalLeftAssociativity(t *testing.T) {
	cond := condition(t, "a > 0 || b > 0 && c > 0")
	want := "LogicalOp &&\n" +
		"  LogicalOp ||\n" +
		"    RelationalOp >\n      Identifier a\n      Number 0\n" +
		"    RelationalOp >\n      Identifier b\n      Number 0\n" +
		"  RelationalOp >\n    Identifier c\n    Number 0\n"
	assert.Equal(t, want, ast.String(cond))
}

func TestParseLogicalNot(t *testing.T) {
	cond := condition(t, "!a == b")
	not, ok := cond.(*ast.LogicalNot)
	require.True(t, ok)
	rel, ok := not.Operand.(*ast.RelationalOp)
	require.True(t, ok)
	assert.Equal(t, "==", rel.Op)

	double := condition(t, "!!(x != 1)")
	assert.Equal(t, "LogicalNot\n  LogicalNot\n    RelationalOp !=\n      Identifier x\n      Number 1\n", ast.String(double))
}

func TestParseParenthesizedArithmeticOperand(t *testing.T) {
	cond := condition(t, "(a + b) > 0")

	rel, ok := cond.(*ast.RelationalOp)
	require.True(t, ok, "got %T", cond)
	assert.Equal(t, ">", rel.Op)

	left, ok := rel.Left.(*ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", left.Op)
	assert.Equal(t, int64(0), rel.Right.(*ast.Number).Value)
}

func TestParseParenthesizedRelationalExpression(t *testing.T) {
	cond := condition(t, "((a > 0) && (b > 0))")

	logical, ok := cond.(*ast.LogicalOp)
	require.True(t, ok, "got %T", cond)
	assert.Equal(t, "&&", logical.Op)

	left, ok := logical.Left.(*ast.RelationalOp)
	require.True(t, ok)
	assert.Equal(t, "a", left.Left.(*ast.Identifier).Name)

	right, ok := logical.Right.(*ast.RelationalOp)
	require.True(t, ok)
	assert.Equal(t, "b", right.Left.(*ast.Identifier).Name)
}

func TestParseParenthesisDisambiguation(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"((a + b)) > 0", "RelationalOp >\n  BinaryOp +\n    Identifier a\n    Identifier b\n  Number 0\n"},
		{"((a) > 0)", "RelationalOp >\n  Identifier a\n  Number 0\n"},
		{"(a > 0)", "RelationalOp >\n  Identifier a\n  Number 0\n"},
		{"(!(a < 1))", "LogicalNot\n  RelationalOp <\n    Identifier a\n    Number 1\n"},
		{"(a) == (b)", "RelationalOp ==\n  Identifier a\n  Identifier b\n"},
		{"(a > 0 || b > 0) && c > 0", "LogicalOp &&\n  LogicalOp ||\n    RelationalOp >\n      Identifier a\n      Number 0\n    RelationalOp >\n      Identifier b\n      Number 0\n  RelationalOp >\n    Identifier c\n    Number 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			assert.Equal(t, tt.want, ast.String(condition(t, tt.cond)))
		})
	}
}

func TestParseDanglingParenthesizedArithmetic(t *testing.T) {
	prog, errs := parseSource("fn main() { if (a + b) { } x = 1; }")

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "relational operator")
	assert.Equal(t, token.LBrace, errs[0].Token.Kind)

	require.NotNil(t, prog)
	// recovery stops at '{', which then parses as a nested block
	require.Len(t, prog.Block.Commands, 2)
	assert.IsType(t, &ast.Block{}, prog.Block.Commands[0])
	assert.IsType(t, &ast.Assignment{}, prog.Block.Commands[1])
}

func TestParseRecoversFromMissingColon(t *testing.T) {
	prog, errs := parseSource("fn main() { let x i32; x = 1; }")

	require.Len(t, errs, 1)
	assert.Equal(t, "expected ':' after variable name in declaration", errs[0].Message)
	assert.Equal(t, token.I32, errs[0].Token.Kind)
	assert.Equal(t, 1, errs[0].Line())
	assert.Equal(t, 19, errs[0].Column())

	require.NotNil(t, prog)
	require.Len(t, prog.Block.Commands, 1)
	assign, ok := prog.Block.Commands[0].(*ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Name)
	assert.Equal(t, int64(1), assign.Value.(*ast.Number).Value)
}

func TestParseCollectsMultipleErrors(t *testing.T) {
	src := `fn main() {
	let a: i32
	let b: bool;
	read(a;
	print!(1);
	a = 3 +;
	while a < 3 { a = a + 1; }
}`
	prog, errs := parseSource(src)
	require.NotNil(t, prog)

	var lines []int
	for _, err := range errs {
		lines = append(lines, err.Line())
	}
	assert.Equal(t, []int{3, 3, 4, 5, 6}, lines)

	require.Len(t, prog.Block.Commands, 1)
	assert.IsType(t, &ast.While{}, prog.Block.Commands[0])
}

func TestParseRecoveryInsideNestedBlock(t *testing.T) {
	src := `fn main() {
	if x > 0 {
		x = ;
		print!(x);
	}
	read(x);
}`
	prog, errs := parseSource(src)
	require.Len(t, errs, 1)
	assert.Equal(t, 3, errs[0].Line())

	require.NotNil(t, prog)
	require.Len(t, prog.Block.Commands, 2)
	cond := prog.Block.Commands[0].(*ast.Conditional)
	require.Len(t, cond.Then.Commands, 1)
	assert.IsType(t, &ast.Print{}, cond.Then.Commands[0])
	assert.IsType(t, &ast.Read{}, prog.Block.Commands[1])
}

func TestParseRecoveryStopsAtStatementKeyword(t *testing.T) {
	prog, errs := parseSource("fn main() { x = 1 print!(x); let y: f64; }")

	require.Len(t, errs, 1)
	assert.Equal(t, token.Print, errs[0].Token.Kind)

	require.NotNil(t, prog)
	require.Len(t, prog.Block.Commands, 2)
	assert.IsType(t, &ast.Print{}, prog.Block.Commands[0])
	assert.IsType(t, &ast.Declaration{}, prog.Block.Commands[1])
}

func TestParseUnexpectedTokenAtCommandStart(t *testing.T) {
	prog, errs := parseSource("fn main() { else 42; x = 2; }")

	require.Len(t, errs, 1)
	assert.Equal(t, "expected a command", errs[0].Message)
	assert.Equal(t, token.Else, errs[0].Token.Kind)

	require.NotNil(t, prog)
	require.Len(t, prog.Block.Commands, 1)
	assert.IsType(t, &ast.Assignment{}, prog.Block.Commands[0])
}

func TestParseFatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{"missing fn", "main() { }", "expected 'fn' at start of program"},
		{"missing main", "fn start() { }", "expected 'main' after 'fn'"},
		{"missing lparen", "fn main) { }", "expected '(' after 'main'"},
		{"missing rparen", "fn main( { }", "expected ')' after '('"},
		{"missing block", "fn main()", "expected '{' to open block"},
		{"unclosed block", "fn main() { let x: i32;", "expected '}' to close block"},
		{"trailing tokens", "fn main() { } x = 1;", "unexpected tokens after the end of main"},
		{"empty input", "", "expected 'fn' at start of program"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, errs := parseSource(tt.src)
			assert.Nil(t, prog)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}

func TestParseFatalErrorKeepsEarlierErrors(t *testing.T) {
	prog, errs := parseSource("fn main() { let : i32; } }")
	assert.Nil(t, prog)
	require.Len(t, errs, 2)
	assert.Equal(t, "expected variable name in declaration", errs[0].Message)
	assert.Equal(t, "unexpected tokens after the end of main", errs[1].Message)
}

func TestParseIgnoresComments(t *testing.T) {
	src := "// header\nfn main() { /* a */ let x: i32; // trailing\n }"
	withComments := lexer.Tokenize([]byte(src), lexer.WithComments())
	withoutComments := lexer.Tokenize([]byte(src))

	progA, errsA := Parse(withComments)
	progB, errsB := Parse(withoutComments)
	require.Empty(t, errsA)
	require.Empty(t, errsB)
	assert.Equal(t, progB, progA)
}

func TestParseIsIdempotent(t *testing.T) {
	src := "fn main() { let mut x: i32; x = (1 + 2) * -3; if (x > 0) && !(x == 9) { print!(\"big\"); } else { while x < 0 { x = x + 1; } } let y i32; }"
	tokens := lexer.Tokenize([]byte(src))

	p := New(tokens)
	progA, errsA := p.Parse()
	progB, errsB := p.Parse()
	progC, errsC := Parse(tokens)

	assert.Equal(t, progA, progB)
	assert.Equal(t, errsA, errsB)
	assert.Equal(t, progA, progC)
	assert.Equal(t, errsA, errsC)
	assert.Len(t, errsA, 1)
}

func TestParseTerminatesOnGarbage(t *testing.T) {
	inputs := []string{
		"fn main() { " + strings.Repeat("; ) ( = + ", 50) + "}",
		"fn main() { " + strings.Repeat("if ", 20),
		"fn main() { " + strings.Repeat("{ ", 30) + strings.Repeat("} ", 30) + "}",
		"fn main() { x = ((((((1; }",
	}

	for _, input := range inputs {
		prog, errs := parseSource(input)
		if prog == nil {
			assert.NotEmpty(t, errs)
		}
	}
}

func TestParseWithCustomSyncSet(t *testing.T) {
	src := "fn main() { x = 1 print!(x); read(y); }"

	// Without statement keywords in the set, recovery runs to the next ';'
	// and swallows the print.
	sync := SyncSet{Terminators: []token.Kind{token.Semicolon}, Starters: []token.Kind{token.RBrace}}
	prog, errs := Parse(lexer.Tokenize([]byte(src)), WithSyncSet(sync))

	require.Len(t, errs, 1)
	require.NotNil(t, prog)
	require.Len(t, prog.Block.Commands, 1)
	assert.IsType(t, &ast.Read{}, prog.Block.Commands[0])
}

func TestParseTokensWithoutEOF(t *testing.T) {
	tokens := lexer.Tokenize([]byte("fn main() { }"))
	prog, errs := Parse(tokens[:len(tokens)-1])
	assert.Empty(t, errs)
	assert.NotNil(t, prog)

	prog, errs = Parse(nil)
	assert.Nil(t, prog)
	require.Len(t, errs, 1)
	assert.Equal(t, token.EOF, errs[0].Token.Kind)
}

func TestErrorString(t *testing.T) {
	_, errs := parseSource("fn main() { let x i32; }")
	require.Len(t, errs, 1)
	assert.Equal(t, `1:19: expected ':' after variable name in declaration (near "i32")`, errs[0].Error())

	_, errs = parseSource("fn main() {")
	require.Len(t, errs, 1)
	assert.Equal(t, `1:12: expected '}' to close block (near "end of input")`, errs[0].Error())
}

func TestErrorList(t *testing.T) {
	var empty ErrorList
	assert.NoError(t, empty.Err())

	_, errs := parseSource("fn main() { let x i32; let y f64; }")
	require.Len(t, errs, 2)
	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, errs[0].Error()+"\n"+errs[1].Error(), err.Error())
}
