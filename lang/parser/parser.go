package parser

import (
	"errors"
	"fmt"

	"github.com/dhamidi/minirs/lang/ast"
	"github.com/dhamidi/minirs/lang/token"
)

type Option func(*Parser)

// WithSyncSet replaces the default panic-mode synchronisation set.
func WithSyncSet(s SyncSet) Option {
	return func(p *Parser) {
		p.sync = s
	}
}

type Parser struct {
	tokens []token.Token
	pos    int
	errors ErrorList
	sync   SyncSet
}

// New prepares a parser over a fully materialised token sequence. Comment
// tokens are dropped; a missing trailing EOF is supplied.
func New(tokens []token.Token, opts ...Option) *Parser {
	p := &Parser{
		sync: DefaultSyncSet(),
	}
	for _, tok := range tokens {
		if tok.Kind.IsComment() {
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Kind != token.EOF {
		var end token.Position
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Span.End
		} else {
			end = token.Position{Line: 1, Column: 1}
		}
		p.tokens = append(p.tokens, token.Token{Kind: token.EOF, Span: token.Span{Start: end, End: end}})
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func Parse(tokens []token.Token, opts ...Option) (*ast.Program, ErrorList) {
	return New(tokens, opts...).Parse()
}

// Parse parses a whole program. Recoverable errors are collected and the
// program is still returned; a malformed header, a missing program block
// or tokens after the final '}' make the result nil. The fatal error is
// then the last entry of the list, after any recoverable errors found
// before it.
func (p *Parser) Parse() (*ast.Program, ErrorList) {
	p.pos = 0
	p.errors = nil

	prog, err := p.parseProgram()
	if err != nil {
		p.record(err)
		return nil, p.errors
	}
	return prog, p.errors
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind token.Kind, msg string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("%s", msg)
}

func (p *Parser) errorf(format string, args ...any) error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Token:   p.peek(),
	}
}

func (p *Parser) record(err error) {
	var perr *Error
	if !errors.As(err, &perr) {
		perr = &Error{Message: err.Error(), Token: p.peek()}
	}
	p.errors = append(p.errors, perr)
}

// synchronize discards tokens after a failed command until the sync set
// says to stop. It always moves past at least one token when the failed
// command consumed nothing.
func (p *Parser) synchronize(start int) {
	if p.pos == start && !p.check(token.EOF) {
		p.advance()
	}
	for {
		switch p.sync.Action(p.peek().Kind) {
		case SyncConsume:
			p.advance()
			return
		case SyncStop:
			return
		}
		p.advance()
	}
}

// program := 'fn' 'main' '(' ')' block
func (p *Parser) parseProgram() (*ast.Program, error) {
	fn, err := p.expect(token.Fn, "expected 'fn' at start of program")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Main, "expected 'main' after 'fn'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen, "expected '(' after 'main'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "expected ')' after '('"); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if !p.check(token.EOF) {
		return nil, p.errorf("unexpected tokens after the end of main")
	}
	return &ast.Program{Fn: fn.Span.Start, Block: block}, nil
}

// block := '{' command* '}'
func (p *Parser) parseBlock() (*ast.Block, error) {
	lbrace, err := p.expect(token.LBrace, "expected '{' to open block")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{LBrace: lbrace.Span.Start}
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		if cmd := p.parseCommand(); cmd != nil {
			block.Commands = append(block.Commands, cmd)
		}
	}
	if _, err := p.expect(token.RBrace, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseCommand is the recovery point: a failed command is recorded and
// the parser resynchronises, returning nil.
func (p *Parser) parseCommand() ast.Command {
	start := p.pos
	cmd, err := p.command()
	if err == nil {
		return cmd
	}
	p.record(err)
	p.synchronize(start)
	return nil
}

func (p *Parser) command() (ast.Command, error) {
	switch p.peek().Kind {
	case token.Let:
		return p.parseDeclaration()
	case token.Ident:
		return p.parseAssignment()
	case token.Read:
		return p.parseRead()
	case token.Print:
		return p.parsePrint()
	case token.If:
		return p.parseConditional()
	case token.While:
		return p.parseWhile()
	case token.LBrace:
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return block, nil
	}
	return nil, p.errorf("expected a command")
}

// declaration := 'let' 'mut'? IDENT ':' ('i32'|'f64') ';'
func (p *Parser) parseDeclaration() (ast.Command, error) {
	let := p.advance()
	mutable := false
	if p.check(token.Mut) {
		p.advance()
		mutable = true
	}
	name, err := p.expect(token.Ident, "expected variable name in declaration")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "expected ':' after variable name in declaration"); err != nil {
		return nil, err
	}
	if !p.match(token.I32, token.F64) {
		return nil, p.errorf("expected type 'i32' or 'f64'")
	}
	typ := p.advance()
	if _, err := p.expect(token.Semicolon, "expected ';' after declaration"); err != nil {
		return nil, err
	}
	return &ast.Declaration{
		Let:     let.Span.Start,
		Mutable: mutable,
		Name:    name.Lexeme,
		Type:    typ.Lexeme,
	}, nil
}

// assignment := IDENT '=' arith_expr ';'
func (p *Parser) parseAssignment() (ast.Command, error) {
	name := p.advance()
	if _, err := p.expect(token.Assign, "expected '=' after variable name"); err != nil {
		return nil, err
	}
	value, err := p.parseArithExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "expected ';' after assignment"); err != nil {
		return nil, err
	}
	return &ast.Assignment{NamePos: name.Span.Start, Name: name.Lexeme, Value: value}, nil
}

// read := 'read' '(' IDENT ')' ';'
func (p *Parser) parseRead() (ast.Command, error) {
	read := p.advance()
	if _, err := p.expect(token.LParen, "expected '(' after 'read'"); err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident, "expected variable name in read")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "expected ')' after variable name in read"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "expected ';' after read"); err != nil {
		return nil, err
	}
	return &ast.Read{ReadPos: read.Span.Start, Name: name.Lexeme}, nil
}

// print := 'print' '!' '(' (IDENT | STRING) ')' ';'
func (p *Parser) parsePrint() (ast.Command, error) {
	printTok := p.advance()
	if _, err := p.expect(token.Not, "expected '!' after 'print'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen, "expected '(' after 'print!'"); err != nil {
		return nil, err
	}

	node := &ast.Print{PrintPos: printTok.Span.Start}
	switch tok := p.peek(); tok.Kind {
	case token.Ident:
		node.Value = tok.Lexeme
		node.IsIdentifier = true
	case token.String:
		node.Value, _ = tok.Literal.(string)
	default:
		return nil, p.errorf("expected identifier or string in print!")
	}
	p.advance()

	if _, err := p.expect(token.RParen, "expected ')' to close print!"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semicolon, "expected ';' after print!"); err != nil {
		return nil, err
	}
	return node, nil
}

// conditional := 'if' rel_expr block ('else' block)?
func (p *Parser) parseConditional() (ast.Command, error) {
	ifTok := p.advance()
	cond, err := p.parseRelExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.Conditional{If: ifTok.Span.Start, Cond: cond, Then: then}
	if p.check(token.Else) {
		p.advance()
		if node.Else, err = p.parseBlock(); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// while := 'while' rel_expr block
func (p *Parser) parseWhile() (ast.Command, error) {
	while := p.advance()
	cond, err := p.parseRelExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{WhilePos: while.Span.Start, Cond: cond, Body: body}, nil
}

// arith_expr := term (('+'|'-') term)*
func (p *Parser) parseArithExpr() (ast.ArithExpr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.match(token.Plus, token.Minus) {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op.Lexeme, OpPos: op.Span.Start, Right: right}
	}
	return left, nil
}

// term := factor (('*'|'/'|'%') factor)*
func (p *Parser) parseTerm() (ast.ArithExpr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.match(token.Star, token.Slash, token.Percent) {
		op := p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op.Lexeme, OpPos: op.Span.Start, Right: right}
	}
	return left, nil
}

// factor := NUMBER | IDENT | '(' arith_expr ')' | ('+'|'-') factor
func (p *Parser) parseFactor() (ast.ArithExpr, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.Number:
		p.advance()
		return &ast.Number{ValuePos: tok.Span.Start, Value: tok.Literal, Lexeme: tok.Lexeme}, nil
	case token.Ident:
		p.advance()
		return &ast.Identifier{NamePos: tok.Span.Start, Name: tok.Lexeme}, nil
	case token.LParen:
		p.advance()
		inner, err := p.parseArithExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, "expected ')' to close parenthesized expression"); err != nil {
			return nil, err
		}
		return inner, nil
	case token.Plus, token.Minus:
		p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{OpPos: tok.Span.Start, Op: tok.Lexeme, Operand: operand}, nil
	}
	return nil, p.errorf("expected number, identifier or '(' in expression")
}

// rel_expr := rel_term (('&&'|'||') rel_term)*
func (p *Parser) parseRelExpr() (ast.RelExpr, error) {
	left, err := p.parseRelTerm()
	if err != nil {
		return nil, err
	}
	for p.match(token.And, token.Or) {
		op := p.advance()
		right, err := p.parseRelTerm()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalOp{Left: left, Op: op.Lexeme, OpPos: op.Span.Start, Right: right}
	}
	return left, nil
}

// rel_term := '!' rel_term | arith_expr REL_OP arith_expr | '(' ... ')'
func (p *Parser) parseRelTerm() (ast.RelExpr, error) {
	switch tok := p.peek(); tok.Kind {
	case token.Not:
		p.advance()
		operand, err := p.parseRelTerm()
		if err != nil {
			return nil, err
		}
		return &ast.LogicalNot{Not: tok.Span.Start, Operand: operand}, nil
	case token.LParen:
		return p.parseParenRelTerm()
	}
	left, err := p.parseArithExpr()
	if err != nil {
		return nil, err
	}
	return p.parseComparison(left)
}

// parseParenRelTerm resolves a '(' at the start of a relational term. The
// content is first read as an arithmetic expression; if ')' follows it,
// the group is the left operand of a comparison. Otherwise the cursor is
// rewound to just after '(' and the content is parsed as a relational
// expression closed by ')'.
func (p *Parser) parseParenRelTerm() (ast.RelExpr, error) {
	p.advance()
	mark := p.pos

	if inner, err := p.parseArithExpr(); err == nil && p.check(token.RParen) {
		p.advance()
		if !p.check(token.RelOp) {
			return nil, p.errorf("expected relational operator after parenthesized expression")
		}
		return p.parseComparison(inner)
	}

	p.pos = mark
	inner, err := p.parseRelExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "expected ')' to close condition"); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *Parser) parseComparison(left ast.ArithExpr) (ast.RelExpr, error) {
	if !p.check(token.RelOp) {
		return nil, p.errorf("expected relational operator (==, !=, <, <=, >, >=)")
	}
	op := p.advance()
	right, err := p.parseArithExpr()
	if err != nil {
		return nil, err
	}
	return &ast.RelationalOp{Left: left, Op: op.Lexeme, OpPos: op.Span.Start, Right: right}, nil
}
