package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// String renders the tree rooted at n, one node per line, children
// indented by two spaces.
func String(n Node) string {
	var sb strings.Builder
	Fprint(&sb, n, false)
	return sb.String()
}

// StringWithPositions is like String but prefixes every node with its
// line:column.
func StringWithPositions(n Node) string {
	var sb strings.Builder
	Fprint(&sb, n, true)
	return sb.String()
}

func Fprint(w io.Writer, n Node, showPositions bool) error {
	p := &printer{w: w, showPositions: showPositions}
	p.print(n)
	return p.err
}

type printer struct {
	w             io.Writer
	showPositions bool
	indent        int
	err           error
}

func (p *printer) print(n Node) {
	n.Accept(p)
}

func (p *printer) line(n Node, format string, args ...any) {
	if p.err != nil {
		return
	}
	text := strings.Repeat("  ", p.indent)
	if p.showPositions {
		pos := n.Pos()
		text += fmt.Sprintf("[%d:%d] ", pos.Line, pos.Column)
	}
	text += fmt.Sprintf(format, args...)
	_, p.err = io.WriteString(p.w, text+"\n")
}

func (p *printer) nested(nodes ...Node) {
	p.indent++
	for _, n := range nodes {
		p.print(n)
	}
	p.indent--
}

func (p *printer) VisitProgram(n *Program) {
	p.line(n, "Program")
	p.nested(n.Block)
}

func (p *printer) VisitBlock(n *Block) {
	p.line(n, "Block")
	p.indent++
	for _, cmd := range n.Commands {
		p.print(cmd)
	}
	p.indent--
}

func (p *printer) VisitDeclaration(n *Declaration) {
	if n.Mutable {
		p.line(n, "Declaration mut %s: %s", n.Name, n.Type)
		return
	}
	p.line(n, "Declaration %s: %s", n.Name, n.Type)
}

func (p *printer) VisitAssignment(n *Assignment) {
	p.line(n, "Assignment %s", n.Name)
	p.nested(n.Value)
}

func (p *printer) VisitRead(n *Read) {
	p.line(n, "Read %s", n.Name)
}

func (p *printer) VisitPrint(n *Print) {
	if n.IsIdentifier {
		p.line(n, "Print %s", n.Value)
		return
	}
	p.line(n, "Print %s", strconv.Quote(n.Value))
}

func (p *printer) VisitConditional(n *Conditional) {
	p.line(n, "Conditional")
	p.nested(n.Cond, n.Then)
	if n.Else != nil {
		p.nested(n.Else)
	}
}

func (p *printer) VisitWhile(n *While) {
	p.line(n, "While")
	p.nested(n.Cond, n.Body)
}

func (p *printer) VisitBinaryOp(n *BinaryOp) {
	p.line(n, "BinaryOp %s", n.Op)
	p.nested(n.Left, n.Right)
}

func (p *printer) VisitUnaryOp(n *UnaryOp) {
	p.line(n, "UnaryOp %s", n.Op)
	p.nested(n.Operand)
}

func (p *printer) VisitNumber(n *Number) {
	p.line(n, "Number %s", n.Lexeme)
}

func (p *printer) VisitIdentifier(n *Identifier) {
	p.line(n, "Identifier %s", n.Name)
}

func (p *printer) VisitRelationalOp(n *RelationalOp) {
	p.line(n, "RelationalOp %s", n.Op)
	p.nested(n.Left, n.Right)
}

func (p *printer) VisitLogicalOp(n *LogicalOp) {
	p.line(n, "LogicalOp %s", n.Op)
	p.nested(n.Left, n.Right)
}

func (p *printer) VisitLogicalNot(n *LogicalNot) {
	p.line(n, "LogicalNot")
	p.nested(n.Operand)
}
