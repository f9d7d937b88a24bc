// Package ast declares the syntax tree produced by the minirs parser.
//
// The node set is closed: Node, Command, ArithExpr and RelExpr carry
// unexported marker methods, so only the types in this package implement
// them. Consumers that need to handle every kind implement Visitor; adding
// a node kind adds a Visitor method and breaks every incomplete consumer
// at compile time.
package ast

import "github.com/dhamidi/minirs/lang/token"

type Node interface {
	Pos() token.Position
	Accept(v Visitor)
	node()
}

// Command is a statement inside a block.
type Command interface {
	Node
	commandNode()
}

// ArithExpr is an arithmetic expression.
type ArithExpr interface {
	Node
	arithNode()
}

// RelExpr is a relational or logical expression, used as a condition.
type RelExpr interface {
	Node
	relNode()
}

type Program struct {
	Fn    token.Position
	Block *Block
}

type Block struct {
	LBrace   token.Position
	Commands []Command
}

type Declaration struct {
	Let     token.Position
	Mutable bool
	Name    string
	Type    string
}

type Assignment struct {
	NamePos token.Position
	Name    string
	Value   ArithExpr
}

type Read struct {
	ReadPos token.Position
	Name    string
}

// Print holds either an identifier name (IsIdentifier) or the raw
// payload of a string literal.
type Print struct {
	PrintPos     token.Position
	Value        string
	IsIdentifier bool
}

type Conditional struct {
	If   token.Position
	Cond RelExpr
	Then *Block
	Else *Block
}

type While struct {
	WhilePos token.Position
	Cond     RelExpr
	Body     *Block
}

type BinaryOp struct {
	Left  ArithExpr
	Op    string
	OpPos token.Position
	Right ArithExpr
}

type UnaryOp struct {
	OpPos   token.Position
	Op      string
	Operand ArithExpr
}

// Number keeps both the decoded value (int64, float64 or *big.Int) and
// the source text.
type Number struct {
	ValuePos token.Position
	Value    any
	Lexeme   string
}

type Identifier struct {
	NamePos token.Position
	Name    string
}

type RelationalOp struct {
	Left  ArithExpr
	Op    string
	OpPos token.Position
	Right ArithExpr
}

type LogicalOp struct {
	Left  RelExpr
	Op    string
	OpPos token.Position
	Right RelExpr
}

type LogicalNot struct {
	Not     token.Position
	Operand RelExpr
}

func (n *Program) Pos() token.Position      { return n.Fn }
func (n *Block) Pos() token.Position        { return n.LBrace }
func (n *Declaration) Pos() token.Position  { return n.Let }
func (n *Assignment) Pos() token.Position   { return n.NamePos }
func (n *Read) Pos() token.Position         { return n.ReadPos }
func (n *Print) Pos() token.Position        { return n.PrintPos }
func (n *Conditional) Pos() token.Position  { return n.If }
func (n *While) Pos() token.Position        { return n.WhilePos }
func (n *BinaryOp) Pos() token.Position     { return n.Left.Pos() }
func (n *UnaryOp) Pos() token.Position      { return n.OpPos }
func (n *Number) Pos() token.Position       { return n.ValuePos }
func (n *Identifier) Pos() token.Position   { return n.NamePos }
func (n *RelationalOp) Pos() token.Position { return n.Left.Pos() }
func (n *LogicalOp) Pos() token.Position    { return n.Left.Pos() }
func (n *LogicalNot) Pos() token.Position   { return n.Not }

func (*Program) node()      {}
func (*Block) node()        {}
func (*Declaration) node()  {}
func (*Assignment) node()   {}
func (*Read) node()         {}
func (*Print) node()        {}
func (*Conditional) node()  {}
func (*While) node()        {}
func (*BinaryOp) node()     {}
func (*UnaryOp) node()      {}
func (*Number) node()       {}
func (*Identifier) node()   {}
func (*RelationalOp) node() {}
func (*LogicalOp) node()    {}
func (*LogicalNot) node()   {}

func (*Block) commandNode()       {}
func (*Declaration) commandNode() {}
func (*Assignment) commandNode()  {}
func (*Read) commandNode()        {}
func (*Print) commandNode()       {}
func (*Conditional) commandNode() {}
func (*While) commandNode()       {}

func (*BinaryOp) arithNode()   {}
func (*UnaryOp) arithNode()    {}
func (*Number) arithNode()     {}
func (*Identifier) arithNode() {}

func (*RelationalOp) relNode() {}
func (*LogicalOp) relNode()    {}
func (*LogicalNot) relNode()   {}
