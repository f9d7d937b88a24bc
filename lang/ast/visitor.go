package ast

// Visitor has one method per node kind. Accept dispatches to the method
// matching the node's concrete type.
type Visitor interface {
	VisitProgram(n *Program)
	VisitBlock(n *Block)
	VisitDeclaration(n *Declaration)
	VisitAssignment(n *Assignment)
	VisitRead(n *Read)
	VisitPrint(n *Print)
	VisitConditional(n *Conditional)
	VisitWhile(n *While)
	VisitBinaryOp(n *BinaryOp)
	VisitUnaryOp(n *UnaryOp)
	VisitNumber(n *Number)
	VisitIdentifier(n *Identifier)
	VisitRelationalOp(n *RelationalOp)
	VisitLogicalOp(n *LogicalOp)
	VisitLogicalNot(n *LogicalNot)
}

func (n *Program) Accept(v Visitor)      { v.VisitProgram(n) }
func (n *Block) Accept(v Visitor)        { v.VisitBlock(n) }
func (n *Declaration) Accept(v Visitor)  { v.VisitDeclaration(n) }
func (n *Assignment) Accept(v Visitor)   { v.VisitAssignment(n) }
func (n *Read) Accept(v Visitor)         { v.VisitRead(n) }
func (n *Print) Accept(v Visitor)        { v.VisitPrint(n) }
func (n *Conditional) Accept(v Visitor)  { v.VisitConditional(n) }
func (n *While) Accept(v Visitor)        { v.VisitWhile(n) }
func (n *BinaryOp) Accept(v Visitor)     { v.VisitBinaryOp(n) }
func (n *UnaryOp) Accept(v Visitor)      { v.VisitUnaryOp(n) }
func (n *Number) Accept(v Visitor)       { v.VisitNumber(n) }
func (n *Identifier) Accept(v Visitor)   { v.VisitIdentifier(n) }
func (n *RelationalOp) Accept(v Visitor) { v.VisitRelationalOp(n) }
func (n *LogicalOp) Accept(v Visitor)    { v.VisitLogicalOp(n) }
func (n *LogicalNot) Accept(v Visitor)   { v.VisitLogicalNot(n) }

// Children returns the direct children of n in source order.
func Children(n Node) []Node {
	var c children
	n.Accept(&c)
	return c
}

// Inspect traverses the tree rooted at n depth-first, calling f for each
// node. Children of a node are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if !f(n) {
		return
	}
	for _, child := range Children(n) {
		Inspect(child, f)
	}
}

type children []Node

func (c *children) add(nodes ...Node) {
	*c = append(*c, nodes...)
}

func (c *children) VisitProgram(n *Program) {
	c.add(n.Block)
}

func (c *children) VisitBlock(n *Block) {
	for _, cmd := range n.Commands {
		c.add(cmd)
	}
}

func (c *children) VisitDeclaration(n *Declaration) {}

func (c *children) VisitAssignment(n *Assignment) {
	c.add(n.Value)
}

func (c *children) VisitRead(n *Read)   {}
func (c *children) VisitPrint(n *Print) {}

func (c *children) VisitConditional(n *Conditional) {
	c.add(n.Cond, n.Then)
	if n.Else != nil {
		c.add(n.Else)
	}
}

func (c *children) VisitWhile(n *While) {
	c.add(n.Cond, n.Body)
}

func (c *children) VisitBinaryOp(n *BinaryOp) {
	c.add(n.Left, n.Right)
}

func (c *children) VisitUnaryOp(n *UnaryOp) {
	c.add(n.Operand)
}

func (c *children) VisitNumber(n *Number)         {}
func (c *children) VisitIdentifier(n *Identifier) {}

func (c *children) VisitRelationalOp(n *RelationalOp) {
	c.add(n.Left, n.Right)
}

func (c *children) VisitLogicalOp(n *LogicalOp) {
	c.add(n.Left, n.Right)
}

func (c *children) VisitLogicalNot(n *LogicalNot) {
	c.add(n.Operand)
}
