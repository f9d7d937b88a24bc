package format

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/dhamidi/minirs/lang/ast"
)

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node ast.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText(node ast.Node) ([]byte, error) {
	return json.MarshalIndent(nodeToJSON(node), "", "  ")
}

type astJSONNode struct {
	Kind       string          `json:"kind"`
	Pos        astJSONPosition `json:"pos"`
	Name       string          `json:"name,omitempty"`
	Type       string          `json:"type,omitempty"`
	Mutable    bool            `json:"mutable,omitempty"`
	Op         string          `json:"op,omitempty"`
	Value      any             `json:"value,omitempty"`
	Identifier bool            `json:"identifier,omitempty"`
	Children   []*astJSONNode  `json:"children,omitempty"`
}

type astJSONPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func nodeToJSON(n ast.Node) *astJSONNode {
	pos := n.Pos()
	jn := &astJSONNode{Pos: astJSONPosition{Line: pos.Line, Column: pos.Column}}
	n.Accept(&attributes{node: jn})

	children := ast.Children(n)
	if len(children) > 0 {
		jn.Children = make([]*astJSONNode, len(children))
		for i, child := range children {
			jn.Children[i] = nodeToJSON(child)
		}
	}
	return jn
}

// attributes fills in the kind and the scalar fields of one node.
type attributes struct {
	node *astJSONNode
}

func (a *attributes) VisitProgram(n *ast.Program) { a.node.Kind = "Program" }
func (a *attributes) VisitBlock(n *ast.Block)     { a.node.Kind = "Block" }

func (a *attributes) VisitDeclaration(n *ast.Declaration) {
	a.node.Kind = "Declaration"
	a.node.Name = n.Name
	a.node.Type = n.Type
	a.node.Mutable = n.Mutable
}

func (a *attributes) VisitAssignment(n *ast.Assignment) {
	a.node.Kind = "Assignment"
	a.node.Name = n.Name
}

func (a *attributes) VisitRead(n *ast.Read) {
	a.node.Kind = "Read"
	a.node.Name = n.Name
}

func (a *attributes) VisitPrint(n *ast.Print) {
	a.node.Kind = "Print"
	a.node.Value = n.Value
	a.node.Identifier = n.IsIdentifier
}

func (a *attributes) VisitConditional(n *ast.Conditional) { a.node.Kind = "Conditional" }
func (a *attributes) VisitWhile(n *ast.While)             { a.node.Kind = "While" }

func (a *attributes) VisitBinaryOp(n *ast.BinaryOp) {
	a.node.Kind = "BinaryOp"
	a.node.Op = n.Op
}

func (a *attributes) VisitUnaryOp(n *ast.UnaryOp) {
	a.node.Kind = "UnaryOp"
	a.node.Op = n.Op
}

func (a *attributes) VisitNumber(n *ast.Number) {
	a.node.Kind = "Number"
	a.node.Value = numberValue(n.Lexeme)
}

func (a *attributes) VisitIdentifier(n *ast.Identifier) {
	a.node.Kind = "Identifier"
	a.node.Name = n.Name
}

func (a *attributes) VisitRelationalOp(n *ast.RelationalOp) {
	a.node.Kind = "RelationalOp"
	a.node.Op = n.Op
}

func (a *attributes) VisitLogicalOp(n *ast.LogicalOp) {
	a.node.Kind = "LogicalOp"
	a.node.Op = n.Op
}

func (a *attributes) VisitLogicalNot(n *ast.LogicalNot) { a.node.Kind = "LogicalNot" }

// numberValue keeps the source digits as a JSON number. JSON allows
// neither leading zeros nor a bare leading '.', so those are normalised.
func numberValue(lexeme string) json.Number {
	intPart, frac, isFloat := strings.Cut(lexeme, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	if isFloat {
		return json.Number(intPart + "." + frac)
	}
	return json.Number(intPart)
}
