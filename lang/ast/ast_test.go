package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/minirs/lang/token"
)

func pos(line, col int) token.Position {
	return token.Position{Line: line, Column: col}
}

// sample mirrors:
//
//	fn main() {
//	  let mut x: i32;
//	  x = -1 + 2;
//	  if !(x > 0) && x != 3 { print!("neg"); } else { read(x); }
//	  while x < 10 { print!(x); }
//	}
func sample() *Program {
	return &Program{
		Fn: pos(1, 1),
		Block: &Block{
			LBrace: pos(1, 11),
			Commands: []Command{
				&Declaration{Let: pos(2, 3), Mutable: true, Name: "x", Type: "i32"},
				&Assignment{
					NamePos: pos(3, 3),
					Name:    "x",
					Value: &BinaryOp{
						Left:  &UnaryOp{OpPos: pos(3, 7), Op: "-", Operand: &Number{ValuePos: pos(3, 8), Value: int64(1), Lexeme: "1"}},
						Op:    "+",
						OpPos: pos(3, 10),
						Right: &Number{ValuePos: pos(3, 12), Value: int64(2), Lexeme: "2"},
					},
				},
				&Conditional{
					If: pos(4, 3),
					Cond: &LogicalOp{
						Left: &LogicalNot{
							Not: pos(4, 6),
							Operand: &RelationalOp{
								Left:  &Identifier{NamePos: pos(4, 8), Name: "x"},
								Op:    ">",
								Right: &Number{ValuePos: pos(4, 12), Value: int64(0), Lexeme: "0"},
							},
						},
						Op: "&&",
						Right: &RelationalOp{
							Left:  &Identifier{NamePos: pos(4, 18), Name: "x"},
							Op:    "!=",
							Right: &Number{ValuePos: pos(4, 23), Value: int64(3), Lexeme: "3"},
						},
					},
					Then: &Block{LBrace: pos(4, 25), Commands: []Command{&Print{PrintPos: pos(4, 27), Value: "neg"}}},
					Else: &Block{LBrace: pos(4, 48), Commands: []Command{&Read{ReadPos: pos(4, 50), Name: "x"}}},
				},
				&While{
					WhilePos: pos(5, 3),
					Cond: &RelationalOp{
						Left:  &Identifier{NamePos: pos(5, 9), Name: "x"},
						Op:    "<",
						Right: &Number{ValuePos: pos(5, 13), Value: int64(10), Lexeme: "10"},
					},
					Body: &Block{LBrace: pos(5, 16), Commands: []Command{&Print{PrintPos: pos(5, 18), Value: "x", IsIdentifier: true}}},
				},
			},
		},
	}
}

func TestString(t *testing.T) {
	want := `Program
  Block
    Declaration mut x: i32
    Assignment x
      BinaryOp +
        UnaryOp -
          Number 1
        Number 2
    Conditional
      LogicalOp &&
        LogicalNot
          RelationalOp >
            Identifier x
            Number 0
        RelationalOp !=
          Identifier x
          Number 3
      Block
        Print "neg"
      Block
        Read x
    While
      RelationalOp <
        Identifier x
        Number 10
      Block
        Print x
`
	assert.Equal(t, want, String(sample()))
}

func TestStringWithPositions(t *testing.T) {
	decl := &Declaration{Let: pos(2, 3), Name: "y", Type: "f64"}
	assert.Equal(t, "[2:3] Declaration y: f64\n", StringWithPositions(decl))
}

func TestPosOfBinaryNodesIsLeftOperand(t *testing.T) {
	bin := &BinaryOp{
		Left:  &Identifier{NamePos: pos(7, 4), Name: "a"},
		Op:    "*",
		OpPos: pos(7, 6),
		Right: &Identifier{NamePos: pos(7, 8), Name: "b"},
	}
	assert.Equal(t, pos(7, 4), bin.Pos())
}

func TestChildren(t *testing.T) {
	prog := sample()
	require.Equal(t, []Node{prog.Block}, Children(prog))

	cond := prog.Block.Commands[2].(*Conditional)
	assert.Equal(t, []Node{cond.Cond, cond.Then, cond.Else}, Children(cond))

	noElse := &Conditional{Cond: cond.Cond, Then: cond.Then}
	assert.Len(t, Children(noElse), 2)

	assert.Empty(t, Children(&Identifier{Name: "x"}))
	assert.Empty(t, Children(&Declaration{Name: "x"}))
}

func TestInspect(t *testing.T) {
	counts := map[string]int{}
	Inspect(sample(), func(n Node) bool {
		switch n.(type) {
		case *Identifier:
			counts["ident"]++
		case *Number:
			counts["number"]++
		case Command:
			counts["command"]++
		}
		return true
	})

	assert.Equal(t, 3, counts["ident"])
	assert.Equal(t, 5, counts["number"])
	// outer block, 4 statements, 3 nested blocks and their 3 statements
	assert.Equal(t, 11, counts["command"])
}

func TestInspectSkipsChildren(t *testing.T) {
	visited := 0
	Inspect(sample(), func(n Node) bool {
		visited++
		_, isBlock := n.(*Block)
		return !isBlock
	})
	assert.Equal(t, 2, visited)
}
