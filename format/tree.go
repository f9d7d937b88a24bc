package format

import (
	"io"

	"github.com/dhamidi/minirs/lang/ast"
)

// TreeEncoder writes the indented tree rendering of an AST.
type TreeEncoder struct {
	w             io.Writer
	showPositions bool
}

func NewTreeEncoder(w io.Writer, showPositions bool) *TreeEncoder {
	return &TreeEncoder{w: w, showPositions: showPositions}
}

func (e *TreeEncoder) Encode(node ast.Node) error {
	return ast.Fprint(e.w, node, e.showPositions)
}
