package lsp

import (
	"bytes"
	"unicode"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/minirs/frontend"
)

// Diagnostics converts the analysis of doc to LSP diagnostics. The result
// is never nil so that an empty list clears the client's markers.
func Diagnostics(doc *Document) []protocol.Diagnostic {
	if doc == nil || doc.Result == nil {
		return []protocol.Diagnostic{}
	}
	diags := doc.Result.Diagnostics()
	lines := bytes.Split(doc.Content, []byte("\n"))

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toProtocolDiagnostic(lines, d))
	}
	return out
}

func toProtocolDiagnostic(lines [][]byte, d frontend.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	end := toProtocolPosition(lines, d.EndLine, d.EndColumn)
	start := toProtocolPosition(lines, d.Line, d.Column)
	if end.Line < start.Line || (end.Line == start.Line && end.Character <= start.Character) {
		// zero-width at end of input; mark one character
		end = protocol.Position{Line: start.Line, Character: start.Character + 1}
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: string(d.Phase)},
		Source:   &source,
		Message:  d.Message,
	}
}

// toProtocolPosition converts a 1-based line and character column to a
// 0-based LSP position counted in UTF-16 code units.
func toProtocolPosition(lines [][]byte, line, col int) protocol.Position {
	if line < 1 {
		line = 1
	}
	var text []byte
	if line <= len(lines) {
		text = lines[line-1]
	}
	return protocol.Position{
		Line:      protocol.UInteger(line - 1),
		Character: protocol.UInteger(utf16Column(text, col)),
	}
}

func utf16Column(line []byte, col int) int {
	units := 0
	for i := 1; i < col; i++ {
		if len(line) == 0 {
			units++
			continue
		}
		r, size := utf8.DecodeRune(line)
		line = line[size:]
		if n := utf16RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
	}
	return units
}

// utf16RuneLen mirrors utf16.RuneLen (Go 1.23+), unavailable on the Go 1.21
// toolchain this module builds with.
func utf16RuneLen(r rune) int {
	switch {
	case 0 <= r && r < 0xd800, 0xe000 <= r && r < 0x10000:
		return 1
	case 0x10000 <= r && r <= unicode.MaxRune:
		return 2
	default:
		return -1
	}
}
