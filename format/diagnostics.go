package format

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhamidi/minirs/frontend"
)

// DiagnosticEncoder writes diagnostics either one per line or as a JSON
// array.
type DiagnosticEncoder struct {
	w      io.Writer
	format string
}

func NewDiagnosticEncoder(w io.Writer, format string) *DiagnosticEncoder {
	return &DiagnosticEncoder{w: w, format: format}
}

func (e *DiagnosticEncoder) Encode(diags []frontend.Diagnostic) error {
	if e.format == JSON {
		if diags == nil {
			diags = []frontend.Diagnostic{}
		}
		data, err := json.MarshalIndent(diags, "", "  ")
		if err != nil {
			return fmt.Errorf("encode diagnostics: %w", err)
		}
		_, err = e.w.Write(append(data, '\n'))
		return err
	}
	for _, d := range diags {
		if _, err := fmt.Fprintln(e.w, d.String()); err != nil {
			return err
		}
	}
	return nil
}
