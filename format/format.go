package format

import (
	"fmt"
	"slices"
)

// Output format names accepted by the CLI and the configuration file.
const (
	Text = "text"
	Tree = "tree"
	JSON = "json"
)

var names = []string{Text, Tree, JSON}

// Names returns the known output format names.
func Names() []string {
	return slices.Clone(names)
}

// Check returns an error unless name is a known output format.
func Check(name string) error {
	if slices.Contains(names, name) {
		return nil
	}
	return fmt.Errorf("unknown output format %q (want one of %v)", name, names)
}
