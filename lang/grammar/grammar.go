// Package grammar holds the reference EBNF grammar of minirs and a matcher
// that checks token lexemes against its lexical productions.
package grammar

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/exp/ebnf"
)

// Start is the start production of the grammar.
const Start = "Program"

//go:embed minirs.ebnf
var source string

// Source returns the embedded grammar text.
func Source() string {
	return source
}

var load = sync.OnceValues(func() (ebnf.Grammar, error) {
	return Parse("minirs.ebnf", source)
})

// Load parses and verifies the embedded grammar. The result is shared;
// callers must not modify it.
func Load() (ebnf.Grammar, error) {
	return load()
}

// Parse parses an EBNF grammar and verifies it from Start.
func Parse(filename, src string) (ebnf.Grammar, error) {
	g, err := ebnf.Parse(filename, strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	if err := ebnf.Verify(g, Start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	return g, nil
}

// Productions returns the production names in sorted order.
func Productions(g ebnf.Grammar) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsLexical reports whether name denotes a lexical production.
func IsLexical(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}

// Keywords returns the word-like literal tokens used by syntactic
// productions, sorted.
func Keywords(g ebnf.Grammar) []string {
	m := NewMatcher(g)
	seen := map[string]bool{}
	for name, prod := range g {
		if IsLexical(name) {
			continue
		}
		walk(prod.Expr, func(tok *ebnf.Token) {
			if m.Accepts("ident", tok.String) {
				seen[tok.String] = true
			}
		})
	}
	words := make([]string, 0, len(seen))
	for w := range seen {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

func walk(expr ebnf.Expression, f func(*ebnf.Token)) {
	switch e := expr.(type) {
	case *ebnf.Token:
		f(e)
	case ebnf.Sequence:
		for _, item := range e {
			walk(item, f)
		}
	case ebnf.Alternative:
		for _, alt := range e {
			walk(alt, f)
		}
	case *ebnf.Group:
		walk(e.Body, f)
	case *ebnf.Option:
		walk(e.Body, f)
	case *ebnf.Repetition:
		walk(e.Body, f)
	}
}
