package grammar

import (
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/minirs/lang/token"
)

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

// Matcher matches text against the lexical productions of a grammar.
// Repetitions are greedy and alternatives pick the longest match, which is
// enough for the regular productions of the lexicon.
type Matcher struct {
	grammar  ebnf.Grammar
	input    string
	memo     map[memoKey]int // match length, -1 for no match
	visiting map[memoKey]bool
}

func NewMatcher(g ebnf.Grammar) *Matcher {
	return &Matcher{grammar: g}
}

// Match returns the length in bytes of the longest prefix of input derived
// from the named production, or -1 if there is none.
func (m *Matcher) Match(name, input string) int {
	m.input = input
	m.memo = make(map[memoKey]int)
	m.visiting = make(map[memoKey]bool)
	return m.matchName(name, 0)
}

// Accepts reports whether all of text derives from the named production.
func (m *Matcher) Accepts(name, text string) bool {
	return m.Match(name, text) == len(text)
}

func (m *Matcher) match(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case nil:
		return 0

	case *ebnf.Token:
		if len(m.input)-offset < len(e.String) || m.input[offset:offset+len(e.String)] != e.String {
			return -1
		}
		return len(e.String)

	case *ebnf.Range:
		if offset >= len(m.input) {
			return -1
		}
		ch, size := utf8.DecodeRuneInString(m.input[offset:])
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		if ch < lo || ch > hi {
			return -1
		}
		return size

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := m.match(item, offset+total)
			if n < 0 {
				return -1
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := -1
		for _, alt := range e {
			if n := m.match(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := m.match(e.Body, offset+total)
			if n <= 0 {
				return total
			}
			total += n
		}

	case *ebnf.Option:
		if n := m.match(e.Body, offset); n > 0 {
			return n
		}
		return 0

	case *ebnf.Group:
		return m.match(e.Body, offset)

	case *ebnf.Name:
		return m.matchName(e.String, offset)
	}
	return -1
}

func (m *Matcher) matchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}
	if n, ok := m.memo[key]; ok {
		return n
	}
	// left recursion
	if m.visiting[key] {
		return -1
	}
	prod, ok := m.grammar[name]
	if !ok {
		m.memo[key] = -1
		return -1
	}

	m.visiting[key] = true
	n := m.match(prod.Expr, offset)
	delete(m.visiting, key)

	m.memo[key] = n
	return n
}

// productionFor maps token kinds to the lexical production their lexemes
// derive from.
var productionFor = map[token.Kind]string{
	token.Ident:  "ident",
	token.Number: "number",
	token.String: "string",
	token.RelOp:  "relop",
}

// Mismatch is a token whose lexeme is not derived from the lexical
// production of its kind.
type Mismatch struct {
	Token      token.Token
	Production string
}

// Conform checks every identifier, number, string and relational operator
// token against the grammar. Keywords must appear as literals in the
// grammar.
func Conform(g ebnf.Grammar, tokens []token.Token) []Mismatch {
	m := NewMatcher(g)
	keywords := map[string]bool{}
	for _, kw := range Keywords(g) {
		keywords[kw] = true
	}

	var out []Mismatch
	for _, tok := range tokens {
		if tok.Kind.IsKeyword() {
			if !keywords[tok.Lexeme] {
				out = append(out, Mismatch{Token: tok, Production: "keyword"})
			}
			continue
		}
		name, ok := productionFor[tok.Kind]
		if !ok {
			continue
		}
		if !m.Accepts(name, tok.Lexeme) {
			out = append(out, Mismatch{Token: tok, Production: name})
		}
	}
	return out
}
