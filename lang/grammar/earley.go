package grammar

import (
	"fmt"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/minirs/lang/token"
)

// symbol is one element on the right-hand side of a desugared rule. A
// terminal either matches a literal lexeme or a token whose kind derives
// from the named lexical production.
type symbol struct {
	name     string
	literal  string
	terminal bool
}

func (s symbol) String() string {
	if s.literal != "" {
		return fmt.Sprintf("%q", s.literal)
	}
	return s.name
}

// item is an Earley item: a rule, a dot position in it and the chart
// position where recognition of the rule started.
type item struct {
	lhs    string
	rule   int
	dot    int
	origin int
}

// Recognizer decides whether a token stream derives from the syntactic
// productions of a grammar. Options, repetitions and groups are rewritten
// into plain rules, and recognition runs an Earley chart over the tokens,
// so any context-free grammar is accepted, ambiguous ones included.
type Recognizer struct {
	start    string
	rules    map[string][][]symbol
	nullable map[string]bool
	fresh    int
}

// RejectError reports the first token at which no derivation can continue.
type RejectError struct {
	Token token.Token
	// Expected lists the terminals that would have been accepted.
	Expected []string
}

func (e *RejectError) Error() string {
	if e.Token.Kind == token.EOF {
		return fmt.Sprintf("%s: unexpected end of input (expected one of %v)", e.Token.Span.Start, e.Expected)
	}
	return fmt.Sprintf("%s: %q not derivable here (expected one of %v)", e.Token.Span.Start, e.Token.Lexeme, e.Expected)
}

// NewRecognizer rewrites the syntactic productions reachable from start.
func NewRecognizer(g ebnf.Grammar, start string) (*Recognizer, error) {
	if _, ok := g[start]; !ok {
		return nil, fmt.Errorf("no production %s", start)
	}
	r := &Recognizer{
		start: start,
		rules: make(map[string][][]symbol),
	}
	for name, prod := range g {
		if IsLexical(name) {
			continue
		}
		if err := r.define(name, prod.Expr); err != nil {
			return nil, fmt.Errorf("production %s: %w", name, err)
		}
	}
	r.computeNullable()
	return r, nil
}

func (r *Recognizer) define(name string, expr ebnf.Expression) error {
	alts, ok := expr.(ebnf.Alternative)
	if !ok {
		alts = ebnf.Alternative{expr}
	}
	for _, alt := range alts {
		rhs, err := r.sequence(alt)
		if err != nil {
			return err
		}
		r.rules[name] = append(r.rules[name], rhs)
	}
	return nil
}

func (r *Recognizer) sequence(expr ebnf.Expression) ([]symbol, error) {
	seq, ok := expr.(ebnf.Sequence)
	if !ok {
		seq = ebnf.Sequence{expr}
	}
	var out []symbol
	for _, e := range seq {
		syms, err := r.element(e)
		if err != nil {
			return nil, err
		}
		out = append(out, syms...)
	}
	return out, nil
}

func (r *Recognizer) element(expr ebnf.Expression) ([]symbol, error) {
	switch e := expr.(type) {
	case nil:
		return nil, nil
	case *ebnf.Token:
		return []symbol{{literal: e.String, terminal: true}}, nil
	case *ebnf.Name:
		return []symbol{{name: e.String, terminal: IsLexical(e.String)}}, nil
	case ebnf.Sequence:
		return r.sequence(e)
	case *ebnf.Group:
		if _, ok := e.Body.(ebnf.Alternative); !ok {
			return r.sequence(e.Body)
		}
		name := r.newName()
		return []symbol{{name: name}}, r.define(name, e.Body)
	case ebnf.Alternative:
		name := r.newName()
		return []symbol{{name: name}}, r.define(name, e)
	case *ebnf.Option:
		// N = ε | body .
		name := r.newName()
		r.rules[name] = [][]symbol{nil}
		return []symbol{{name: name}}, r.define(name, e.Body)
	case *ebnf.Repetition:
		// N = ε | body N .
		name := r.newName()
		r.rules[name] = [][]symbol{nil}
		alts, ok := e.Body.(ebnf.Alternative)
		if !ok {
			alts = ebnf.Alternative{e.Body}
		}
		for _, alt := range alts {
			rhs, err := r.sequence(alt)
			if err != nil {
				return nil, err
			}
			r.rules[name] = append(r.rules[name], append(rhs, symbol{name: name}))
		}
		return []symbol{{name: name}}, nil
	case *ebnf.Range:
		return nil, fmt.Errorf("character range %s…%s outside a lexical production", e.Begin.String, e.End.String)
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}

// newName returns a rule name no EBNF identifier can collide with.
func (r *Recognizer) newName() string {
	r.fresh++
	return fmt.Sprintf("#%d", r.fresh)
}

func (r *Recognizer) computeNullable() {
	r.nullable = make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for name, alts := range r.rules {
			if r.nullable[name] {
				continue
			}
			for _, rhs := range alts {
				if r.allNullable(rhs) {
					r.nullable[name] = true
					changed = true
					break
				}
			}
		}
	}
}

func (r *Recognizer) allNullable(rhs []symbol) bool {
	for _, s := range rhs {
		if s.terminal || !r.nullable[s.name] {
			return false
		}
	}
	return true
}

// Recognize returns nil when tokens derive from the start production, and
// a *RejectError naming the first offending token otherwise. Comment
// tokens are ignored; an EOF token, if present, ends the input.
func (r *Recognizer) Recognize(tokens []token.Token) error {
	var input []token.Token
	eof := token.Token{Kind: token.EOF}
	for _, tok := range tokens {
		if tok.Kind == token.EOF {
			eof = tok
			break
		}
		if tok.Kind == token.LineComment || tok.Kind == token.BlockComment {
			continue
		}
		input = append(input, tok)
	}
	if eof.Span.Start.Line == 0 && len(input) > 0 {
		eof.Span = token.Span{Start: input[len(input)-1].Span.End, End: input[len(input)-1].Span.End}
	}

	n := len(input)
	sets := make([][]item, n+1)
	seen := make([]map[item]bool, n+1)
	for i := range seen {
		seen[i] = make(map[item]bool)
	}
	add := func(i int, it item) {
		if !seen[i][it] {
			seen[i][it] = true
			sets[i] = append(sets[i], it)
		}
	}

	for k := range r.rules[r.start] {
		add(0, item{lhs: r.start, rule: k})
	}

	for i := 0; i <= n; i++ {
		for j := 0; j < len(sets[i]); j++ {
			it := sets[i][j]
			rhs := r.rules[it.lhs][it.rule]

			if it.dot == len(rhs) {
				for _, parent := range sets[it.origin] {
					prhs := r.rules[parent.lhs][parent.rule]
					if parent.dot < len(prhs) && !prhs[parent.dot].terminal && prhs[parent.dot].name == it.lhs {
						parent.dot++
						add(i, parent)
					}
				}
				continue
			}

			next := rhs[it.dot]
			if next.terminal {
				if i < n && matches(next, input[i]) {
					it.dot++
					add(i+1, it)
				}
				continue
			}
			for k := range r.rules[next.name] {
				add(i, item{lhs: next.name, rule: k, origin: i})
			}
			// a nullable symbol may be skipped right away
			if r.nullable[next.name] {
				it.dot++
				add(i, it)
			}
		}

		if i < n && len(sets[i+1]) == 0 {
			return &RejectError{Token: input[i], Expected: r.expected(sets[i])}
		}
	}

	for _, it := range sets[n] {
		if it.lhs == r.start && it.origin == 0 && it.dot == len(r.rules[it.lhs][it.rule]) {
			return nil
		}
	}
	return &RejectError{Token: eof, Expected: r.expected(sets[n])}
}

// expected lists the distinct terminals scanned next by the items of set.
func (r *Recognizer) expected(set []item) []string {
	var out []string
	known := map[string]bool{}
	for _, it := range set {
		rhs := r.rules[it.lhs][it.rule]
		if it.dot == len(rhs) || !rhs[it.dot].terminal {
			continue
		}
		s := rhs[it.dot].String()
		if !known[s] {
			known[s] = true
			out = append(out, s)
		}
	}
	return out
}

func matches(s symbol, tok token.Token) bool {
	name, lexical := productionFor[tok.Kind]
	if s.literal != "" {
		return !lexical && tok.Lexeme == s.literal
	}
	return lexical && name == s.name
}
