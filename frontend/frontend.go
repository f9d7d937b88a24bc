// Package frontend runs the lexer and parser over a source file and turns
// their findings into diagnostics.
package frontend

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/minirs/lang/ast"
	"github.com/dhamidi/minirs/lang/lexer"
	"github.com/dhamidi/minirs/lang/parser"
	"github.com/dhamidi/minirs/lang/token"
)

var log = commonlog.GetLogger("minirs.frontend")

// Exit codes of an analysis.
const (
	ExitOK      = 0
	ExitLexical = 1
	ExitSyntax  = 2
)

type options struct {
	file         string
	keepComments bool
	sync         *parser.SyncSet
	jobs         int
}

type Option func(*options)

// WithFile labels positions and diagnostics with a file name.
func WithFile(name string) Option {
	return func(o *options) {
		o.file = name
	}
}

// WithComments keeps comment tokens in Result.Tokens. The parser never
// sees them.
func WithComments() Option {
	return func(o *options) {
		o.keepComments = true
	}
}

func WithSyncSet(s parser.SyncSet) Option {
	return func(o *options) {
		o.sync = &s
	}
}

// WithJobs bounds the number of concurrent analyses in AnalyzeAll. Values
// below one mean one job per CPU.
func WithJobs(n int) Option {
	return func(o *options) {
		o.jobs = n
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Result holds everything one analysis produced.
type Result struct {
	File         string
	Tokens       []token.Token
	LexErrors    []token.Token
	Program      *ast.Program
	SyntaxErrors parser.ErrorList
	// Parsed is false when lexical errors stopped the analysis before
	// parsing.
	Parsed bool
}

// Analyze lexes src and, when it is free of lexical errors, parses it.
func Analyze(src []byte, opts ...Option) *Result {
	return analyze(src, buildOptions(opts))
}

func analyze(src []byte, o options) *Result {
	var lexOpts []lexer.Option
	if o.file != "" {
		lexOpts = append(lexOpts, lexer.WithFile(o.file))
	}
	if o.keepComments {
		lexOpts = append(lexOpts, lexer.WithComments())
	}

	res := &Result{File: o.file}
	res.Tokens = lexer.Tokenize(src, lexOpts...)
	for _, tok := range res.Tokens {
		if tok.Kind == token.Error {
			res.LexErrors = append(res.LexErrors, tok)
		}
	}
	if len(res.LexErrors) > 0 {
		log.Debugf("%s: %d lexical errors, skipping parse", displayName(o.file), len(res.LexErrors))
		return res
	}

	var parseOpts []parser.Option
	if o.sync != nil {
		parseOpts = append(parseOpts, parser.WithSyncSet(*o.sync))
	}
	res.Program, res.SyntaxErrors = parser.Parse(res.Tokens, parseOpts...)
	res.Parsed = true
	log.Debugf("%s: %d tokens, %d syntax errors", displayName(o.file), len(res.Tokens), len(res.SyntaxErrors))
	return res
}

// OK reports whether the source is free of lexical and syntax errors.
func (r *Result) OK() bool {
	return len(r.LexErrors) == 0 && len(r.SyntaxErrors) == 0 && r.Program != nil
}

// ExitCode maps the result to ExitOK, ExitLexical or ExitSyntax.
func (r *Result) ExitCode() int {
	switch {
	case len(r.LexErrors) > 0:
		return ExitLexical
	case len(r.SyntaxErrors) > 0 || r.Program == nil:
		return ExitSyntax
	}
	return ExitOK
}

func displayName(file string) string {
	if file == "" {
		return "<input>"
	}
	return file
}
