// Package ui serves a browser playground and a small JSON API for lexing
// and parsing minirs source.
package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/minirs/format"
	"github.com/dhamidi/minirs/frontend"
	"github.com/dhamidi/minirs/lang/ast"
	"github.com/dhamidi/minirs/lang/lexer"
	"github.com/dhamidi/minirs/lang/token"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("minirs.ui")

// MaxSourceBytes bounds the size of a submitted program.
const MaxSourceBytes = 1 << 20

const playgroundFile = "playground.mrs"

const example = `fn main() {
    let mut n: i32;
    read(n);
    while n > 0 {
        print!(n);
        n = n - 1;
    }
}
`

type Options struct {
	// DevDir, when set, is searched for templates/ and static/ before the
	// embedded copies, and templates are re-read on every request.
	DevDir string
	// Timeout bounds the handling of a single request.
	Timeout time.Duration
}

type Server struct {
	opts       Options
	staticFS   fs.FS
	templateFS fs.FS
	templates  *template.Template
	router     chi.Router
}

func NewServer(opts Options) (*Server, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	staticFS := mustSub(embeddedFS, "static")
	templateFS := mustSub(embeddedFS, "templates")
	if opts.DevDir != "" {
		staticFS = overlayFS(opts.DevDir+"/static", staticFS)
		templateFS = overlayFS(opts.DevDir+"/templates", templateFS)
	}

	tmpl, err := parseTemplates(templateFS)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:       opts,
		staticFS:   staticFS,
		templateFS: templateFS,
		templates:  tmpl,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(opts.Timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Get("/", s.handleIndex)
	r.Post("/analyze", s.handleAnalyze)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Post("/tokens", s.handleTokens)
		r.Post("/parse", s.handleParse)
	})

	s.router = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

var funcMap = template.FuncMap{
	"isError": func(tok token.Token) bool {
		return tok.Kind == token.Error
	},
	"lines": func(s string) int {
		return strings.Count(s, "\n") + 1
	},
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl := s.templates
	if s.opts.DevDir != "" {
		var err error
		if tmpl, err = parseTemplates(s.templateFS); err != nil {
			http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

// pageData is what index.html renders.
type pageData struct {
	Source      string
	Comments    bool
	Analyzed    bool
	Tokens      []token.Token
	Tree        string
	Diagnostics []frontend.Diagnostic
	ExitCode    int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", pageData{Source: example})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxSourceBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data: "+err.Error(), errorStatus(err))
		return
	}

	data := pageData{
		Source:   r.FormValue("source"),
		Comments: r.FormValue("comments") != "",
		Analyzed: true,
	}
	res := analyze(data.Source, data.Comments)
	data.Tokens = res.Tokens
	data.Diagnostics = res.Diagnostics()
	data.ExitCode = res.ExitCode()
	if res.Program != nil {
		var sb strings.Builder
		if err := ast.Fprint(&sb, res.Program, true); err == nil {
			data.Tree = sb.String()
		}
	}

	s.render(w, "index.html", data)
}

// sourceRequest is the body of the JSON API. A plain-text body is taken as
// the source itself.
type sourceRequest struct {
	Source   string `json:"source"`
	Comments bool   `json:"comments"`
}

func readSourceRequest(w http.ResponseWriter, r *http.Request) (sourceRequest, bool) {
	var req sourceRequest
	r.Body = http.MaxBytesReader(w, r.Body, MaxSourceBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("decode request: %w", err))
			return req, false
		}
		return req, true
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, fmt.Errorf("read request: %w", err))
		return req, false
	}
	req.Source = string(body)
	return req, true
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	req, ok := readSourceRequest(w, r)
	if !ok {
		return
	}
	opts := []lexer.Option{lexer.WithFile(playgroundFile)}
	if req.Comments {
		opts = append(opts, lexer.WithComments())
	}
	tokens := lexer.Tokenize([]byte(req.Source), opts...)

	code := frontend.ExitOK
	for _, tok := range tokens {
		if tok.Kind == token.Error {
			code = frontend.ExitLexical
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Minirs-Exit-Code", strconv.Itoa(code))
	if err := format.NewJSONEncoder(w).Encode(tokens); err != nil {
		log.Errorf("encode tokens: %s", err)
	}
}

type parseResponse struct {
	ExitCode    int                   `json:"exitCode"`
	Diagnostics []frontend.Diagnostic `json:"diagnostics"`
	AST         json.RawMessage       `json:"ast"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := readSourceRequest(w, r)
	if !ok {
		return
	}
	res := analyze(req.Source, false)

	resp := parseResponse{
		ExitCode:    res.ExitCode(),
		Diagnostics: res.Diagnostics(),
		AST:         json.RawMessage("null"),
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []frontend.Diagnostic{}
	}
	if res.Program != nil {
		data, err := format.NewASTJSONEncoder(nil).MarshalText(res.Program)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.AST = data
	}
	writeJSON(w, http.StatusOK, resp)
}

func analyze(src string, comments bool) *frontend.Result {
	opts := []frontend.Option{frontend.WithFile(playgroundFile)}
	if comments {
		opts = append(opts, frontend.WithComments())
	}
	return frontend.Analyze([]byte(src), opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %s", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
}

// errorStatus maps a request body error to 413 when the body exceeded
// MaxSourceBytes and to 400 otherwise.
func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlayFS serves files from primaryPath on disk and falls back to
// secondary.
type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)
	for _, fsys := range []fs.FS{o.secondary, o.primary} {
		list, err := fs.ReadDir(fsys, name)
		if err != nil {
			continue
		}
		for _, e := range list {
			entries[e.Name()] = e
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	slices.SortFunc(result, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return result, nil
}
