// Package lsp serves minirs diagnostics over the Language Server Protocol.
package lsp

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

const lsName = "minirs"

var log = commonlog.GetLogger("minirs.lsp")

type Options struct {
	// Name is reported to the client as the server name.
	Name    string
	Version string
	// Jobs bounds concurrent analyses during the initial workspace scan.
	Jobs int
	// Watch polls the workspace for changes to files not open in the
	// editor.
	Watch        bool
	PollInterval time.Duration
}

type Server struct {
	opts      Options
	workspace *Workspace
	handler   protocol.Handler
	server    *server.Server
	watcher   *FileWatcher

	mu   sync.Mutex
	open map[string]string // path -> URI
}

func NewServer(opts Options) *Server {
	if opts.Name == "" {
		opts.Name = lsName
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	ls := &Server{
		opts: opts,
		open: make(map[string]string),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, opts.Name, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}
	log.Infof("initialize: root %s", rootDir)

	ls.workspace = NewWorkspace(rootDir, ls.opts.Jobs)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ls.opts.Name,
			Version: &ls.opts.Version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	docs, err := ls.workspace.ScanAll(context.Background())
	if err != nil {
		log.Warningf("scan workspace: %s", err)
	}
	for _, doc := range docs {
		ls.publish(ctx.Notify, doc.Path, doc)
	}

	if ls.opts.Watch {
		notify := ctx.Notify
		ls.watcher = NewFileWatcher(ls.workspace, ls.opts.PollInterval)
		ls.watcher.Skip = ls.isOpen
		ls.watcher.OnChange = func(doc *Document) {
			ls.publish(notify, doc.Path, doc)
		}
		ls.watcher.OnRemove = func(path string) {
			ls.publish(notify, path, nil)
		}
		ls.watcher.Start()
	}
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
	}
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.setOpen(path, params.TextDocument.URI)
	doc := ls.workspace.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publish(ctx.Notify, path, doc)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			doc := ls.workspace.UpdateFile(path, []byte(textChange.Text))
			ls.publish(ctx.Notify, path, doc)
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.publish(ctx.Notify, path, nil)
	ls.setOpen(path, "")
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	var doc *Document
	if params.Text != nil {
		doc = ls.workspace.UpdateFile(path, []byte(*params.Text))
	} else if doc, err = ls.workspace.ScanFile(path); err != nil {
		log.Warningf("rescan %s: %s", path, err)
		return nil
	}
	ls.publish(ctx.Notify, path, doc)
	return nil
}

// publish sends the diagnostics of doc, or clears them when doc is nil.
func (ls *Server) publish(notify glsp.NotifyFunc, path string, doc *Document) {
	if notify == nil {
		return
	}
	diags := Diagnostics(doc)
	log.Debugf("publish %d diagnostics for %s", len(diags), path)
	notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         ls.uriFor(path),
		Diagnostics: diags,
	})
}

func (ls *Server) setOpen(path, uri string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if uri == "" {
		delete(ls.open, path)
		return
	}
	ls.open[path] = uri
}

func (ls *Server) isOpen(path string) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	_, ok := ls.open[path]
	return ok
}

func (ls *Server) uriFor(path string) protocol.DocumentUri {
	ls.mu.Lock()
	uri, ok := ls.open[path]
	ls.mu.Unlock()
	if ok {
		return uri
	}
	return pathToURI(path)
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
