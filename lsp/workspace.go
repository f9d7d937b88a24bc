package lsp

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dhamidi/minirs/frontend"
)

// Extension is the file extension of minirs sources.
const Extension = ".mrs"

// Workspace holds the latest analysis of every known source file.
type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*Document
	jobs    int
}

type Document struct {
	Path    string
	Content []byte
	Result  *frontend.Result
}

func NewWorkspace(rootDir string, jobs int) *Workspace {
	return &Workspace{
		rootDir: rootDir,
		files:   make(map[string]*Document),
		jobs:    jobs,
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

// SourcePaths lists the source files below the root directory, skipping
// hidden directories.
func (w *Workspace) SourcePaths() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Extension {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// ScanAll analyses every source file below the root directory and returns
// the resulting documents.
func (w *Workspace) ScanAll(ctx context.Context) ([]*Document, error) {
	paths, err := w.SourcePaths()
	if err != nil {
		return nil, err
	}
	sources, err := frontend.ReadSources(paths)
	if err != nil {
		return nil, err
	}
	results, err := frontend.AnalyzeAll(ctx, sources, frontend.WithJobs(w.jobs))
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	docs := make([]*Document, len(sources))
	for i, src := range sources {
		docs[i] = &Document{Path: src.Name, Content: src.Content, Result: results[i]}
		w.files[src.Name] = docs[i]
	}
	return docs, nil
}

func (w *Workspace) ScanFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return w.UpdateFile(path, content), nil
}

// UpdateFile re-analyses path with new content.
func (w *Workspace) UpdateFile(path string, content []byte) *Document {
	doc := &Document{
		Path:    path,
		Content: content,
		Result:  frontend.Analyze(content, frontend.WithFile(path)),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = doc
	return doc
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
}

func (w *Workspace) GetFile(path string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Paths returns the paths of all known documents, sorted.
func (w *Workspace) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}
