package lsp

import (
	"os"
	"sync"
	"time"
)

// FileWatcher polls the workspace for added, changed and removed source
// files.
type FileWatcher struct {
	workspace    *Workspace
	stopCh       chan struct{}
	stopOnce     sync.Once
	pollInterval time.Duration
	modTimes     map[string]time.Time

	// OnChange is called after a file was re-analysed.
	OnChange func(*Document)
	// OnRemove is called after a file disappeared.
	OnRemove func(path string)
	// Skip reports paths the watcher must leave alone, such as documents
	// open in the editor.
	Skip func(path string) bool
}

func NewFileWatcher(w *Workspace, interval time.Duration) *FileWatcher {
	return &FileWatcher{
		workspace:    w,
		stopCh:       make(chan struct{}),
		pollInterval: interval,
		modTimes:     make(map[string]time.Time),
	}
}

func (fw *FileWatcher) Start() {
	go fw.run()
}

func (fw *FileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.stopCh)
	})
}

func (fw *FileWatcher) run() {
	ticker := time.NewTicker(fw.pollInterval)
	defer ticker.Stop()

	fw.Scan()

	for {
		select {
		case <-fw.stopCh:
			return
		case <-ticker.C:
			fw.Scan()
		}
	}
}

// Scan runs one polling pass.
func (fw *FileWatcher) Scan() {
	paths, err := fw.workspace.SourcePaths()
	if err != nil {
		log.Warningf("watch %s: %s", fw.workspace.RootDir(), err)
		return
	}

	current := make(map[string]bool, len(paths))
	for _, path := range paths {
		current[path] = true
		if fw.Skip != nil && fw.Skip(path) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		lastMod, known := fw.modTimes[path]
		if known && !info.ModTime().After(lastMod) {
			continue
		}
		fw.modTimes[path] = info.ModTime()
		doc, err := fw.workspace.ScanFile(path)
		if err != nil {
			log.Warningf("rescan %s: %s", path, err)
			continue
		}
		if fw.OnChange != nil {
			fw.OnChange(doc)
		}
	}

	for path := range fw.modTimes {
		if current[path] {
			continue
		}
		delete(fw.modTimes, path)
		fw.workspace.RemoveFile(path)
		if fw.OnRemove != nil {
			fw.OnRemove(path)
		}
	}
}
