package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType classifies a detected file change by what the editor should do
// about it.
type ChangeType int

const (
	// ChangeScript is a source script (.js/.ts): rebuild before reloading
	// when the project has a build step.
	ChangeScript ChangeType = iota

	// ChangeScene is a scene or prefab definition: reload directly.
	ChangeScene

	// ChangeAsset is any other project file (textures, audio, data).
	ChangeAsset
)

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch.
	Paths []string

	// Ignore patterns to skip, added to DefaultIgnore. A pattern without
	// glob characters matches a path segment exactly; otherwise it is
	// matched against the base name.
	Ignore []string

	// Debounce is the poll interval.
	Debounce time.Duration
}

// DefaultIgnore contains patterns every project wants skipped. dist is the
// build output: watching it would retrigger a reload right after every
// build.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"library",
	"temp",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher monitors project files for changes by polling modification times.
// Polling behaves identically on every platform, and game projects are small
// enough that the scan cost is negligible at the default interval.
type Watcher struct {
	config      WatcherConfig
	mu          sync.Mutex
	onChange    func(Change)
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	config.Ignore = append(append([]string{}, DefaultIgnore...), config.Ignore...)

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching. It blocks until the context is cancelled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scanInitial records current modification times so the first poll does not
// report every existing file as changed.
func (w *Watcher) scanInitial() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.shouldIgnore(p) {
				w.timestamps[p] = info.ModTime()
			}
			return nil
		})
	}

	w.initialized = true
}

// checkForChanges scans for added, modified and deleted files.
func (w *Watcher) checkForChanges() {
	w.mu.Lock()
	callback := w.onChange
	initialized := w.initialized
	w.mu.Unlock()

	if callback == nil {
		return
	}

	var changes []Change

	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.shouldIgnore(p) {
				return nil
			}

			w.mu.Lock()
			lastMod, exists := w.timestamps[p]
			modTime := info.ModTime()
			if !exists || modTime.After(lastMod) {
				w.timestamps[p] = modTime
			}
			w.mu.Unlock()

			if !exists || modTime.After(lastMod) {
				if exists || initialized {
					changes = append(changes, Change{Path: p, Type: classifyChange(p)})
				}
			}
			return nil
		})
	}

	w.mu.Lock()
	for p := range w.timestamps {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	w.mu.Unlock()

	for _, change := range changes {
		callback(change)
	}
}

// shouldIgnore checks a path against the ignore patterns.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		if pattern == "" {
			continue
		}
		if strings.ContainsAny(pattern, "*?[") {
			if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}
		if name == pattern || pathHasSegment(normalized, pattern) {
			return true
		}
	}
	return false
}

// pathHasSegment reports whether any slash-delimited segment of path equals
// segment. A plain substring check would ignore "attempt" because of "tmp".
func pathHasSegment(path, segment string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// classifyChange determines the change type from the file extension.
func classifyChange(path string) ChangeType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".ts", ".mjs":
		return ChangeScript
	case ".scene", ".prefab":
		return ChangeScene
	default:
		return ChangeAsset
	}
}
