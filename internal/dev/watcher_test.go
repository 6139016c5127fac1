package dev

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func collectChanges(t *testing.T, w *Watcher) (<-chan Change, context.CancelFunc) {
	t.Helper()
	ch := make(chan Change, 64)
	w.OnChange(func(c Change) {
		select {
		case ch <- c:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})

	// Let the initial scan finish before the caller mutates files.
	time.Sleep(100 * time.Millisecond)
	return ch, cancel
}

func expectChange(t *testing.T, ch <-chan Change, path string) Change {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-ch:
			if c.Path == path {
				return c
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", path)
		}
	}
}

func expectNoChange(t *testing.T, ch <-chan Change, window time.Duration) {
	t.Helper()
	select {
	case c := <-ch:
		t.Fatalf("unexpected change reported: %s", c.Path)
	case <-time.After(window):
	}
}

func TestWatcher_DetectsModifiedFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "game.js")
	if err := os.WriteFile(target, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Debounce: 20 * time.Millisecond})
	ch, _ := collectChanges(t, w)

	// Modification time resolution can be coarse; write with a later time.
	if err := os.WriteFile(target, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(target, later, later); err != nil {
		t.Fatal(err)
	}

	c := expectChange(t, ch, target)
	if c.Type != ChangeScript {
		t.Errorf("change type = %v, want ChangeScript", c.Type)
	}
}

func TestWatcher_DetectsNewFile(t *testing.T) {
	dir := t.TempDir()

	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Debounce: 20 * time.Millisecond})
	ch, _ := collectChanges(t, w)

	target := filepath.Join(dir, "level1.scene")
	if err := os.WriteFile(target, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := expectChange(t, ch, target)
	if c.Type != ChangeScene {
		t.Errorf("change type = %v, want ChangeScene", c.Type)
	}
}

func TestWatcher_DetectsDeletedFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sprite.png")
	if err := os.WriteFile(target, []byte("img"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Debounce: 20 * time.Millisecond})
	ch, _ := collectChanges(t, w)

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}

	c := expectChange(t, ch, target)
	if c.Type != ChangeAsset {
		t.Errorf("change type = %v, want ChangeAsset", c.Type)
	}
}

func TestWatcher_IgnoresDefaultDirs(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"node_modules", "dist", ".git"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Debounce: 20 * time.Millisecond})
	ch, _ := collectChanges(t, w)

	for _, sub := range []string{"node_modules", "dist", ".git"} {
		if err := os.WriteFile(filepath.Join(dir, sub, "x.js"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	expectNoChange(t, ch, 300*time.Millisecond)
}

func TestWatcher_IgnoresCustomPatterns(t *testing.T) {
	dir := t.TempDir()

	w := NewWatcher(WatcherConfig{
		Paths:    []string{dir},
		Ignore:   []string{"*.log", "cache"},
		Debounce: 20 * time.Millisecond,
	})
	ch, _ := collectChanges(t, w)

	if err := os.MkdirAll(filepath.Join(dir, "cache"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "debug.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cache", "a.json"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	expectNoChange(t, ch, 300*time.Millisecond)

	// A non-matching file still reports.
	target := filepath.Join(dir, "real.json")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	expectChange(t, ch, target)
}

func TestWatcher_StopEndsStart(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Debounce: 20 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)
	if !w.IsRunning() {
		t.Fatal("IsRunning() = false while started")
	}
	w.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned %v after Stop, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	if w.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"src/player.js", ChangeScript},
		{"src/player.ts", ChangeScript},
		{"src/util.mjs", ChangeScript},
		{"scenes/main.scene", ChangeScene},
		{"prefabs/enemy.prefab", ChangeScene},
		{"assets/hero.png", ChangeAsset},
		{"sounds/jump.wav", ChangeAsset},
		{"README.md", ChangeAsset},
	}
	for _, tt := range tests {
		if got := classifyChange(tt.path); got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestShouldIgnore_SegmentVsSubstring(t *testing.T) {
	w := NewWatcher(WatcherConfig{Paths: []string{"."}})

	if !w.shouldIgnore("proj/node_modules/pkg/index.js") {
		t.Error("node_modules subtree not ignored")
	}
	if !w.shouldIgnore("proj/temp/scratch.js") {
		t.Error("temp segment not ignored")
	}
	// "attempt" contains "temp" but is not the segment.
	if w.shouldIgnore("proj/attempt/run.js") {
		t.Error("substring match ignored a legitimate path")
	}
	if !w.shouldIgnore("proj/editor.swp") {
		t.Error("*.swp glob not applied")
	}
}
