package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pipe01/xmltok/internal/workspace"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestWatcherRetokenizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.xml")
	if err := os.WriteFile(path, []byte("<a/>"), 0o644); err != nil {
		t.Fatalf("write: %s", err)
	}

	ws := workspace.New(dir, nil)
	if _, err := ws.Load(path); err != nil {
		t.Fatalf("load: %s", err)
	}

	var out syncBuffer
	w, err := NewWatcher(ws, &out)
	if err != nil {
		t.Fatalf("new watcher: %s", err)
	}
	defer w.Close()

	if err := w.WatchFile(path); err != nil {
		t.Fatalf("watch: %s", err)
	}

	if err := os.WriteFile(path, []byte("<changed k='v'/>"), 0o644); err != nil {
		t.Fatalf("rewrite: %s", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "changed") {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for output, got %q", out.String())
		}
		time.Sleep(20 * time.Millisecond)
	}
}
