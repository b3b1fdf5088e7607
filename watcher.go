package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pipe01/xmltok/internal/printer"
	"github.com/pipe01/xmltok/internal/workspace"
)

type Watcher struct {
	watchingDirs, watchingFiles map[string]struct{}

	ws  *workspace.Workspace
	out io.Writer

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewWatcher(ws *workspace.Workspace, out io.Writer) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watchingDirs:  make(map[string]struct{}),
		watchingFiles: make(map[string]struct{}),
		ws:            ws,
		out:           out,
		watcher:       watcher,
		done:          make(chan struct{}),
	}
	go w.eventLoop()

	return w, nil
}

func (w *Watcher) WatchFile(path string) error {
	fullPath, _ := filepath.Abs(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.watchingFiles[fullPath] = struct{}{}

	dir := filepath.Dir(fullPath)
	if _, ok := w.watchingDirs[dir]; ok {
		return nil
	}

	err := w.watcher.Add(dir)
	if err != nil {
		return err
	}

	w.watchingDirs[dir] = struct{}{}

	return nil
}

func (w *Watcher) isWatched(fullPath string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.watchingFiles[fullPath]
	return ok
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) eventLoop() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			fname, _ := filepath.Abs(event.Name)

			if !w.isWatched(fname) {
				continue
			}

			w.fileModified(fname)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watch error: %s", err)
		}
	}
}

func (w *Watcher) fileModified(fullPath string) {
	log.Infof("file %q modified, tokenizing...", filepath.Base(fullPath))

	w.ws.Invalidate(fullPath)

	doc, err := w.ws.Load(fullPath)
	if err != nil {
		log.Errorf("failed to tokenize file %q: %s", fullPath, err)
		return
	}

	if err := printer.Print(w.out, doc, outOpts); err != nil {
		log.Errorf("failed to print file %q: %s", fullPath, err)
	}
}
