package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/pipe01/xmltok/lexer"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Document is a tokenized file. Its tokens alias Contents.
type Document struct {
	Name     string
	Contents []byte
	Tokens   []lexer.Token
}

type Workspace struct {
	rootPath string
	alloc    lexer.Allocator

	mu          sync.Mutex
	parsedFiles map[string]*Document
}

// New returns a workspace rooted at rootPath. A nil alloc means lexer.Heap.
func New(rootPath string, alloc lexer.Allocator) *Workspace {
	if alloc == nil {
		alloc = lexer.Heap
	}

	return &Workspace{
		rootPath:    rootPath,
		alloc:       alloc,
		parsedFiles: make(map[string]*Document),
	}
}

func (w *Workspace) fullPath(relPath string) string {
	if filepath.IsAbs(relPath) {
		return filepath.Clean(relPath)
	}

	return filepath.Join(w.rootPath, relPath)
}

// Load reads and tokenizes relPath, or returns the cached document.
func (w *Workspace) Load(relPath string) (*Document, error) {
	fullPath := w.fullPath(relPath)

	if doc, ok := w.cached(fullPath); ok {
		return doc, nil
	}

	bytes, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return w.loadContents(fullPath, relPath, bytes, false)
}

// LoadWithContents tokenizes contents as if they were the file at relPath,
// replacing any cached version.
func (w *Workspace) LoadWithContents(relPath string, contents []byte) (*Document, error) {
	return w.loadContents(w.fullPath(relPath), relPath, contents, true)
}

func (w *Workspace) loadContents(fullPath, relPath string, contents []byte, replace bool) (*Document, error) {
	l := lexer.New(contents, relPath, w.alloc)
	tks, err := l.Collect()
	if err != nil {
		if replace {
			w.Invalidate(relPath)
		}
		return nil, fmt.Errorf("lex file: %w", err)
	}

	doc := &Document{
		Name:     relPath,
		Contents: contents,
		Tokens:   tks,
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.parsedFiles[fullPath]; ok {
		// Someone else loaded the same file meanwhile, keep theirs.
		if !replace {
			w.release(doc)
			return old, nil
		}
		w.release(old)
	}
	w.parsedFiles[fullPath] = doc

	return doc, nil
}

func (w *Workspace) cached(fullPath string) (*Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	doc, ok := w.parsedFiles[fullPath]
	return doc, ok
}

// Invalidate drops the cached document for relPath, giving its pair storage
// back to the allocator. Documents previously returned must not be used after.
func (w *Workspace) Invalidate(relPath string) {
	fullPath := w.fullPath(relPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if doc, ok := w.parsedFiles[fullPath]; ok {
		w.release(doc)
		delete(w.parsedFiles, fullPath)
	}
}

func (w *Workspace) release(doc *Document) {
	for _, tk := range doc.Tokens {
		lexer.Release(tk, w.alloc)
	}
	doc.Tokens = nil
}

// Paths returns the sorted absolute paths of every cached document.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	paths := maps.Keys(w.parsedFiles)
	w.mu.Unlock()

	slices.Sort(paths)
	return paths
}

// Result is the outcome of loading one file through LoadAll.
type Result struct {
	Path string
	Doc  *Document
	Err  error
}

// LoadAll loads every path using up to jobs goroutines (GOMAXPROCS if
// jobs <= 0). Per-file failures are reported in the results, which keep the
// order of paths; the returned error is only set if ctx was cancelled.
func (w *Workspace) LoadAll(ctx context.Context, paths []string, jobs int) ([]Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			doc, err := w.Load(path)
			results[i] = Result{
				Path: path,
				Doc:  doc,
				Err:  err,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
