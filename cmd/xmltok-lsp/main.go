package main

import (
	"errors"
	"fmt"
	"net/url"
	"sync"

	"fortio.org/safecast"
	"github.com/pipe01/xmltok/internal/semantic"
	"github.com/pipe01/xmltok/internal/workspace"
	"github.com/pipe01/xmltok/lexer"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "xmltok"

var version string = "0.1.0"
var handler protocol.Handler

var (
	log = commonlog.GetLogger("xmltok.lsp")

	// Documents are keyed by absolute path, the tokens stay valid until the
	// next change of the same document.
	ws = workspace.New("/", lexer.NewPool())

	documentsMu sync.Mutex
	documents   = map[string]string{}
)

func main() {
	// This increases logging verbosity (optional)
	commonlog.Configure(1, nil)

	protocol.SetTraceValue(protocol.TraceValueMessage)

	handler = protocol.Handler{
		Initialize:  initialize,
		Initialized: initialized,
		Shutdown:    shutdown,
		SetTrace:    setTrace,
		TextDocumentDidOpen: func(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
			setDocument(params.TextDocument.URI, params.TextDocument.Text)

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidChange: func(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
			content, ok := getDocument(params.TextDocument.URI)
			if !ok {
				return nil
			}

			for _, change := range params.ContentChanges {
				switch change := change.(type) {
				case protocol.TextDocumentContentChangeEventWhole:
					content = change.Text

				case protocol.TextDocumentContentChangeEvent:
					startIndex, endIndex := change.Range.IndexesIn(content)
					content = content[:startIndex] + change.Text + content[endIndex:]
				}
			}
			setDocument(params.TextDocument.URI, content)

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidClose: func(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
			documentsMu.Lock()
			delete(documents, params.TextDocument.URI)
			documentsMu.Unlock()

			if path, err := documentPath(params.TextDocument.URI); err == nil {
				ws.Invalidate(path)
			}
			return nil
		},
		TextDocumentSemanticTokensFull: semanticTokensFull,
	}

	server := server.NewServer(&handler, lsName, false)

	server.RunStdio()
}

func setDocument(uri, content string) {
	documentsMu.Lock()
	defer documentsMu.Unlock()

	documents[uri] = content
}

func getDocument(uri string) (string, bool) {
	documentsMu.Lock()
	defer documentsMu.Unlock()

	content, ok := documents[uri]
	return content, ok
}

func documentPath(docURI string) (string, error) {
	url, err := url.Parse(docURI)
	if err != nil {
		return "", fmt.Errorf("parse document uri: %w", err)
	}
	if url.Scheme != "file" {
		return "", fmt.Errorf("invalid document uri scheme %q", url.Scheme)
	}

	return url.Path, nil
}

// loadDocument tokenizes the current contents of docURI.
func loadDocument(docURI string) (*workspace.Document, []byte, error) {
	path, err := documentPath(docURI)
	if err != nil {
		return nil, nil, err
	}

	contents, ok := getDocument(docURI)
	if !ok {
		return nil, nil, fmt.Errorf("document %q not found", docURI)
	}

	b := []byte(contents)
	doc, err := ws.LoadWithContents(path, b)
	return doc, b, err
}

func handleDocument(context *glsp.Context, docURI string) error {
	_, contents, err := loadDocument(docURI)
	if contents == nil && err != nil {
		return err
	}

	diag := diagnosticsFor(contents, err)
	if err != nil {
		log.Debugf("%s: %s", docURI, err)
	}

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diag,
	})

	return nil
}

// diagnosticsFor turns a tokenizing error into diagnostics, positioned when the
// error carries an offset into contents.
func diagnosticsFor(contents []byte, err error) []protocol.Diagnostic {
	diag := []protocol.Diagnostic{}
	if err == nil {
		return diag
	}

	var lerr *lexer.LexerError
	if errors.As(err, &lerr) {
		p := pos(lexer.NewLineIndex(contents), lerr.Offset)

		diag = append(diag, protocol.Diagnostic{
			Range: protocol.Range{
				Start: p,
				End:   p,
			},
			Severity: ptr(protocol.DiagnosticSeverityError),
			Source:   ptr(lsName),
			Message:  lerr.Unwrap().Error(),
		})
	} else {
		diag = append(diag, protocol.Diagnostic{
			Severity: ptr(protocol.DiagnosticSeverityError),
			Source:   ptr(lsName),
			Message:  err.Error(),
		})
	}

	return diag
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := handler.CreateServerCapabilities()
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     semantic.Legend,
			TokenModifiers: []string{},
		},
		Range: false,
		Full:  true,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func semanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc, _, err := loadDocument(params.TextDocument.URI)
	if err != nil {
		// Broken documents are reported through diagnostics, keep highlighting
		// quiet until they tokenize again.
		var lerr *lexer.LexerError
		if errors.As(err, &lerr) {
			return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
		}
		return nil, err
	}

	data, err := semantic.Encode(doc.Contents, doc.Tokens)
	if err != nil {
		return nil, fmt.Errorf("encode semantic tokens: %w", err)
	}

	return &protocol.SemanticTokens{
		Data: data,
	}, nil
}

func ptr[T any](v T) *T {
	return &v
}

func pos(idx *lexer.LineIndex, offset int) protocol.Position {
	line, _ := idx.Line(offset)

	l, err := safecast.Conv[uint32](line)
	if err != nil {
		l = 0
	}
	c, err := safecast.Conv[uint32](idx.UTF16Column(offset))
	if err != nil {
		c = 0
	}

	return protocol.Position{
		Line:      l,
		Character: c,
	}
}
