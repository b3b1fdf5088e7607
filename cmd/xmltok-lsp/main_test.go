package main

import (
	"errors"
	"testing"

	"github.com/pipe01/xmltok/lexer"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDiagnosticsForLexerError(t *testing.T) {
	contents := []byte("<a>\n  <b k=v>")

	_, err := lexer.New(contents, "doc.xml", nil).Collect()
	if err == nil {
		t.Fatalf("expected a lexing error")
	}

	diag := diagnosticsFor(contents, err)
	if len(diag) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diag))
	}

	d := diag[0]
	want := protocol.Position{Line: 1, Character: 7}
	if d.Range.Start != want || d.Range.End != want {
		t.Fatalf("expected range at %v, got %v", want, d.Range)
	}
	if d.Message != lexer.ErrKeyWithNoValue.Error() {
		t.Fatalf("unexpected message %q", d.Message)
	}
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Fatalf("expected error severity")
	}
}

func TestDiagnosticsForOtherErrors(t *testing.T) {
	if diag := diagnosticsFor(nil, nil); len(diag) != 0 {
		t.Fatalf("expected no diagnostics, got %d", len(diag))
	}

	diag := diagnosticsFor(nil, errors.New("boom"))
	if len(diag) != 1 || diag[0].Message != "boom" {
		t.Fatalf("unexpected diagnostics %+v", diag)
	}
}

func TestLoadDocument(t *testing.T) {
	uri := "file:///tmp/xmltok-lsp-test.xml"
	setDocument(uri, "<a k='v'/>")

	doc, _, err := loadDocument(uri)
	if err != nil {
		t.Fatalf("load document: %s", err)
	}
	if len(doc.Tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(doc.Tokens))
	}

	if _, _, err := loadDocument("untitled:1"); err == nil {
		t.Fatalf("expected an error for a non-file uri")
	}
}
