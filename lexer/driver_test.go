package lexer

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLexerCollect(t *testing.T) {
	l := New([]byte("<doc v='1'>\n  <item/>\n  body\n</doc>\n"), "doc.xml", nil)

	tks, err := l.Collect()
	if err != nil {
		t.Fatalf("failed to collect tokens: %s", err)
	}

	got := []tokenView{}
	for _, tk := range tks {
		got = append(got, view(tk))
	}

	want := []tokenView{
		tag(TagOpen, "doc", kv("v", "1")),
		tag(TagSelfClose, "item"),
		text("body"),
		tag(TagClose, "doc"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}

	if _, err := l.Next(); err != io.EOF {
		t.Fatalf("expected EOF after Collect, got %v", err)
	}
}

func TestLexerErrorLocation(t *testing.T) {
	l := New([]byte("<doc>\n<item k=v/>"), "doc.xml", nil)

	if _, err := l.Next(); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	_, err := l.Next()
	if !errors.Is(err, ErrKeyWithNoValue) {
		t.Fatalf("expected ErrKeyWithNoValue, got %v", err)
	}

	var serr SituatedErr
	if !errors.As(err, &serr) {
		t.Fatalf("expected a situated error, got %T", err)
	}
	assert(t, Location{File: "doc.xml", Line: 1, Column: 8}, serr.At(), "location")
	assert(t, "attribute value must be quoted at doc.xml:2:9", err.Error(), "message")
	assert(t, 14, l.Offset(), "offset")

	// Errors are sticky.
	if _, again := l.Next(); again != err {
		t.Fatalf("expected the same error again, got %v", again)
	}
}

func TestLexerCollectReleasesOnError(t *testing.T) {
	alloc := NewTracking(nil)
	l := New([]byte("<a x='1'><b y='2' z='3'>text<c w=broken>"), "f", alloc)

	tks, err := l.Collect()
	if !errors.Is(err, ErrKeyWithNoValue) {
		t.Fatalf("expected ErrKeyWithNoValue, got %v", err)
	}
	if tks != nil {
		t.Fatalf("expected no tokens, got %d", len(tks))
	}

	assert(t, 0, alloc.Outstanding(), "outstanding allocations")
	if alloc.Total() < 2 {
		t.Fatalf("expected earlier tags to have allocated")
	}
}

func TestLexerDefaultAllocator(t *testing.T) {
	l := New(nil, "", nil)
	assert(t, Heap, l.Allocator(), "allocator")

	tks, err := l.Collect()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	assert(t, 0, len(tks), "token count")
}
