package lexer

import (
	"fmt"
	"strings"
)

type TagType int

const (
	// <tag>
	TagOpen TagType = iota
	// </tag>
	TagClose
	// <tag/>
	TagSelfClose
)

func (t TagType) String() string {
	switch t {
	case TagOpen:
		return "Open"
	case TagClose:
		return "Close"
	case TagSelfClose:
		return "SelfClose"
	}

	return "<unknown>"
}

// Span is a half-open range of byte offsets into the lexed buffer.
type Span struct {
	Start, End int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Token is either a Text or a *Tag.
//
// All byte slices held by a token alias the buffer it was lexed from, they stay
// valid only while that buffer is alive and left unmodified.
type Token interface {
	Span() Span

	isToken()
}

// Text is a run of content between tags, with surrounding whitespace trimmed.
// It is never empty.
type Text struct {
	Data []byte
	Pos  Span
}

func (t Text) Span() Span { return t.Pos }

func (Text) isToken() {}

func (t Text) String() string {
	return fmt.Sprintf("Text(%q)", t.Data)
}

type Tag struct {
	Type    TagType
	Name    []byte
	NamePos Span

	// Pairs are in source order. Their storage comes from the Allocator passed
	// to NextToken and must be given back with Release.
	Pairs []Pair

	Pos Span
}

func (t *Tag) Span() Span { return t.Pos }

func (*Tag) isToken() {}

func (t *Tag) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s(%q", t.Type, t.Name)
	for _, p := range t.Pairs {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	b.WriteByte(')')

	return b.String()
}

// Pair is a single attribute. A key written without "=..." has no value, which
// is not the same as an empty one: k="" has HasValue set and an empty Value.
type Pair struct {
	Key    []byte
	KeyPos Span

	Value    []byte
	ValuePos Span
	HasValue bool
}

func (p Pair) Val() ([]byte, bool) {
	return p.Value, p.HasValue
}

func (p Pair) String() string {
	if !p.HasValue {
		return string(p.Key)
	}

	return fmt.Sprintf("%s=%q", p.Key, p.Value)
}

// Release gives the pair storage of tk back to alloc. It is a no-op for text
// tokens and for nil.
func Release(tk Token, alloc Allocator) {
	tag, ok := tk.(*Tag)
	if !ok || tag == nil {
		return
	}

	alloc.Release(tag.Pairs)
	tag.Pairs = nil
}
