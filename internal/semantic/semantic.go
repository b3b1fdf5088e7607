// Package semantic encodes tokens as LSP semantic token data.
package semantic

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/pipe01/xmltok/lexer"
)

const (
	TypeTag uint32 = iota
	TypeKey
	TypeValue
)

// Legend lists the token type names, indexed by the Type* constants.
var Legend = []string{"type", "property", "string"}

type span struct {
	lexer.Span
	typ uint32
}

func spansOf(tks []lexer.Token) []span {
	spans := []span{}

	for _, tk := range tks {
		tag, ok := tk.(*lexer.Tag)
		if !ok {
			continue
		}

		spans = append(spans, span{tag.NamePos, TypeTag})
		for _, p := range tag.Pairs {
			spans = append(spans, span{p.KeyPos, TypeKey})
			if p.HasValue {
				spans = append(spans, span{p.ValuePos, TypeValue})
			}
		}
	}

	return spans
}

// Encode returns the relative encoding of every tag name, attribute key and
// attribute value in tks, which must have been lexed from text. Empty spans or
// spans crossing a line break are left out.
func Encode(text []byte, tks []lexer.Token) ([]uint32, error) {
	idx := lexer.NewLineIndex(text)
	data := []uint32{}

	var prevLine, prevCol int

	for _, s := range spansOf(tks) {
		if s.Len() == 0 {
			continue
		}

		line, _ := idx.Line(s.Start)
		if endLine, _ := idx.Line(s.End); endLine != line {
			continue
		}

		col := idx.UTF16Column(s.Start)
		length := idx.UTF16Column(s.End) - col

		startDelta := col
		if line == prevLine {
			startDelta = col - prevCol
		}

		var quintet [5]uint32
		for i, v := range [...]int{line - prevLine, startDelta, length} {
			u, err := safecast.Conv[uint32](v)
			if err != nil {
				return nil, fmt.Errorf("encode span %d-%d: %w", s.Start, s.End, err)
			}
			quintet[i] = u
		}
		quintet[3] = s.typ

		data = append(data, quintet[:]...)
		prevLine, prevCol = line, col
	}

	return data, nil
}
