// Package lexer tokenizes a simplified XML-like markup into text runs and tags
// without copying the input.
//
// The grammar knows about text, <open>, </close> and <self-close/> tags with
// key="value" or key='value' attributes. Entities, comments, CDATA and the
// like are not recognized, and tags are not matched against each other.
package lexer

import (
	"bytes"
	"io"
)

var selfCloseMarker = []byte("/>")

// NextToken lexes the token that starts at or after *index in text and moves
// *index past it. It returns io.EOF once only whitespace is left.
//
// The result only depends on text and *index, so calling it again with the same
// arguments yields the same token. Returned slices alias text.
//
// On failure the error is a *LexerError wrapping one of the Err* sentinels and
// *index is left on the byte that caused it (len(text) if the input ran out).
// Any pair storage taken from alloc has been released by then. Lexing cannot be
// resumed reliably after a failure.
func NextToken(index *int, text []byte, alloc Allocator) (Token, error) {
	skipSpaces(index, text)
	if *index >= len(text) {
		return nil, io.EOF
	}

	if text[*index] == '<' {
		return lexTag(index, text, alloc)
	}

	return lexText(index, text), nil
}

func lexTag(index *int, text []byte, alloc Allocator) (tk Token, err error) {
	start := *index
	*index++

	if *index >= len(text) {
		return nil, errorAt(ErrUnclosedTag, text, *index)
	}

	typ := TagOpen
	if text[*index] == '/' {
		typ = TagClose
		*index++
	}

	skipSpaces(index, text)

	nameStart := *index
	for *index < len(text) && isAlnum(text[*index]) {
		*index++
	}
	namePos := Span{nameStart, *index}

	var pairs []Pair
	defer func() {
		if err != nil {
			alloc.Release(pairs)
		}
	}()

	for {
		skipSpaces(index, text)
		if *index >= len(text) {
			return nil, errorAt(ErrUnclosedTag, text, *index)
		}

		if bytes.HasPrefix(text[*index:], selfCloseMarker) {
			if typ == TagClose {
				return nil, errorAt(ErrClosingSelfClosingTag, text, *index)
			}

			*index += len(selfCloseMarker)
			typ = TagSelfClose
			break
		}
		if text[*index] == '>' {
			*index++
			break
		}

		// Keys end at whitespace or '=' only, "k>" is not a complete key.
		keyStart := *index
		for {
			if *index >= len(text) {
				return nil, errorAt(ErrUnclosedTag, text, *index)
			}
			if isSpace(text[*index]) || text[*index] == '=' {
				break
			}
			*index++
		}

		pair := Pair{
			Key:    text[keyStart:*index],
			KeyPos: Span{keyStart, *index},
		}

		if err := lexValue(index, text, &pair); err != nil {
			return nil, err
		}

		pairs = alloc.Grow(pairs, 1)
		pairs = append(pairs, pair)
	}

	return &Tag{
		Type:    typ,
		Name:    text[namePos.Start:namePos.End],
		NamePos: namePos,
		Pairs:   pairs,
		Pos:     Span{start, *index},
	}, nil
}

// lexValue expects *index to be right after a key, which guarantees it is in
// bounds.
func lexValue(index *int, text []byte, pair *Pair) error {
	if text[*index] != '=' {
		return nil
	}
	*index++

	if *index >= len(text) {
		return errorAt(ErrUnclosedTag, text, *index)
	}

	quote := text[*index]
	if quote != '"' && quote != '\'' {
		return errorAt(ErrKeyWithNoValue, text, *index)
	}
	*index++

	// A quote preceded by a single backslash does not terminate the value. The
	// backslash itself cannot be escaped.
	start := *index
	for {
		if *index >= len(text) {
			return errorAt(ErrUnclosedValue, text, *index)
		}
		if text[*index] == quote && text[*index-1] != '\\' {
			break
		}
		*index++
	}

	pair.Value = text[start:*index]
	pair.ValuePos = Span{start, *index}
	pair.HasValue = true

	*index++
	return nil
}

func lexText(index *int, text []byte) Token {
	start := *index

	end := len(text)
	if i := bytes.IndexByte(text[start:], '<'); i >= 0 {
		end = start + i
	}

	// No lower bound check, text[start] is not a space.
	for isSpace(text[end-1]) {
		end--
	}

	*index = end

	return Text{
		Data: text[start:end],
		Pos:  Span{start, end},
	}
}

func skipSpaces(index *int, text []byte) {
	for *index < len(text) && isSpace(text[*index]) {
		*index++
	}
}
