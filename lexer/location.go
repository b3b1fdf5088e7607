package lexer

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

type Location struct {
	File string

	// 0-based, Column counts runes
	Line, Column int
}

func (l *Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line+1, l.Column+1)
	}

	return fmt.Sprintf("%s:%d:%d", l.File, l.Line+1, l.Column+1)
}

// LocationOf returns the line and column of the byte at offset. Offsets past the
// end of text are clamped to len(text).
func LocationOf(text []byte, offset int) Location {
	offset = min(max(offset, 0), len(text))

	var loc Location
	lineStart := 0

	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			loc.Line++
			lineStart = i + 1
		}
	}

	loc.Column = utf8.RuneCount(text[lineStart:offset])
	return loc
}

// LineIndex answers repeated offset lookups over the same buffer.
type LineIndex struct {
	text  []byte
	lines []int
}

func NewLineIndex(text []byte) *LineIndex {
	lines := []int{0}

	for i, c := range text {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}

	return &LineIndex{
		text:  text,
		lines: lines,
	}
}

// Line returns the 0-based line containing offset and the offset of its first
// byte.
func (x *LineIndex) Line(offset int) (line, start int) {
	offset = min(max(offset, 0), len(x.text))

	line = sort.Search(len(x.lines), func(i int) bool {
		return x.lines[i] > offset
	}) - 1

	return line, x.lines[line]
}

func (x *LineIndex) Location(offset int) Location {
	line, start := x.Line(offset)
	offset = min(max(offset, 0), len(x.text))

	return Location{
		Line:   line,
		Column: utf8.RuneCount(x.text[start:offset]),
	}
}

// UTF16Column returns the column of offset counted in UTF-16 code units, the
// unit used by the language server protocol.
func (x *LineIndex) UTF16Column(offset int) int {
	_, start := x.Line(offset)
	offset = min(max(offset, 0), len(x.text))

	col := 0
	for b := x.text[start:offset]; len(b) > 0; {
		r, size := utf8.DecodeRune(b)
		b = b[size:]

		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
	}

	return col
}
