package lexer

import (
	"errors"
	"io"
)

// Lexer drives NextToken over a whole file, keeping the cursor for the caller.
type Lexer struct {
	filename string
	file     []byte
	alloc    Allocator

	index int
	err   error
}

// New returns a Lexer over file. A nil alloc means Heap.
func New(file []byte, fileName string, alloc Allocator) *Lexer {
	if alloc == nil {
		alloc = Heap
	}

	return &Lexer{
		filename: fileName,
		file:     file,
		alloc:    alloc,
	}
}

// Next returns the next token, or io.EOF when there are none left. Once a
// lexing error happened every later call returns it again.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return nil, l.err
	}

	tk, err := NextToken(&l.index, l.file, l.alloc)
	if err != nil {
		var lerr *LexerError
		if errors.As(err, &lerr) {
			lerr.Location.File = l.filename
		}

		l.err = err
		return nil, err
	}

	return tk, nil
}

// Collect lexes every remaining token. If lexing fails the tokens collected so
// far are released and only the error is returned.
func (l *Lexer) Collect() ([]Token, error) {
	tks := []Token{}

	for {
		tk, err := l.Next()
		if err == io.EOF {
			return tks, nil
		}
		if err != nil {
			for _, tk := range tks {
				Release(tk, l.alloc)
			}
			return nil, err
		}

		tks = append(tks, tk)
	}
}

// Offset returns the current cursor position.
func (l *Lexer) Offset() int {
	return l.index
}

func (l *Lexer) Allocator() Allocator {
	return l.alloc
}
