package lexer

import (
	"errors"
	"fmt"
)

var (
	ErrUnclosedTag           = errors.New("unclosed tag")
	ErrKeyWithNoValue        = errors.New("attribute value must be quoted")
	ErrUnclosedValue         = errors.New("unclosed attribute value")
	ErrClosingSelfClosingTag = errors.New("closing tag cannot be self-closing")
)

// LexerError wraps one of the Err* sentinels with the position where lexing
// stopped. Offset is always equal to the cursor left behind by NextToken.
type LexerError struct {
	Inner    error
	Offset   int
	Location Location
}

func (e *LexerError) Unwrap() error {
	return e.Inner
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("%s at %s", e.Inner, &e.Location)
}

func (e *LexerError) At() Location {
	return e.Location
}

// SituatedErr is implemented by errors that know where in a file they happened.
type SituatedErr interface {
	Unwrap() error
	At() Location
}

func errorAt(inner error, text []byte, offset int) *LexerError {
	return &LexerError{
		Inner:    inner,
		Offset:   offset,
		Location: LocationOf(text, offset),
	}
}
