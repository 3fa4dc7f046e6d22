package wgconfig

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidKind  = errors.New("invalid entry kind")
	ErrNotFound     = errors.New("not found")
	ErrInvalidValue = errors.New("invalid value")
	ErrStaleView    = errors.New("section is no longer part of the document")
	ErrParse        = errors.New("invalid configuration line")
	ErrIO           = errors.New("configuration file i/o failed")
)

// ParseError reports a line that is neither blank, a comment, a section header
// nor a key/value pair. Line is 1-based.
type ParseError struct {
	Line    int
	Content string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid configuration line (%d): '%s', no '='", e.Line, e.Content)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
