package wgconfig

import (
	"fmt"
	"strings"
)

// EntryKind tags the three kinds of lines a section can hold.
type EntryKind int

const (
	EntryComment EntryKind = iota
	EntryMetadata
	EntryConfig
)

func (k EntryKind) String() string {
	switch k {
	case EntryComment:
		return "comment"
	case EntryMetadata:
		return "metadata"
	case EntryConfig:
		return "config"
	}

	return fmt.Sprintf("EntryKind(%d)", int(k))
}

func (k EntryKind) valid() bool {
	return k == EntryComment || k == EntryMetadata || k == EntryConfig
}

// Entry is one parsed line. Entries are immutable; a section replaces them
// instead of editing them in place.
type Entry struct {
	kind  EntryKind
	key   string
	value string
}

func NewEntry(kind EntryKind, key, value string) (Entry, error) {
	if !kind.valid() {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidKind, kind)
	}

	if err := checkEntry(kind, key, value); err != nil {
		return Entry{}, err
	}

	return Entry{kind: kind, key: key, value: value}, nil
}

func (e Entry) Kind() EntryKind { return e.kind }
func (e Entry) Key() string     { return e.key }
func (e Entry) Value() string   { return e.value }

func (e Entry) IsComment() bool  { return e.kind == EntryComment }
func (e Entry) IsMetadata() bool { return e.kind == EntryMetadata }
func (e Entry) IsConfig() bool   { return e.kind == EntryConfig }

// Line renders the entry the way it is written to disk.
func (e Entry) Line() string {
	switch e.kind {
	case EntryComment:
		return "#" + e.value
	case EntryMetadata:
		return fmt.Sprintf("#!%s = %s", e.key, e.value)
	default:
		return fmt.Sprintf("%s = %s", e.key, e.value)
	}
}

// checkEntry rejects text that Parse would read back differently: line
// breaks anywhere, '=' or '#' in keys, a key that opens a section header,
// and whitespace around keys and values.
func checkEntry(kind EntryKind, key, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s value contains a line break", ErrInvalidValue, kind)
	}

	if kind == EntryComment {
		if _, _, ok := decodeMetadata(value); ok {
			return fmt.Errorf("%w: comment %q would be read back as metadata", ErrInvalidValue, value)
		}

		return nil
	}

	switch {
	case key == "":
		return fmt.Errorf("%w: empty %s key", ErrInvalidValue, kind)
	case strings.ContainsAny(key, "\r\n=#"):
		return fmt.Errorf("%w: %s key %q contains a line break, '=' or '#'", ErrInvalidValue, kind, key)
	case strings.HasPrefix(key, "["):
		return fmt.Errorf("%w: %s key %q starts with '['", ErrInvalidValue, kind, key)
	case strings.TrimSpace(key) != key:
		return fmt.Errorf("%w: %s key %q has surrounding whitespace", ErrInvalidValue, kind, key)
	case strings.TrimSpace(value) != value:
		return fmt.Errorf("%w: %s value for %s has surrounding whitespace", ErrInvalidValue, kind, key)
	}

	return nil
}
