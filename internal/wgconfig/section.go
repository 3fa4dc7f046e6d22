package wgconfig

import (
	"strings"
)

// Section is a named, ordered block of entries. The leading block of a file,
// before any header, is the only unnamed section.
type Section struct {
	name    string
	named   bool
	entries []Entry

	detached bool
}

func NewSection(name string) *Section {
	return &Section{name: name, named: true}
}

func newUnnamedSection() *Section {
	return &Section{}
}

func (s *Section) Name() string {
	return s.name
}

func (s *Section) HasName() bool {
	return s.named
}

// Is reports whether the section header matches name, ignoring case.
func (s *Section) Is(name string) bool {
	return s.named && strings.EqualFold(s.name, name)
}

// IsEmpty is true only for an unnamed section without entries.
func (s *Section) IsEmpty() bool {
	return !s.named && len(s.entries) == 0
}

func (s *Section) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

func (s *Section) find(kind EntryKind, key string) []Entry {
	var found []Entry

	for _, entry := range s.entries {
		if entry.kind == kind && entry.key == key {
			found = append(found, entry)
		}
	}

	return found
}

func (s *Section) findOne(kind EntryKind, key string) (Entry, bool) {
	for _, entry := range s.entries {
		if entry.kind == kind && entry.key == key {
			return entry, true
		}
	}

	return Entry{}, false
}

func (s *Section) replace(kind EntryKind, key string, values []string) error {
	for _, value := range values {
		if err := checkEntry(kind, key, value); err != nil {
			return err
		}
	}

	kept := make([]Entry, 0, len(s.entries)+len(values))

	for _, entry := range s.entries {
		if entry.kind == kind && entry.key == key {
			continue
		}

		kept = append(kept, entry)
	}

	for _, value := range values {
		kept = append(kept, Entry{kind: kind, key: key, value: value})
	}

	s.entries = kept

	return nil
}

func (s *Section) add(kind EntryKind, key, value string) error {
	if err := checkEntry(kind, key, value); err != nil {
		return err
	}

	s.entries = append(s.entries, Entry{kind: kind, key: key, value: value})

	return nil
}

func values(entries []Entry) []string {
	result := make([]string, 0, len(entries))

	for _, entry := range entries {
		result = append(result, entry.value)
	}

	return result
}

// Get returns every config entry with key, in file order.
func (s *Section) Get(key string) []Entry {
	return s.find(EntryConfig, key)
}

func (s *Section) GetOne(key string) (Entry, bool) {
	return s.findOne(EntryConfig, key)
}

func (s *Section) Values(key string) []string {
	return values(s.Get(key))
}

func (s *Section) Has(key string) bool {
	_, ok := s.GetOne(key)
	return ok
}

// Add appends a config entry. Keys and values that would not read back the
// same after a save fail with ErrInvalidValue.
func (s *Section) Add(key, value string) error {
	return s.add(EntryConfig, key, value)
}

// Set drops every config entry with key and appends one entry per value at
// the end of the section. Edited keys therefore move to the end.
func (s *Section) Set(key string, values ...string) error {
	return s.replace(EntryConfig, key, values)
}

func (s *Section) GetMetadata(key string) []Entry {
	return s.find(EntryMetadata, key)
}

func (s *Section) GetOneMetadata(key string) (Entry, bool) {
	return s.findOne(EntryMetadata, key)
}

func (s *Section) MetadataValues(key string) []string {
	return values(s.GetMetadata(key))
}

func (s *Section) HasMetadata(key string) bool {
	_, ok := s.GetOneMetadata(key)
	return ok
}

func (s *Section) AddMetadata(key, value string) error {
	return s.add(EntryMetadata, key, value)
}

func (s *Section) SetMetadata(key string, values ...string) error {
	return s.replace(EntryMetadata, key, values)
}

// AddComment stores the text of a comment line without its leading '#'.
// Text of the form "!key = value" is application metadata.
func (s *Section) AddComment(text string) error {
	if key, value, ok := decodeMetadata(text); ok {
		return s.AddMetadata(key, value)
	}

	return s.add(EntryComment, "", text)
}

// addParsed stores a line read by Parse. Parsed keys and values are already
// trimmed single lines, so they are kept as written.
func (s *Section) addParsed(kind EntryKind, key, value string) {
	s.entries = append(s.entries, Entry{kind: kind, key: key, value: value})
}

func (s *Section) addParsedComment(text string) {
	if key, value, ok := decodeMetadata(text); ok {
		s.addParsed(EntryMetadata, key, value)
		return
	}

	s.addParsed(EntryComment, "", text)
}

func decodeMetadata(text string) (string, string, bool) {
	if !strings.HasPrefix(text, "!") || !strings.Contains(text, "=") {
		return "", "", false
	}

	key, value, _ := strings.Cut(text[1:], "=")

	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func (s *Section) Comments() []string {
	var comments []string

	for _, entry := range s.entries {
		if entry.IsComment() {
			comments = append(comments, entry.value)
		}
	}

	return comments
}

// Lines renders the section header followed by its entries. The unnamed
// leading section has no header.
func (s *Section) Lines() []string {
	lines := make([]string, 0, len(s.entries)+1)

	if s.named {
		lines = append(lines, "["+s.name+"]")
	}

	for _, entry := range s.entries {
		lines = append(lines, entry.Line())
	}

	return lines
}

// SectionJSON groups a section's entries for API and diagnostic output.
type SectionJSON struct {
	Entries  map[string][]string `json:"entries" yaml:"entries"`
	Comments []string            `json:"comments" yaml:"comments"`
	Metadata map[string][]string `json:"metadata" yaml:"metadata"`
}

func (s *Section) JSON() SectionJSON {
	out := SectionJSON{
		Entries:  map[string][]string{},
		Comments: []string{},
		Metadata: map[string][]string{},
	}

	for _, entry := range s.entries {
		switch entry.kind {
		case EntryConfig:
			out.Entries[entry.key] = append(out.Entries[entry.key], entry.value)
		case EntryMetadata:
			out.Metadata[entry.key] = append(out.Metadata[entry.key], entry.value)
		case EntryComment:
			out.Comments = append(out.Comments, entry.value)
		}
	}

	return out
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")

	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}

	return parts
}

func joinList(values []string) string {
	return strings.Join(values, ", ")
}
