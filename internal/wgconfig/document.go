package wgconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"wgconf/internal/logger"
)

const (
	DefaultFileName   = "wg0.conf"
	DefaultFolder     = "/etc/wireguard"
	DefaultBackupsDir = "wg-easy-backups"

	lineSeparator = "\n"
	latestSuffix  = "_latest"
)

// Document owns the sections of one configuration file. Interface and Peer
// views returned by a Document alias its sections, so edits made through a
// view are visible to Save.
//
// A Document does no locking of its own; see configstore.Store.
type Document struct {
	folder     string
	fileName   string
	backupsDir string

	sections []*Section

	now func() time.Time
}

func New(folder, fileName, backupsDir string) *Document {
	if folder == "" {
		folder = DefaultFolder
	}

	if fileName == "" {
		fileName = DefaultFileName
	}

	if backupsDir == "" {
		backupsDir = DefaultBackupsDir
	}

	return &Document{
		folder:     folder,
		fileName:   fileName,
		backupsDir: backupsDir,
		now:        time.Now,
	}
}

func (d *Document) FileName() string {
	return d.fileName
}

func (d *Document) Path() string {
	return filepath.Join(d.folder, d.fileName)
}

func (d *Document) BackupPath() string {
	return filepath.Join(d.folder, d.backupsDir)
}

func (d *Document) LatestBackupPath() string {
	return filepath.Join(d.BackupPath(), d.fileName+latestSuffix)
}

// ConfigExists reports whether the configuration file can be stat'ed. Any
// error counts as "does not exist".
func (d *Document) ConfigExists() bool {
	_, err := os.Stat(d.Path())
	return err == nil
}

func (d *Document) readFile() ([]byte, error) {
	data, err := os.ReadFile(d.Path())
	if err != nil {
		return nil, ioError("read", d.Path(), err)
	}

	return data, nil
}

// LoadExisting parses the configuration file and replaces the in-memory
// sections. On any error the previous sections are kept untouched.
func (d *Document) LoadExisting() error {
	logger.Debug("Using WireGuard configuration: %s", d.Path())

	data, err := d.readFile()
	if err != nil {
		return err
	}

	sections, err := Parse(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", d.Path(), err)
	}

	d.replaceSections(sections)

	logger.Debug("Loaded %d sections, %d peers", len(d.sections), len(d.Peers()))

	return nil
}

// Replace swaps in a new set of sections, e.g. a freshly parsed file.
func (d *Document) Replace(sections []*Section) {
	d.replaceSections(sections)
}

func (d *Document) replaceSections(sections []*Section) {
	for _, section := range d.sections {
		if !slices.Contains(sections, section) {
			section.detached = true
		}
	}

	for _, section := range sections {
		section.detached = false
	}

	d.sections = sections
}

// Parse reads configuration text into sections. It stops at the first line
// that is not blank, a comment, a [header] or a key = value pair.
func Parse(text string) ([]*Section, error) {
	var sections []*Section

	current := newUnnamedSection()

	for i, raw := range strings.Split(text, lineSeparator) {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			current.addParsedComment(line[1:])
		case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
			if !current.IsEmpty() {
				sections = append(sections, current)
			}

			current = NewSection(line[1 : len(line)-1])
		default:
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, &ParseError{Line: i + 1, Content: line}
			}

			current.addParsed(EntryConfig, strings.TrimSpace(key), strings.TrimSpace(value))
		}
	}

	if !current.IsEmpty() {
		sections = append(sections, current)
	}

	return sections, nil
}

func (d *Document) Sections() []*Section {
	return append([]*Section(nil), d.sections...)
}

// Interface returns the first [Interface] section, matched case-insensitively.
func (d *Document) Interface() (*Interface, error) {
	for _, section := range d.sections {
		if section.Is(InterfaceSection) {
			return &Interface{view{section: section}}, nil
		}
	}

	return nil, notFound("[" + InterfaceSection + "] section")
}

// CreateInterface inserts an empty [Interface] section at the top of the
// document. It fails when the document already has one.
func (d *Document) CreateInterface() (*Interface, error) {
	if _, err := d.Interface(); err == nil {
		return nil, fmt.Errorf("[%s] section already exists", InterfaceSection)
	}

	section := NewSection(InterfaceSection)
	d.sections = slices.Insert(d.sections, 0, section)

	return &Interface{view{section: section}}, nil
}

// Peers returns a view for every [Peer] section in file order.
func (d *Document) Peers() []*Peer {
	var peers []*Peer

	for _, section := range d.sections {
		if section.Is(PeerSection) {
			peers = append(peers, &Peer{view{section: section}})
		}
	}

	return peers
}

// Peer looks a peer up by public key.
func (d *Document) Peer(publicKey string) (*Peer, error) {
	for _, peer := range d.Peers() {
		if key, err := peer.PublicKey(); err == nil && key == publicKey {
			return peer, nil
		}
	}

	return nil, notFound("peer " + publicKey)
}

func (d *Document) AddPeer() *Peer {
	section := NewSection(PeerSection)
	d.sections = append(d.sections, section)

	return &Peer{view{section: section}}
}

// RemovePeer drops the peer's section. The peer and any other view of the
// same section fail with ErrStaleView afterwards.
func (d *Document) RemovePeer(peer *Peer) error {
	section, err := peer.live()
	if err != nil {
		return err
	}

	index := slices.Index(d.sections, section)
	if index < 0 {
		return ErrStaleView
	}

	d.sections = slices.Delete(d.sections, index, index+1)
	section.detached = true

	return nil
}

// Lines renders every section followed by a blank line, plus a final blank
// line.
func (d *Document) Lines() []string {
	return renderLines(d.sections)
}

func (d *Document) String() string {
	return Render(d.sections...)
}

func renderLines(sections []*Section) []string {
	var lines []string

	for _, section := range sections {
		lines = append(lines, section.Lines()...)
		lines = append(lines, "")
	}

	return append(lines, "")
}

// Render serializes sections exactly as Save writes them.
func Render(sections ...*Section) string {
	return strings.Join(renderLines(sections), lineSeparator)
}

// Save rewrites the whole configuration file from memory.
func (d *Document) Save() error {
	logger.Info("Writing WireGuard configuration to %s", d.Path())

	if err := os.WriteFile(d.Path(), []byte(d.String()), 0600); err != nil {
		return ioError("write", d.Path(), err)
	}

	return nil
}
