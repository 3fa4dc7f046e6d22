package wgconfig

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type entrySnapshot struct {
	Kind  EntryKind
	Key   string
	Value string
}

type sectionSnapshot struct {
	Name    string
	Named   bool
	Entries []entrySnapshot
}

func snapshot(sections []*Section) []sectionSnapshot {
	result := []sectionSnapshot{}

	for _, section := range sections {
		s := sectionSnapshot{Name: section.Name(), Named: section.HasName()}

		for _, entry := range section.Entries() {
			s.Entries = append(s.Entries, entrySnapshot{Kind: entry.Kind(), Key: entry.Key(), Value: entry.Value()})
		}

		result = append(result, s)
	}

	return result
}

func newTestDocument(t *testing.T, contents string) *Document {
	t.Helper()

	folder := t.TempDir()
	doc := New(folder, "wg0.conf", "backups")
	doc.now = func() time.Time { return time.Date(2026, time.October, 19, 15, 4, 5, 0, time.UTC) }

	if contents != "" {
		if err := os.WriteFile(doc.Path(), []byte(contents), 0600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}

	return doc
}

func assertRoundTrip(t *testing.T, text string) []*Section {
	t.Helper()

	sections, err := Parse(text)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	doc := New(t.TempDir(), "", "")
	doc.Replace(sections)

	reparsed, err := Parse(doc.String())

	if err != nil {
		t.Fatalf("expected serialized document to parse, got %v", err)
	}

	if diff := cmp.Diff(snapshot(sections), snapshot(reparsed)); diff != "" {
		t.Errorf("round trip changed the document (-want +got):\n%s", diff)
	}

	return sections
}

const interfaceAndPeer = `[Interface]
Address = 10.1.3.1/24
ListenPort = 51820
PrivateKey = yAnz5TF+lXXJte14tji3zlMNq+hd2rYUIgJBgB3fBmk=
#!Host = vpn.example.com

[Peer]
#!Name = Alice
# laptop
PublicKey = xTIBA5rboUvnH4htodjb6e697QjLERt1NAB4mZqp8Dg=
AllowedIPs = 0.0.0.0/0, ::/0
Endpoint = 203.0.113.7:51820
`

func TestParse_RoundTripInterfaceAndPeer(t *testing.T) {
	sections := assertRoundTrip(t, interfaceAndPeer)

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
}

func TestParse_RoundTripThreePeersWithDuplicatePostUp(t *testing.T) {
	text := `[Interface]
Address = 10.1.3.1/24
PostUp = iptables -I FORWARD -i wg0 -j ACCEPT
PostUp = iptables -t nat -A POSTROUTING -o eth0 -j MASQUERADE
PostDown = iptables -D FORWARD -i wg0 -j ACCEPT

[Peer]
PublicKey = one
AllowedIPs = 10.1.3.2/32

[Peer]
PublicKey = two
AllowedIPs = 10.1.3.3/32

[Peer]
PublicKey = three
AllowedIPs = 10.1.3.4/32
PresharedKey = abc==
`
	sections := assertRoundTrip(t, text)

	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}

	if diff := cmp.Diff([]string{
		"iptables -I FORWARD -i wg0 -j ACCEPT",
		"iptables -t nat -A POSTROUTING -o eth0 -j MASQUERADE",
	}, sections[0].Values("PostUp")); diff != "" {
		t.Errorf("unexpected PostUp values (-want +got):\n%s", diff)
	}

	if v, _ := sections[3].GetOne("PresharedKey"); v.Value() != "abc==" {
		t.Errorf("expected value containing '=' to survive, got %q", v.Value())
	}
}

func TestParse_EmptyFileHasNoSections(t *testing.T) {
	for _, text := range []string{"", "\n\n", "   \n"} {
		sections := assertRoundTrip(t, text)

		if len(sections) != 0 {
			t.Errorf("expected 0 sections for %q, got %d", text, len(sections))
		}
	}
}

func TestParse_LeadingCommentsKeepTheirPlace(t *testing.T) {
	text := "# managed by wgconf\n\n[Interface]\nAddress = 10.0.0.1/24\n"
	sections := assertRoundTrip(t, text)

	if sections[0].HasName() {
		t.Errorf("expected leading comment in an unnamed section")
	}

	doc := New(t.TempDir(), "", "")
	doc.Replace(sections)

	expected := "# managed by wgconf\n\n[Interface]\nAddress = 10.0.0.1/24\n\n"

	if doc.String() != expected {
		t.Errorf("expected %q, got %q", expected, doc.String())
	}
}

func TestParse_MetadataAndCommentsSerializeExactly(t *testing.T) {
	sections, err := Parse("[Peer]\n#!Name = Alice\n#hello\n")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	entries := sections[0].Entries()

	if !entries[0].IsMetadata() || entries[0].Key() != "Name" || entries[0].Value() != "Alice" {
		t.Errorf("expected metadata Name=Alice, got %+v", entries[0])
	}

	if diff := cmp.Diff([]string{"[Peer]", "#!Name = Alice", "#hello"}, sections[0].Lines()); diff != "" {
		t.Errorf("unexpected lines (-want +got):\n%s", diff)
	}
}

func TestParse_TrimsKeysAndValues(t *testing.T) {
	sections, err := Parse("[Interface]\n  ListenPort=51820  \r\nDNS =1.1.1.1,  1.0.0.1\n")

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if diff := cmp.Diff([]string{"[Interface]", "ListenPort = 51820", "DNS = 1.1.1.1,  1.0.0.1"}, sections[0].Lines()); diff != "" {
		t.Errorf("unexpected lines (-want +got):\n%s", diff)
	}
}

func TestParse_LineWithoutEqualsFails(t *testing.T) {
	_, err := Parse("[Interface]\nAddress = 10.0.0.1/24\ngarbage line no equals\n")

	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}

	var parseErr *ParseError

	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}

	if parseErr.Line != 3 || parseErr.Content != "garbage line no equals" {
		t.Errorf("expected line 3 'garbage line no equals', got %d %q", parseErr.Line, parseErr.Content)
	}
}

func TestDocument_LoadExistingKeepsStateOnParseError(t *testing.T) {
	doc := newTestDocument(t, interfaceAndPeer)

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := os.WriteFile(doc.Path(), []byte("[Interface]\nbroken\n"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	err := doc.LoadExisting()

	var parseErr *ParseError

	if !errors.As(err, &parseErr) || parseErr.Line != 2 {
		t.Fatalf("expected parse error on line 2, got %v", err)
	}

	if len(doc.Sections()) != 2 || len(doc.Peers()) != 1 {
		t.Errorf("expected previous document to be kept, got %d sections", len(doc.Sections()))
	}
}

func TestDocument_LoadExistingMissingFile(t *testing.T) {
	doc := newTestDocument(t, "")

	err := doc.LoadExisting()

	if !errors.Is(err, ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrIO wrapping fs.ErrNotExist, got %v", err)
	}

	if doc.ConfigExists() {
		t.Errorf("expected ConfigExists to be false")
	}
}

func TestDocument_CaseInsensitiveSections(t *testing.T) {
	doc := newTestDocument(t, "[INTERFACE]\nAddress = 10.0.0.1/24\n\n[peer]\nPublicKey = a\n\n[Other]\nFoo = bar\n\n[PEER]\nPublicKey = b\n")

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	iface, err := doc.Interface()

	if err != nil {
		t.Fatalf("expected interface, got %v", err)
	}

	addresses, _ := iface.Addresses()

	if diff := cmp.Diff([]string{"10.0.0.1/24"}, addresses); diff != "" {
		t.Errorf("unexpected addresses (-want +got):\n%s", diff)
	}

	peers := doc.Peers()

	if len(peers) != 2 {
		t.Fatalf("expected 2 peers, got %d", len(peers))
	}

	if key, _ := peers[1].PublicKey(); key != "b" {
		t.Errorf("expected peers in file order, got %q second", key)
	}
}

func TestDocument_FirstInterfaceWins(t *testing.T) {
	doc := New(t.TempDir(), "", "")
	sections, _ := Parse("[Interface]\nListenPort = 1\n\n[interface]\nListenPort = 2\n")
	doc.Replace(sections)

	iface, _ := doc.Interface()

	if port, _ := iface.ListenPort(); port != 1 {
		t.Errorf("expected first interface section, got port %d", port)
	}
}

func TestDocument_InterfaceMissing(t *testing.T) {
	doc := New(t.TempDir(), "", "")

	if _, err := doc.Interface(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	iface, err := doc.CreateInterface()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_ = iface.SetListenPort(51820)

	if _, err := doc.CreateInterface(); err == nil {
		t.Errorf("expected second CreateInterface to fail")
	}

	if doc.String() != "[Interface]\nListenPort = 51820\n\n" {
		t.Errorf("unexpected document %q", doc.String())
	}
}

func TestDocument_ViewEditsAreSaved(t *testing.T) {
	doc := newTestDocument(t, interfaceAndPeer)

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	peer, err := doc.Peer("xTIBA5rboUvnH4htodjb6e697QjLERt1NAB4mZqp8Dg=")

	if err != nil {
		t.Fatalf("expected peer, got %v", err)
	}

	_ = peer.SetName("Bob")

	added := doc.AddPeer()
	_ = added.SetPublicKey("new")
	_ = added.SetAllowedIPs("10.1.3.9/32")

	if err := doc.Save(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	reloaded := New(filepath.Dir(doc.Path()), "wg0.conf", "backups")

	if err := reloaded.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if diff := cmp.Diff(snapshot(doc.Sections()), snapshot(reloaded.Sections())); diff != "" {
		t.Errorf("saved document differs (-want +got):\n%s", diff)
	}

	if name, _ := reloaded.Peers()[0].Name(); name != "Bob" {
		t.Errorf("expected Bob, got %q", name)
	}

	if !strings.HasSuffix(doc.String(), "AllowedIPs = 10.1.3.9/32\n\n") {
		t.Errorf("expected new peer last, got %q", doc.String())
	}
}

func TestDocument_EditsThatWouldCorruptTheFileAreRejected(t *testing.T) {
	doc := newTestDocument(t, interfaceAndPeer)

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	iface, err := doc.Interface()

	if err != nil {
		t.Fatalf("expected interface, got %v", err)
	}

	peer := doc.Peers()[0]

	edits := map[string]error{
		"name with injected peer": peer.SetName("Alice\n[Peer]\nPublicKey = attacker\nAllowedIPs = 0.0.0.0/0"),
		"table with garbage line": iface.SetTable("off\ngarbage line no equals"),
		"endpoint with carriage":  peer.SetEndpoint("vpn.example.com:51820\r"),
		"host with padding":       iface.SetHostAddress(" vpn.example.com "),
	}

	for name, err := range edits {
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("%s: expected ErrInvalidValue, got %v", name, err)
		}
	}

	before := doc.String()

	if err := doc.Save(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected saved file to load, got %v", err)
	}

	if len(doc.Peers()) != 1 {
		t.Errorf("expected 1 peer after reload, got %d", len(doc.Peers()))
	}

	if doc.String() != before {
		t.Errorf("expected rejected edits to leave the document unchanged, got:\n%s", doc.String())
	}
}

func TestDocument_RemovePeerMakesViewsStale(t *testing.T) {
	doc := newTestDocument(t, interfaceAndPeer)

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	peer := doc.Peers()[0]
	alias := doc.Peers()[0]

	if err := doc.RemovePeer(peer); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(doc.Peers()) != 0 {
		t.Errorf("expected no peers left")
	}

	if _, err := alias.Name(); !errors.Is(err, ErrStaleView) {
		t.Errorf("expected ErrStaleView, got %v", err)
	}

	if err := alias.SetName("ghost"); !errors.Is(err, ErrStaleView) {
		t.Errorf("expected ErrStaleView, got %v", err)
	}

	if err := doc.RemovePeer(peer); !errors.Is(err, ErrStaleView) {
		t.Errorf("expected ErrStaleView, got %v", err)
	}
}

func TestDocument_ReloadMakesViewsStale(t *testing.T) {
	doc := newTestDocument(t, interfaceAndPeer)

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	iface, _ := doc.Interface()

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := iface.Addresses(); !errors.Is(err, ErrStaleView) {
		t.Errorf("expected ErrStaleView, got %v", err)
	}
}

func TestDocument_BackupThenRevertRestoresExactBytes(t *testing.T) {
	original := "[Interface]\nAddress=10.1.3.1/24\n# odd   spacing\n\n\n[Peer]\nPublicKey = a"
	doc := newTestDocument(t, original)

	if err := doc.LoadExisting(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	iface, _ := doc.Interface()
	_ = iface.SetListenPort(4242)

	snapshotPath, err := doc.BackupFSCopy()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if filepath.Base(snapshotPath) != "wg0.conf_10_19_2026_3_04_05_PM" {
		t.Errorf("unexpected snapshot name %s", filepath.Base(snapshotPath))
	}

	for _, path := range []string{snapshotPath, doc.LatestBackupPath()} {
		data, err := os.ReadFile(path)

		if err != nil {
			t.Fatalf("expected backup %s, got %v", path, err)
		}

		if string(data) != original {
			t.Errorf("expected on-disk content in %s, got %q", path, data)
		}
	}

	if err := doc.Save(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	saved, _ := os.ReadFile(doc.Path())

	if string(saved) == original {
		t.Fatalf("expected save to change the file")
	}

	if err := doc.Revert(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	reverted, _ := os.ReadFile(doc.Path())

	if string(reverted) != original {
		t.Errorf("expected %q, got %q", original, reverted)
	}
}

func TestDocument_BackupSnapshotsAreNotOverwritten(t *testing.T) {
	doc := newTestDocument(t, "[Interface]\nListenPort = 1\n")

	first, err := doc.BackupFSCopy()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := os.WriteFile(doc.Path(), []byte("[Interface]\nListenPort = 2\n"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	second, err := doc.BackupFSCopy()

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first == second || second != first+"_1" {
		t.Errorf("expected a suffixed second snapshot, got %s and %s", first, second)
	}

	latest, _ := doc.ReadLatestBackup()

	if string(latest) != "[Interface]\nListenPort = 2\n" {
		t.Errorf("expected latest to follow the newest snapshot, got %q", latest)
	}
}

func TestDocument_BackupWithoutConfigFails(t *testing.T) {
	doc := newTestDocument(t, "")

	if _, err := doc.BackupFSCopy(); !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}

	if err := doc.Revert(); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected missing latest backup, got %v", err)
	}
}
