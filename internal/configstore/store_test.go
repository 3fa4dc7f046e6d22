package configstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"wgconf/internal/backups"
	"wgconf/internal/wgconfig"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const fixture = `[Interface]
Address = 10.1.3.1/24
ListenPort = 51820

[Peer]
#!Name = Alice
PublicKey = alice
AllowedIPs = 10.1.3.2/32
`

type fakeReloader struct {
	mu    sync.Mutex
	calls int
	fail  int
}

func (r *fakeReloader) Reload(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++

	if r.calls <= r.fail {
		return errors.New("wg-quick exploded")
	}

	return nil
}

func newTestRepository(t *testing.T) *backups.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "wgconf.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})

	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.AutoMigrate(&backups.Backup{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return backups.NewRepository(db)
}

func newTestStore(t *testing.T, contents string, reloader Reloader, opts Options) (*Store, *wgconfig.Document) {
	t.Helper()

	doc := wgconfig.New(t.TempDir(), "wg0.conf", "backups")

	if contents != "" {
		if err := os.WriteFile(doc.Path(), []byte(contents), 0600); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}

	store := New(doc, newTestRepository(t), reloader, opts)

	if contents != "" {
		if err := store.Load(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	return store, doc
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)

	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}

	return string(data)
}

func TestStore_CommitBacksUpThenSaves(t *testing.T) {
	reloader := &fakeReloader{}
	store, doc := newTestStore(t, fixture, reloader, Options{})

	err := store.Update(func(doc *wgconfig.Document) error {
		peer, err := doc.Peer("alice")
		if err != nil {
			return err
		}

		return peer.SetName("Alice Cooper")
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := store.Commit(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(readFile(t, doc.Path()), "#!Name = Alice Cooper") {
		t.Errorf("expected saved file to contain the new name")
	}

	if readFile(t, doc.LatestBackupPath()) != fixture {
		t.Errorf("expected latest backup to hold the previous file")
	}

	list, err := store.Backups()

	if err != nil || len(list) != 1 {
		t.Fatalf("expected one cataloged backup, got %v %v", list, err)
	}

	if reloader.calls != 1 {
		t.Errorf("expected one reload, got %d", reloader.calls)
	}
}

func TestStore_FailedReloadRevertsFile(t *testing.T) {
	reloader := &fakeReloader{fail: 1}
	store, doc := newTestStore(t, fixture, reloader, Options{})

	_ = store.Update(func(doc *wgconfig.Document) error {
		doc.AddPeer().SetPublicKey("mallory")
		return nil
	})

	err := store.Commit(context.Background())

	if err == nil || !strings.Contains(err.Error(), "wg-quick exploded") {
		t.Fatalf("expected reload error, got %v", err)
	}

	if readFile(t, doc.Path()) != fixture {
		t.Errorf("expected the file to be reverted to its previous content")
	}

	_ = store.View(func(doc *wgconfig.Document) error {
		if _, err := doc.Peer("mallory"); !errors.Is(err, wgconfig.ErrNotFound) {
			t.Errorf("expected in-memory document to be reloaded, got %v", err)
		}

		return nil
	})

	if reloader.calls != 2 {
		t.Errorf("expected a second reload after revert, got %d", reloader.calls)
	}
}

func TestStore_BackupFailureAbortsCommit(t *testing.T) {
	store, doc := newTestStore(t, fixture, nil, Options{})

	// a regular file where the backups directory should go
	if err := os.WriteFile(doc.BackupPath(), []byte("in the way"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_ = store.Update(func(doc *wgconfig.Document) error {
		doc.AddPeer().SetPublicKey("bob")
		return nil
	})

	err := store.Commit(context.Background())

	if !errors.Is(err, wgconfig.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}

	if readFile(t, doc.Path()) != fixture {
		t.Errorf("expected live configuration to be untouched")
	}
}

func TestStore_ReadOnlyRejectsWrites(t *testing.T) {
	store, _ := newTestStore(t, fixture, nil, Options{ReadOnly: true})

	if err := store.Update(func(*wgconfig.Document) error { return nil }); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}

	if err := store.Commit(context.Background()); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}

	if err := store.Revert(context.Background()); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestStore_RevertRestoresLatestBackup(t *testing.T) {
	store, doc := newTestStore(t, fixture, nil, Options{})

	if _, err := store.Backup(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	_ = store.Update(func(doc *wgconfig.Document) error {
		iface, _ := doc.Interface()
		return iface.SetListenPort(1)
	})

	if err := store.Commit(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := store.Revert(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Commit took its own backup of the original, so latest still holds it.
	if readFile(t, doc.Path()) != fixture {
		t.Errorf("expected the original file back")
	}

	_ = store.View(func(doc *wgconfig.Document) error {
		iface, _ := doc.Interface()

		if port, _ := iface.ListenPort(); port != 51820 {
			t.Errorf("expected reloaded port 51820, got %d", port)
		}

		return nil
	})
}

func TestStore_TrimKeepsConfiguredNumberOfBackups(t *testing.T) {
	store, _ := newTestStore(t, fixture, nil, Options{BackupTrim: true, BackupTrimKeep: 2})

	for i := 0; i < 4; i++ {
		_ = store.Update(func(doc *wgconfig.Document) error {
			iface, _ := doc.Interface()
			return iface.SetMTU(1400 + i)
		})

		if err := store.Commit(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	list, _ := store.Backups()

	if len(list) != 2 {
		t.Errorf("expected 2 backups after trimming, got %d", len(list))
	}
}

func TestStore_InitWritesInterface(t *testing.T) {
	store, doc := newTestStore(t, "", nil, Options{})

	defaults := InterfaceDefaults{
		Addresses:  []string{"10.1.3.1/24"},
		ListenPort: 51820,
		Host:       "vpn.example.com",
		PostUp:     []string{"echo up one", "echo up two"},
	}

	if err := store.Init(context.Background(), defaults, false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := `[Interface]
Address = 10.1.3.1/24
ListenPort = 51820
#!Host = vpn.example.com
PostUp = echo up one
PostUp = echo up two

`

	if got := readFile(t, doc.Path()); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}

	if err := store.Init(context.Background(), defaults, false); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("expected ErrAlreadyInitialized, got %v", err)
	}

	if err := store.Init(context.Background(), defaults, true); err != nil {
		t.Errorf("expected forced init to succeed, got %v", err)
	}

	if readFile(t, doc.LatestBackupPath()) != expected {
		t.Errorf("expected forced init to back up the previous file")
	}
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	store, _ := newTestStore(t, fixture, nil, Options{})

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_ = store.Update(func(doc *wgconfig.Document) error {
				return doc.AddPeer().SetPublicKey(fmt.Sprintf("peer-%d", i))
			})
		}(i)
	}

	wg.Wait()

	_ = store.View(func(doc *wgconfig.Document) error {
		if len(doc.Peers()) != 21 {
			t.Errorf("expected 21 peers, got %d", len(doc.Peers()))
		}

		return nil
	})
}

func TestStore_TransactSeesEditsFromAnotherStore(t *testing.T) {
	storeA, docA := newTestStore(t, fixture, nil, Options{})
	storeB := New(wgconfig.New(filepath.Dir(docA.Path()), docA.FileName(), "backups"), nil, nil, Options{})
	ctx := context.Background()

	addPeer := func(publicKey string) func(doc *wgconfig.Document) error {
		return func(doc *wgconfig.Document) error {
			return doc.AddPeer().SetPublicKey(publicKey)
		}
	}

	// storeA loaded the file before storeB wrote to it
	if err := storeB.Transact(ctx, addPeer("bob")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := storeA.Transact(ctx, addPeer("carol")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	saved := readFile(t, docA.Path())

	for _, key := range []string{"PublicKey = alice", "PublicKey = bob", "PublicKey = carol"} {
		if !strings.Contains(saved, key) {
			t.Errorf("expected saved file to contain %q, got:\n%s", key, saved)
		}
	}
}

func TestStore_TransactHoldsTheFileLock(t *testing.T) {
	storeA, docA := newTestStore(t, fixture, nil, Options{})
	storeB := New(wgconfig.New(filepath.Dir(docA.Path()), docA.FileName(), "backups"), nil, nil, Options{})

	err := storeA.Transact(context.Background(), func(doc *wgconfig.Document) error {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		err := storeB.Transact(ctx, func(doc *wgconfig.Document) error {
			return doc.AddPeer().SetPublicKey("bob")
		})

		if !errors.Is(err, ErrLocked) {
			t.Errorf("expected ErrLocked while another store holds the file, got %v", err)
		}

		return doc.AddPeer().SetPublicKey("carol")
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	saved := readFile(t, docA.Path())

	if strings.Contains(saved, "bob") || !strings.Contains(saved, "carol") {
		t.Errorf("expected only carol to be added, got:\n%s", saved)
	}
}

func TestStore_TransactDiscardsFailedEdits(t *testing.T) {
	store, doc := newTestStore(t, fixture, nil, Options{})
	failure := errors.New("stop")

	err := store.Transact(context.Background(), func(doc *wgconfig.Document) error {
		if err := doc.AddPeer().SetPublicKey("bob"); err != nil {
			return err
		}

		return failure
	})

	if !errors.Is(err, failure) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	if got := readFile(t, doc.Path()); got != fixture {
		t.Errorf("expected file to be untouched, got %q", got)
	}

	_ = store.View(func(doc *wgconfig.Document) error {
		if len(doc.Peers()) != 1 {
			t.Errorf("expected in-memory edits to be discarded, got %d peers", len(doc.Peers()))
		}

		return nil
	})

	readOnly, _ := newTestStore(t, fixture, nil, Options{ReadOnly: true})

	if err := readOnly.Transact(context.Background(), func(*wgconfig.Document) error { return nil }); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestStore_FailedInitKeepsDocument(t *testing.T) {
	store, doc := newTestStore(t, fixture, nil, Options{})

	var before string

	_ = store.View(func(doc *wgconfig.Document) error {
		before = doc.String()
		return nil
	})

	defaults := InterfaceDefaults{
		Addresses:  []string{"10.8.0.1/24"},
		ListenPort: 51820,
		Host:       "vpn.example.com\n[Peer]",
	}

	if err := store.Init(context.Background(), defaults, true); !errors.Is(err, wgconfig.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}

	_ = store.View(func(doc *wgconfig.Document) error {
		if doc.String() != before {
			t.Errorf("expected document to be restored, got:\n%s", doc.String())
		}

		if _, err := doc.Peer("alice"); err != nil {
			t.Errorf("expected alice to still be reachable, got %v", err)
		}

		return nil
	})

	if got := readFile(t, doc.Path()); got != fixture {
		t.Errorf("expected file to be untouched, got %q", got)
	}
}
