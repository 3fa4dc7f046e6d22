package configstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"wgconf/internal/backups"
	"wgconf/internal/logger"
	"wgconf/internal/wgconfig"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 50 * time.Millisecond

// Reloader applies a freshly written configuration file, e.g. by restarting
// the interface.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Options struct {
	ReadOnly       bool
	BackupTrim     bool
	BackupTrimKeep int
}

// Store serializes every access to the process-wide Document. A file lock
// next to the configuration file keeps other processes (the CLI and the HTTP
// server) from writing at the same time.
type Store struct {
	mu  sync.Mutex
	doc *wgconfig.Document

	lock     *flock.Flock
	backups  *backups.Repository
	reloader Reloader
	opts     Options
}

// New builds a store around doc. backupsRepository and reloader may be nil.
func New(doc *wgconfig.Document, backupsRepository *backups.Repository, reloader Reloader, opts Options) *Store {
	lockPath := filepath.Join(filepath.Dir(doc.Path()), "."+doc.FileName()+".lock")

	return &Store{
		doc:      doc,
		lock:     flock.New(lockPath),
		backups:  backupsRepository,
		reloader: reloader,
		opts:     opts,
	}
}

func (s *Store) ReadOnly() bool {
	return s.opts.ReadOnly
}

func (s *Store) lockFile(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.lock.Path()), 0700); err != nil {
		return nil, fmt.Errorf("%w: %w", wgconfig.ErrIO, err)
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLocked, err)
	}

	if !locked {
		return nil, ErrLocked
	}

	return func() {
		if err := s.lock.Unlock(); err != nil {
			logger.Warn("Failed to release %s: %v", s.lock.Path(), err)
		}
	}, nil
}

// Load parses the configuration file into the document.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.doc.LoadExisting()
}

// View runs fn with exclusive access to the document. fn must not keep
// views past its return.
func (s *Store) View(fn func(doc *wgconfig.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.doc)
}

// Update runs fn with exclusive access to the document for in-memory edits.
// Nothing is written until Commit.
func (s *Store) Update(fn func(doc *wgconfig.Document) error) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.doc)
}

// Commit backs up the file on disk, writes the document and reloads the
// interface. A failed backup aborts before anything is overwritten; a failed
// write or reload restores the backup and reloads again.
func (s *Store) Commit(ctx context.Context) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.commit(ctx)
}

// Transact reloads the file, runs fn and commits, holding the file lock the
// whole time so no other process can write in between. When fn fails the
// document is reloaded from disk and nothing is written.
func (s *Store) Transact(ctx context.Context, fn func(doc *wgconfig.Document) error) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.doc.LoadExisting(); err != nil {
		return err
	}

	if err := fn(s.doc); err != nil {
		if loadErr := s.doc.LoadExisting(); loadErr != nil {
			logger.Warn("Failed to discard edits to %s: %v", s.doc.Path(), loadErr)
		}

		return err
	}

	return s.commit(ctx)
}

func (s *Store) commit(ctx context.Context) error {
	hasBackup := false

	if s.doc.ConfigExists() {
		if _, err := s.backup(); err != nil {
			return fmt.Errorf("backup failed, configuration not saved: %w", err)
		}

		hasBackup = true
	}

	if err := s.doc.Save(); err != nil {
		return s.rollback(ctx, hasBackup, err)
	}

	if err := s.reload(ctx); err != nil {
		return s.rollback(ctx, hasBackup, err)
	}

	return nil
}

func (s *Store) rollback(ctx context.Context, hasBackup bool, cause error) error {
	logger.Error("Failed to save configuration: %v", cause)

	if !hasBackup {
		return cause
	}

	if err := s.doc.Revert(); err != nil {
		return errors.Join(cause, fmt.Errorf("revert failed: %w", err))
	}

	if err := s.doc.LoadExisting(); err != nil {
		return errors.Join(cause, fmt.Errorf("reload after revert failed: %w", err))
	}

	if err := s.reload(ctx); err != nil {
		logger.Error("Failed to reload reverted configuration: %v", err)
	}

	return cause
}

func (s *Store) reload(ctx context.Context) error {
	if s.reloader == nil {
		return nil
	}

	return s.reloader.Reload(ctx)
}

// backup snapshots the on-disk file, catalogs the snapshot and trims old
// ones. Only the snapshot itself is fatal.
func (s *Store) backup() (string, error) {
	path, err := s.doc.BackupFSCopy()
	if err != nil {
		return "", err
	}

	if s.backups == nil {
		return path, nil
	}

	if _, err := s.backups.Record(s.doc.FileName(), path); err != nil {
		logger.Warn("Failed to catalog backup %s: %v", path, err)
		return path, nil
	}

	if s.opts.BackupTrim {
		if _, err := s.backups.Trim(s.doc.FileName(), s.opts.BackupTrimKeep); err != nil {
			logger.Warn("Failed to trim backups: %v", err)
		}
	}

	return path, nil
}

// Backup snapshots the configuration file as it is on disk.
func (s *Store) Backup(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	return s.backup()
}

// Backups lists the cataloged snapshots, newest first.
func (s *Store) Backups() ([]*backups.Backup, error) {
	if s.backups == nil {
		return nil, nil
	}

	return s.backups.List(s.doc.FileName())
}

// TrimBackups keeps the newest keep snapshots.
func (s *Store) TrimBackups(keep int) ([]*backups.Backup, error) {
	if s.backups == nil {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backups.Trim(s.doc.FileName(), keep)
}

// Revert restores the latest backup, reloads the document from it and
// reloads the interface.
func (s *Store) Revert(ctx context.Context) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.doc.Revert(); err != nil {
		return err
	}

	if err := s.doc.LoadExisting(); err != nil {
		return err
	}

	return s.reload(ctx)
}

// InterfaceDefaults seeds a brand new [Interface] section.
type InterfaceDefaults struct {
	Addresses  []string
	ListenPort int
	Host       string
	PrivateKey string

	PreUp    []string
	PostUp   []string
	PreDown  []string
	PostDown []string
}

// Init replaces the document with a single [Interface] section built from
// defaults and commits it. An existing file is kept unless force is set, in
// which case it is backed up by the commit first.
func (s *Store) Init(ctx context.Context, defaults InterfaceDefaults, force bool) error {
	if s.opts.ReadOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lockFile(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if s.doc.ConfigExists() && !force {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, s.doc.Path())
	}

	logger.Info("Setting up a new WireGuard configuration in %s", s.doc.Path())

	previous := s.doc.Sections()

	if err := s.initDocument(defaults); err != nil {
		s.doc.Replace(previous)
		return err
	}

	if err := s.commit(ctx); err != nil {
		if s.doc.ConfigExists() {
			if loadErr := s.doc.LoadExisting(); loadErr == nil {
				return err
			}
		}

		s.doc.Replace(previous)

		return err
	}

	return nil
}

func (s *Store) initDocument(defaults InterfaceDefaults) error {
	s.doc.Replace(nil)

	iface, err := s.doc.CreateInterface()
	if err != nil {
		return err
	}

	return applyDefaults(iface, defaults)
}

func applyDefaults(iface *wgconfig.Interface, defaults InterfaceDefaults) error {
	if len(defaults.Addresses) > 0 {
		if err := iface.SetAddresses(defaults.Addresses...); err != nil {
			return err
		}
	}

	if defaults.ListenPort > 0 {
		if err := iface.SetListenPort(defaults.ListenPort); err != nil {
			return err
		}
	}

	if defaults.PrivateKey != "" {
		if err := iface.SetPrivateKey(defaults.PrivateKey); err != nil {
			return err
		}
	}

	if defaults.Host != "" {
		if err := iface.SetHostAddress(defaults.Host); err != nil {
			return err
		}
	}

	setters := []struct {
		set      func(...string) error
		commands []string
	}{
		{iface.SetPreUp, defaults.PreUp},
		{iface.SetPostUp, defaults.PostUp},
		{iface.SetPreDown, defaults.PreDown},
		{iface.SetPostDown, defaults.PostDown},
	}

	for _, setter := range setters {
		if len(setter.commands) == 0 {
			continue
		}

		if err := setter.set(setter.commands...); err != nil {
			return err
		}
	}

	return nil
}
