package wgconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wgconf/internal/logger"
)

// backupTagLayout is an en-US locale date and time. Its separators are
// normalized to underscores, giving e.g. 10_19_2026_3_04_05_PM.
const backupTagLayout = "1/2/2006 3:04:05 PM"

var backupTagReplacer = strings.NewReplacer("/", "_", ":", "_", " ", "_")

func (d *Document) backupTag() string {
	return backupTagReplacer.Replace(d.now().Format(backupTagLayout))
}

func (d *Document) snapshotPath() string {
	base := filepath.Join(d.BackupPath(), d.fileName+"_"+d.backupTag())
	path := base

	for n := 1; ; n++ {
		if _, err := os.Lstat(path); err != nil {
			return path
		}

		path = fmt.Sprintf("%s_%d", base, n)
	}
}

// BackupFSCopy copies the configuration file as it is on disk, not as it is
// in memory, into a timestamped snapshot and into the latest backup file. It
// returns the snapshot path.
func (d *Document) BackupFSCopy() (string, error) {
	current, err := d.readFile()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(d.BackupPath(), 0700); err != nil {
		return "", ioError("create", d.BackupPath(), err)
	}

	snapshot := d.snapshotPath()

	if err := os.WriteFile(snapshot, current, 0600); err != nil {
		return "", ioError("write", snapshot, err)
	}

	if err := os.WriteFile(d.LatestBackupPath(), current, 0600); err != nil {
		return "", ioError("write", d.LatestBackupPath(), err)
	}

	logger.Info("Backed up %s to %s", d.Path(), snapshot)

	return snapshot, nil
}

func (d *Document) ReadLatestBackup() ([]byte, error) {
	data, err := os.ReadFile(d.LatestBackupPath())
	if err != nil {
		return nil, ioError("read", d.LatestBackupPath(), err)
	}

	return data, nil
}

// Revert overwrites the configuration file with the latest backup. The
// in-memory sections are left alone; call LoadExisting to pick the restored
// file up.
func (d *Document) Revert() error {
	contents, err := d.ReadLatestBackup()
	if err != nil {
		return err
	}

	if err := os.WriteFile(d.Path(), contents, 0600); err != nil {
		return ioError("write", d.Path(), err)
	}

	logger.Warn("Reverted %s to %s", d.Path(), d.LatestBackupPath())

	return nil
}
