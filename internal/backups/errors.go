package backups

import "errors"

var (
	ErrBackupNotFound = errors.New("backup not found")
)
