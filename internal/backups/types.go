package backups

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Backup is a catalog row for one configuration snapshot on disk.
type Backup struct {
	ID       string `gorm:"type:text;primary_key" json:"id"`
	FileName string `gorm:"type:text;not null;index" json:"file_name"` // e.g. wg0.conf
	Path     string `gorm:"type:text;not null;uniqueIndex" json:"path"`
	Size     int64  `gorm:"type:integer;not null" json:"size"`
	SHA256   string `gorm:"type:text;not null" json:"sha256"`

	CreatedAt time.Time `gorm:"type:timestamp;not null;index" json:"created_at"`
}

// NewBackup describes the snapshot file at path.
func NewBackup(fileName, path string) (*Backup, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", path, err)
	}

	sum := sha256.Sum256(data)

	return &Backup{
		ID:       uuid.New().String(),
		FileName: fileName,
		Path:     path,
		Size:     int64(len(data)),
		SHA256:   hex.EncodeToString(sum[:]),
	}, nil
}
