package backups

import (
	"errors"
	"fmt"
	"os"

	"wgconf/internal/logger"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(backup *Backup) error {
	return r.db.Save(backup).Error
}

// Record catalogs the snapshot written at path for the given config file.
func (r *Repository) Record(fileName, path string) (*Backup, error) {
	backup, err := NewBackup(fileName, path)

	if err != nil {
		return nil, err
	}

	if err := r.Save(backup); err != nil {
		return nil, err
	}

	return backup, nil
}

// List returns the snapshots of fileName, newest first.
func (r *Repository) List(fileName string) ([]*Backup, error) {
	var backups []*Backup

	if err := r.db.Where("file_name = ?", fileName).Order("created_at DESC").Find(&backups).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return backups, nil
		}

		return nil, err
	}

	return backups, nil
}

func (r *Repository) Get(id string) (*Backup, error) {
	var backup Backup

	err := r.db.Where("id = ?", id).First(&backup).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &backup, nil
}

func (r *Repository) Latest(fileName string) (*Backup, error) {
	var backup Backup

	err := r.db.Where("file_name = ?", fileName).Order("created_at DESC").First(&backup).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &backup, nil
}

// Trim keeps the newest keep snapshots of fileName and deletes the rest,
// files and catalog rows alike. It returns the removed backups.
func (r *Repository) Trim(fileName string, keep int) ([]*Backup, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}

	all, err := r.List(fileName)

	if err != nil {
		return nil, err
	}

	if len(all) <= keep {
		return nil, nil
	}

	removed := all[keep:]

	for _, backup := range removed {
		if err := os.Remove(backup.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove backup %s: %w", backup.Path, err)
		}

		if err := r.db.Delete(&Backup{}, "id = ?", backup.ID).Error; err != nil {
			return nil, err
		}

		logger.Debug("Trimmed backup %s", backup.Path)
	}

	return removed, nil
}
