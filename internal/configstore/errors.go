package configstore

import "errors"

var (
	ErrReadOnly           = errors.New("configuration is read-only")
	ErrLocked             = errors.New("configuration file is locked by another process")
	ErrAlreadyInitialized = errors.New("configuration already exists")
)
