package api

import "errors"

var (
	ErrUnauthorized     = errors.New("not logged in")
	ErrInvalidClientRef = errors.New("client reference is not valid hex")
	ErrInvalidBody      = errors.New("invalid request body")
	ErrBackupsDisabled  = errors.New("backups are disabled")
)
