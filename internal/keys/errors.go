package keys

import "errors"

var (
	ErrInvalidKeyEncoding = errors.New("key is not valid base64")
	ErrInvalidKeyLength   = errors.New("key must be 32 bytes")
)
