package profiles

import "errors"

var (
	ErrNoPrivateKey = errors.New("peer private key is not stored; only peers created here can be exported")
)
