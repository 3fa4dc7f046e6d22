package keys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// KeyLen is the length of a WireGuard key in bytes.
const KeyLen = 32

// Key is a Curve25519 key as used by WireGuard.
type Key [KeyLen]byte

func newKey(b []byte) (Key, error) {
	if len(b) != KeyLen {
		return Key{}, fmt.Errorf("%w: got %d", ErrInvalidKeyLength, len(b))
	}

	var k Key
	copy(k[:], b)

	return k, nil
}

// ParseKey parses a base64-encoded key as it appears in a configuration file.
func ParseKey(s string) (Key, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidKeyEncoding, err)
	}

	return newKey(b)
}

func (k Key) String() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// PublicKey derives the public key for a private key.
func (k Key) PublicKey() (Key, error) {
	pub, err := curve25519.X25519(k[:], curve25519.Basepoint)
	if err != nil {
		return Key{}, fmt.Errorf("failed to derive public key: %w", err)
	}

	return newKey(pub)
}

// PublicKeyFor derives the base64 public key for a base64 private key.
func PublicKeyFor(privateKey string) (string, error) {
	priv, err := ParseKey(privateKey)
	if err != nil {
		return "", err
	}

	pub, err := priv.PublicKey()
	if err != nil {
		return "", err
	}

	return pub.String(), nil
}

// Validate reports whether s is a well-formed key.
func Validate(s string) error {
	_, err := ParseKey(s)
	return err
}

// GeneratePrivateKey returns a new clamped Curve25519 private key.
func GeneratePrivateKey() (Key, error) {
	k, err := GeneratePresharedKey()
	if err != nil {
		return Key{}, err
	}

	k[0] &= 248
	k[31] &= 127
	k[31] |= 64

	return k, nil
}

// GeneratePresharedKey returns 32 random bytes.
func GeneratePresharedKey() (Key, error) {
	var k Key

	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, fmt.Errorf("failed to generate key: %w", err)
	}

	return k, nil
}

// GenerateKeyPair returns a new base64 private key and its public key.
func GenerateKeyPair() (string, string, error) {
	priv, err := GeneratePrivateKey()
	if err != nil {
		return "", "", err
	}

	pub, err := priv.PublicKey()
	if err != nil {
		return "", "", err
	}

	return priv.String(), pub.String(), nil
}
