// Package sealer encrypts credential secrets at rest with AES-256-GCM. It is
// shared by every store backend so records written by one can be read by
// the operator CLI regardless of backend.
package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

// sealedPrefix marks values produced by Seal. Values without it were written
// while encryption was disabled and are returned unchanged by Open.
const sealedPrefix = "v1:"

// ErrKeyRequired is returned by Open when a sealed value is read by a
// Sealer that has no key.
var ErrKeyRequired = errors.New("sealed credential found but no secret key is configured")

// Sealer encrypts and decrypts secret strings. The zero value (nil key)
// stores values in plaintext.
type Sealer struct {
	aead cipher.AEAD
}

// New creates a Sealer. key must be 32 bytes for AES-256-GCM, or nil to
// disable encryption.
func New(key []byte) (*Sealer, error) {
	if key == nil {
		return &Sealer{}, nil
	}
	if len(key) != 32 {
		return nil, driven.ErrEncryptionKeyInvalid
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// Enabled reports whether values are encrypted.
func (s *Sealer) Enabled() bool {
	return s.aead != nil
}

// Seal encrypts plaintext and returns "v1:" followed by base64 of
// nonce || ciphertext || tag. Without a key, plaintext is returned as is.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if s.aead == nil || plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal.
func (s *Sealer) Open(stored string) (string, error) {
	encoded, sealed := strings.CutPrefix(stored, sealedPrefix)
	if !sealed {
		return stored, nil
	}
	if s.aead == nil {
		return "", ErrKeyRequired
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}
	return string(plaintext), nil
}
