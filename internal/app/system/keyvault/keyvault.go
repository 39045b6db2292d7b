// internal/app/system/keyvault/keyvault.go

// Package keyvault seals and opens the AI provider API keys stored in user
// settings. The rest of the application only sees the Vault capability;
// plaintext keys never leave the settings feature and the planner's
// credentials lookup.
package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const nonceLen = 12

// Vault encrypts and decrypts short secrets with AES-256-GCM.
type Vault struct {
	key [32]byte
}

// New derives a vault key from the configured secret. Any non-empty secret
// is accepted; it is hashed to the AES-256 key length.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, errors.New("keyvault: secret must not be empty")
	}
	return &Vault{key: sha256.Sum256([]byte(secret))}, nil
}

// Seal encrypts plaintext and returns a base64 string safe to persist.
// Sealing an empty string returns an empty string.
func (v *Vault) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := v.aead()
	if err != nil {
		return "", err
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("random nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Opening an empty string returns
// an empty string.
func (v *Vault) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode sealed key: %w", err)
	}
	if len(raw) < nonceLen {
		return "", errors.New("sealed value too short")
	}
	gcm, err := v.aead()
	if err != nil {
		return "", err
	}
	plaintext, err := gcm.Open(nil, raw[:nonceLen], raw[nonceLen:], nil)
	if err != nil {
		return "", fmt.Errorf("open sealed key: %w", err)
	}
	return string(plaintext), nil
}

func (v *Vault) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key[:])
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
