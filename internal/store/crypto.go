// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// =============================================================================
// ENCRYPTED KV WRAPPER
// =============================================================================

// Blob layout: magic(4) | salt(16) | nonce(24) | ciphertext.
var encryptedMagic = []byte("GCV1")

const encryptedSaltSize = 16

// ErrDecryptFailed indicates the passphrase is wrong or the blob is damaged.
var ErrDecryptFailed = errors.New("decryption failed")

// Argon2id parameters. Interactive-strength: derivation happens once per
// read/write of the registry blob, not per keystroke.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// EncryptedKV wraps another KV and seals every value with a key derived
// from a passphrase. Each value carries its own salt and nonce, so the same
// plaintext never produces the same ciphertext twice.
type EncryptedKV struct {
	inner      KV
	passphrase []byte
}

// NewEncryptedKV wraps inner with passphrase-based encryption.
func NewEncryptedKV(inner KV, passphrase string) (*EncryptedKV, error) {
	if passphrase == "" {
		return nil, errors.New("encryption passphrase must not be empty")
	}
	return &EncryptedKV{inner: inner, passphrase: []byte(passphrase)}, nil
}

// deriveKey stretches the passphrase with the per-value salt.
func (e *EncryptedKV) deriveKey(salt []byte) []byte {
	return argon2.IDKey(e.passphrase, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

// Get fetches and decrypts the value for key.
func (e *EncryptedKV) Get(key string) ([]byte, error) {
	sealed, err := e.inner.Get(key)
	if err != nil {
		return nil, err
	}

	header := len(encryptedMagic) + encryptedSaltSize + chacha20poly1305.NonceSizeX
	if len(sealed) < header || string(sealed[:len(encryptedMagic)]) != string(encryptedMagic) {
		return nil, ErrDecryptFailed
	}
	salt := sealed[len(encryptedMagic) : len(encryptedMagic)+encryptedSaltSize]
	nonce := sealed[len(encryptedMagic)+encryptedSaltSize : header]
	ciphertext := sealed[header:]

	aead, err := chacha20poly1305.NewX(e.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("cipher init failed: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// Put encrypts value and stores the sealed blob under key.
func (e *EncryptedKV) Put(key string, value []byte) error {
	salt := make([]byte, encryptedSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := chacha20poly1305.NewX(e.deriveKey(salt))
	if err != nil {
		return fmt.Errorf("cipher init failed: %w", err)
	}

	sealed := make([]byte, 0, len(encryptedMagic)+len(salt)+len(nonce)+len(value)+aead.Overhead())
	sealed = append(sealed, encryptedMagic...)
	sealed = append(sealed, salt...)
	sealed = append(sealed, nonce...)
	sealed = aead.Seal(sealed, nonce, value, nil)

	return e.inner.Put(key, sealed)
}

// Delete removes key from the underlying store.
func (e *EncryptedKV) Delete(key string) error {
	return e.inner.Delete(key)
}

// Close closes the underlying store.
func (e *EncryptedKV) Close() error {
	return e.inner.Close()
}
