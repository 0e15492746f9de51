// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Tests for the encrypted KV wrapper:
// - Key derivation via Argon2id (salt-dependent)
// - XChaCha20-Poly1305 sealing and opening
// - Nonce uniqueness
// - Round-trip through the full registry

package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptedKV_RoundTrip(t *testing.T) {
	ekv, err := NewEncryptedKV(NewMemoryKV(), "correct horse")
	require.NoError(t, err)
	kvContract(t, ekv)
}

func TestEncryptedKV_CiphertextAtRest(t *testing.T) {
	inner := NewMemoryKV()
	ekv, err := NewEncryptedKV(inner, "correct horse")
	require.NoError(t, err)

	plaintext := []byte(`{"sessions":[{"title":"secret plans"}]}`)
	require.NoError(t, ekv.Put("k", plaintext))

	raw, err := inner.Get("k")
	require.NoError(t, err)
	require.False(t, bytes.Contains(raw, []byte("secret plans")), "plaintext visible in the stored blob")
	require.True(t, bytes.HasPrefix(raw, []byte("GCV1")), "sealed blob missing magic prefix")
}

func TestEncryptedKV_WrongPassphrase(t *testing.T) {
	inner := NewMemoryKV()
	ekv, err := NewEncryptedKV(inner, "right")
	require.NoError(t, err)
	require.NoError(t, ekv.Put("k", []byte("value")))

	wrong, err := NewEncryptedKV(inner, "wrong")
	require.NoError(t, err)
	_, err = wrong.Get("k")
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestEncryptedKV_EmptyPassphraseRejected(t *testing.T) {
	_, err := NewEncryptedKV(NewMemoryKV(), "")
	require.Error(t, err, "empty passphrase must be rejected")
}

func TestEncryptedKV_NondeterministicSealing(t *testing.T) {
	inner := NewMemoryKV()
	ekv, err := NewEncryptedKV(inner, "pass")
	require.NoError(t, err)

	require.NoError(t, ekv.Put("a", []byte("same")))
	first, err := inner.Get("a")
	require.NoError(t, err)
	require.NoError(t, ekv.Put("a", []byte("same")))
	second, err := inner.Get("a")
	require.NoError(t, err)

	require.False(t, bytes.Equal(first, second), "sealing the same plaintext twice must not repeat ciphertext")
}

func TestRegistry_OverEncryptedStore(t *testing.T) {
	kv := NewMemoryKV()
	ekv, err := NewEncryptedKV(kv, "pass")
	require.NoError(t, err)

	r, err := NewRegistry(ekv)
	require.NoError(t, err)
	id := r.ActiveID()

	reopened, err := NewEncryptedKV(kv, "pass")
	require.NoError(t, err)
	reloaded, err := NewRegistry(reopened)
	require.NoError(t, err)
	require.Equal(t, id, reloaded.ActiveID(), "registry did not round-trip through the encrypted store")
}
