// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"path/filepath"
	"testing"
)

// kvContract exercises the behavior every KV implementation must share.
func kvContract(t *testing.T, kv KV) {
	t.Helper()

	if _, err := kv.Get("absent"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get(absent): expected ErrKeyNotFound, got %v", err)
	}

	if err := kv.Put("k", []byte("v1")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := kv.Get("k")
	if err != nil || string(got) != "v1" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	// Put replaces.
	kv.Put("k", []byte("v2"))
	got, _ = kv.Get("k")
	if string(got) != "v2" {
		t.Errorf("after overwrite Get = %q", got)
	}

	// Delete is idempotent.
	if err := kv.Delete("k"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Errorf("second Delete should not fail: %v", err)
	}
	if _, err := kv.Get("k"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("deleted key still readable")
	}
}

func TestMemoryKV_Contract(t *testing.T) {
	kvContract(t, NewMemoryKV())
}

func TestSQLiteKV_Contract(t *testing.T) {
	kv, err := OpenSQLiteKV(filepath.Join(t.TempDir(), "data", "gemchat.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteKV failed: %v", err)
	}
	defer kv.Close()
	kvContract(t, kv)
}

func TestSQLiteKV_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gemchat.db")

	kv, err := OpenSQLiteKV(path)
	if err != nil {
		t.Fatal(err)
	}
	kv.Put("k", []byte("persisted"))
	kv.Close()

	kv2, err := OpenSQLiteKV(path)
	if err != nil {
		t.Fatal(err)
	}
	defer kv2.Close()
	got, err := kv2.Get("k")
	if err != nil || string(got) != "persisted" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestMemoryKV_GetReturnsCopy(t *testing.T) {
	kv := NewMemoryKV()
	kv.Put("k", []byte("abc"))
	got, _ := kv.Get("k")
	got[0] = 'X'
	again, _ := kv.Get("k")
	if string(again) != "abc" {
		t.Error("mutating a returned value leaked into the store")
	}
}
