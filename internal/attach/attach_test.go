// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("line one\nline two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tf, err := ReadTextFile(path)
	if err != nil {
		t.Fatalf("ReadTextFile failed: %v", err)
	}
	if tf.Name != "notes.txt" {
		t.Errorf("Name = %q", tf.Name)
	}
	if tf.Content != "line one\nline two\n" {
		t.Errorf("Content = %q", tf.Content)
	}
}

func TestReadTextFile_RejectsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadTextFile(path)
	if !errors.Is(err, ErrNotText) {
		t.Errorf("expected ErrNotText, got %v", err)
	}
}

func TestReadTextFile_MissingFile(t *testing.T) {
	_, err := ReadTextFile(filepath.Join(t.TempDir(), "absent.txt"))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected *IOError, got %T: %v", err, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("IOError should unwrap to the os error, got %v", err)
	}
}

func TestReadImageFile(t *testing.T) {
	dir := t.TempDir()
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	path := filepath.Join(dir, "photo.PNG")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := ReadImageFile(path)
	if err != nil {
		t.Fatalf("ReadImageFile failed: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Errorf("MIMEType = %q (extension match must be case-insensitive)", img.MIMEType)
	}
	decoded, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		t.Fatalf("Base64 does not decode: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Error("round-tripped image bytes differ")
	}
}

func TestReadImageFile_UnsupportedExtension(t *testing.T) {
	_, err := ReadImageFile("diagram.svg")
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestIsImagePath(t *testing.T) {
	if !IsImagePath("a/b/c.jpeg") {
		t.Error("jpeg should be an image path")
	}
	if IsImagePath("a/b/c.txt") {
		t.Error("txt is not an image path")
	}
}
