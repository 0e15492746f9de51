// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// LIMITS
// =============================================================================

const (
	// MaxTextFileSize caps text attachments spliced into the prompt.
	MaxTextFileSize = 1 * 1024 * 1024

	// MaxImageFileSize caps inline image attachments.
	MaxImageFileSize = 8 * 1024 * 1024
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTooLarge indicates the file exceeds the attachment size cap.
	ErrTooLarge = errors.New("file too large to attach")

	// ErrNotText indicates the file does not look like UTF-8 text.
	ErrNotText = errors.New("file is not text")

	// ErrUnsupportedImage indicates an image format the API does not accept.
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// IOError wraps a filesystem failure with the path that caused it.
type IOError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error for errors.Is checks.
func (e *IOError) Unwrap() error {
	return e.Err
}

// =============================================================================
// TEXT FILES
// =============================================================================

// TextFile is a loaded text attachment.
type TextFile struct {
	Name    string
	Content string
}

// ReadTextFile loads a text file for prompt splicing. Binary content and
// oversized files are rejected.
func ReadTextFile(path string) (*TextFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	if info.Size() > MaxTextFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotText, path)
	}

	return &TextFile{
		Name:    filepath.Base(path),
		Content: string(data),
	}, nil
}

// =============================================================================
// IMAGES
// =============================================================================

// ImageFile is a loaded image attachment, base64-encoded for inline data.
type ImageFile struct {
	Name     string
	MIMEType string
	Base64   string
}

// imageMIMETypes maps file extensions to the MIME types Gemini accepts.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ReadImageFile loads and encodes an image attachment.
func ReadImageFile(path string) (*ImageFile, error) {
	mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	if info.Size() > MaxImageFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, path, info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	return &ImageFile{
		Name:     filepath.Base(path),
		MIMEType: mime,
		Base64:   base64.StdEncoding.EncodeToString(data),
	}, nil
}

// IsImagePath reports whether the path has a supported image extension.
func IsImagePath(path string) bool {
	_, ok := imageMIMETypes[strings.ToLower(filepath.Ext(path))]
	return ok
}
