// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/gemchat-tui/internal/model"
)

// JSONExporter renders a session as pretty-printed JSON, the same shape the
// registry persists.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// Export marshals the session.
func (e *JSONExporter) Export(s *model.Session) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
