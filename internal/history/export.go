// Package history exports a chat transcript to Markdown or JSON files.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/stormchat/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// Meta describes the session a transcript came from
type Meta struct {
	Model      string
	ExportedAt time.Time
}

// FormatForPath picks JSON for .json files and Markdown otherwise
func FormatForPath(path string) ExportFormat {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ExportFormatJSON
	}
	return ExportFormatMarkdown
}

// DefaultFileName names an export after its timestamp
func DefaultFileName(at time.Time) string {
	return "stormchat-" + at.Format("20060102-150405") + ".md"
}

// ExportToMarkdown renders the transcript as a Markdown document
func ExportToMarkdown(msgs []models.Message, meta Meta) string {
	var sb strings.Builder

	sb.WriteString("# StormChat conversation\n\n")

	if meta.Model != "" {
		sb.WriteString("**Model:** ")
		sb.WriteString(meta.Model)
		sb.WriteString("\n")
	}
	if !meta.ExportedAt.IsZero() {
		sb.WriteString("**Exported:** ")
		sb.WriteString(meta.ExportedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d", len(msgs)))
	sb.WriteString("\n\n---\n\n")

	for i, msg := range msgs {
		role := "User"
		if msg.IsAssistant() {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(msg.Text)
		sb.WriteString("\n")

		// Separator between messages (except last)
		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type exportConversation struct {
	Model      string          `json:"model,omitempty"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []exportMessage `json:"messages"`
}

// ExportToJSON encodes the transcript with user/assistant roles
func ExportToJSON(msgs []models.Message, meta Meta) ([]byte, error) {
	export := exportConversation{
		Model:      meta.Model,
		ExportedAt: meta.ExportedAt,
		Messages:   make([]exportMessage, len(msgs)),
	}

	for i, msg := range msgs {
		role := "user"
		if msg.IsAssistant() {
			role = "assistant"
		}
		export.Messages[i] = exportMessage{Role: role, Content: msg.Text}
	}

	return json.MarshalIndent(export, "", "  ")
}

// WriteFile exports the transcript to path in the format its extension implies
func WriteFile(path string, msgs []models.Message, meta Meta) error {
	if len(msgs) == 0 {
		return fmt.Errorf("nothing to export")
	}

	var data []byte
	switch FormatForPath(path) {
	case ExportFormatJSON:
		var err error
		data, err = ExportToJSON(msgs, meta)
		if err != nil {
			return fmt.Errorf("failed to encode transcript: %w", err)
		}
	default:
		data = []byte(ExportToMarkdown(msgs, meta))
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
