package session

import (
	"fmt"
	"os"

	"github.com/cbroglie/mustache"
	"github.com/neilberkman/ragchat/internal/core/models"
)

// DefaultTranscriptTemplate renders a chat as markdown
const DefaultTranscriptTemplate = `# Chat {{session_id}}
{{#has_files}}

Files: {{{files}}}
{{/has_files}}
{{#messages}}

## {{label}} ({{clock}})

{{{content}}}
{{/messages}}
`

// RenderTranscript renders the conversation with a mustache template.
// An empty template selects DefaultTranscriptTemplate.
func RenderTranscript(tmpl string, s models.Session, files []models.Attachment, messages []models.Message) (string, error) {
	if tmpl == "" {
		tmpl = DefaultTranscriptTemplate
	}

	entries := make([]map[string]interface{}, len(messages))
	for i, m := range messages {
		label := "You"
		if m.Role == models.RoleBot {
			label = "Assistant"
		}
		entries[i] = map[string]interface{}{
			"label":   label,
			"role":    string(m.Role),
			"clock":   m.Clock(),
			"content": m.Content,
		}
	}

	data := map[string]interface{}{
		"session_id": s.ID,
		"file_hint":  s.FileHint,
		"has_files":  len(files) > 0,
		"files":      models.AttachmentNames(files),
		"messages":   entries,
	}

	out, err := mustache.Render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render transcript: %w", err)
	}
	return out, nil
}

// ExportTranscript writes the rendered conversation of c to path
func ExportTranscript(c *Chat, tmpl, path string) error {
	out, err := RenderTranscript(tmpl, c.Session(), c.Files(), c.Messages())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
