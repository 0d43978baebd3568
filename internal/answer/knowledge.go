// ABOUTME: Knowledge-base loading for the answer client.
// ABOUTME: Reads the structured FAQ JSON produced by kb-convert; missing file means no context.

package answer

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// LoadKnowledgeBase reads the knowledge-base JSON document from path.
// A missing or empty path yields an empty string: the bot still answers,
// just without FAQ grounding. Other read failures are returned.
func LoadKnowledgeBase(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("knowledge base file not found, answering without FAQ context", "path", path)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
