package filestorage

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStorage stores uploaded documents under slash separated keys
// such as "syllabi/2025/01/31/<uuid>.pdf".
type FileStorage interface {
	// Save writes data under dir with a generated name keeping the extension
	// of originalName, and returns the storage key.
	Save(ctx context.Context, dir, originalName string, data []byte, contentType string) (string, error)

	// Delete removes a key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of a key
	URL(key string) string
}

// newKey builds a collision free key inside dir
func newKey(dir, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return path.Join(dir, uuid.New().String()+ext)
}

// cleanKey rejects keys escaping the storage root
func cleanKey(key string) (string, bool) {
	cleaned := path.Clean("/" + strings.TrimSpace(key))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	return cleaned, true
}
