package filestorage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/uniadmin/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory on disk
	baseURL  string // URL prefix the root is served under
}

// NewLocalStorage creates a new LocalStorage instance and ensures basePath exists.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// BasePath returns the directory served for this storage
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Save writes data below dir
func (ls *LocalStorage) Save(_ context.Context, dir, originalName string, data []byte, _ string) (string, error) {
	key := newKey(dir, originalName)
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(dstPath), os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write uploaded file")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", originalName).Str("key", key).Msg("File saved successfully")
	return key, nil
}

// Delete removes a stored file. Deleting a missing file succeeds.
func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	cleaned, ok := cleanKey(key)
	if !ok {
		return fmt.Errorf("invalid file key: %q", key)
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(cleaned))
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// URL returns baseURL/key
func (ls *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return ls.baseURL + "/" + strings.TrimLeft(key, "/")
}
