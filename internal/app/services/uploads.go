package services

import (
	"context"

	"github.com/yigit/uniadmin/internal/pkg/filestorage"
	"github.com/yigit/uniadmin/internal/pkg/logger"
)

// Upload is a file received from a client
type Upload struct {
	Filename string
	Content  []byte
}

// discardFile removes a stored file that is no longer referenced.
// Failures only leave an orphan behind and are logged.
func discardFile(ctx context.Context, storage filestorage.FileStorage, key string) {
	if key == "" {
		return
	}
	if err := storage.Delete(ctx, key); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to remove unreferenced file")
	}
}
