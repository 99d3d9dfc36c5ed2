package validation

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/yigit/uniadmin/internal/pkg/apperrors"
)

var allowedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ValidateImage checks a profile picture upload and returns its content type
func ValidateImage(filename string, content []byte, maxSize int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := allowedImageExtensions[ext]
	if !ok {
		return "", apperrors.NewValidationError("file", "only jpg, jpeg and png images are allowed")
	}

	if int64(len(content)) > maxSize {
		return "", apperrors.NewValidationError("file", fmt.Sprintf("image must not exceed %dMB", maxSize>>20))
	}

	if got := http.DetectContentType(content); got != want {
		return "", apperrors.NewValidationError("file", "file content does not match its extension")
	}
	return want, nil
}
