package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
)

// readUpload buffers a multipart file of at most limit bytes. A nil header
// yields a nil upload. Larger files are rejected rather than truncated.
func readUpload(fh *multipart.FileHeader, field string, limit int64) (*services.Upload, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > limit {
		return nil, tooLarge(field, limit)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > limit {
		return nil, tooLarge(field, limit)
	}
	return &services.Upload{Filename: fh.Filename, Content: content}, nil
}

func tooLarge(field string, limit int64) error {
	return apperrors.NewValidationError(field, fmt.Sprintf("file must not exceed %d MB", limit>>20))
}

// uploadError writes a 400 for a file that could not be buffered
func uploadError(ctx *gin.Context, field string, err error) {
	if errors.Is(err, apperrors.ErrValidationFailed) {
		middleware.HandleAPIError(ctx, err)
		return
	}
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Could not read uploaded file").
		WithField(field)
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// formFile returns the required multipart file field or writes a 400
func formFile(ctx *gin.Context, field string, limit int64) (*services.Upload, bool) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid or missing file").
			WithField(field)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	upload, err := readUpload(fh, field, limit)
	if err != nil {
		uploadError(ctx, field, err)
		return nil, false
	}
	return upload, true
}
