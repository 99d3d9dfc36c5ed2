package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/dberrors"
	"github.com/yigit/uniadmin/internal/pkg/logger"
)

// HandleAPIError maps application errors to status codes and writes the
// standard error envelope
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && len(customErr.Details) > 0 && status < http.StatusInternalServerError {
		detail = detail.WithDetails(customErr.Details)
	}

	if status >= http.StatusInternalServerError {
		if gin.IsDebugging() {
			detail = detail.WithDebugInfo("%v", err)
		}
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("code", string(detail.Code)).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// HandleBindError reports a request that failed binding or validation tags
func HandleBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}

// message prefers the human message of a CustomError
func message(err error, fallback string) string {
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		return customErr.Message
	}
	return fallback
}

func classify(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message(err, "Validation failed"))
	case errors.Is(err, apperrors.ErrOldPasswordMismatch):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message(err, "Old password is incorrect")).
			WithField("oldPassword")
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, message(err, "Bad request"))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid email or password")
	case errors.Is(err, apperrors.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid or expired refresh token")
	case apperrors.Is(err, apperrors.ErrAuthenticationRequired,
		apperrors.ErrInvalidToken, apperrors.ErrUserInactive, apperrors.ErrUserNotFound):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication failed")

	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, message(err, "Permission denied"))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message(err, "Resource not found"))
	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists, apperrors.ErrEmailAlreadyExists, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message(err, "Resource already exists"))

	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeCapacityExceeded, "Department identifier space is exhausted").
			WithSeverity(dto.ErrorSeverityCritical)
	case errors.Is(err, apperrors.ErrPolicyViolation):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodePolicyViolation, "Department identifiers are assigned by the server").
			WithSeverity(dto.ErrorSeverityCritical)
	case errors.Is(err, apperrors.ErrStorage):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeStorageError, "File storage is unavailable")
	case dberrors.IsDatabaseError(err):
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database error")
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}
