package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/auth"
	"github.com/yigit/uniadmin/internal/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator map[string]*models.User

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, apperrors.ErrInvalidToken
}

var users = stubAuthenticator{
	"staff-token":   {ID: 1, Email: "staff@university.edu", IsStaff: true, IsActive: true},
	"regular-token": {ID: 2, Email: "user@university.edu", IsActive: true},
}

func newAuthRouter(fallback bool) *gin.Engine {
	m := middleware.NewAuthMiddleware(users, fallback, zerolog.Nop())
	r := gin.New()
	whoami := func(c *gin.Context) {
		actor := middleware.CurrentActor(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.JSON(http.StatusOK, actor)
	}
	r.GET("/required", m.RequireAuth(), whoami)
	r.GET("/optional", m.OptionalAuth(), whoami)
	r.GET("/staff", m.RequireAuth(), m.RequireStaff(), whoami)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		cookie     string
		header     string
		fallback   bool
		wantStatus int
		wantBody   string
	}{
		{name: "cookie accepted", path: "/required", cookie: "regular-token", wantStatus: http.StatusOK, wantBody: `"UserID":2`},
		{name: "missing token", path: "/required", wantStatus: http.StatusUnauthorized, wantBody: "Authentication failed"},
		{name: "invalid token", path: "/required", cookie: "bogus", wantStatus: http.StatusUnauthorized, wantBody: "Authentication failed"},
		{name: "header ignored without fallback", path: "/required", header: "Bearer regular-token", wantStatus: http.StatusUnauthorized},
		{name: "header with fallback", path: "/required", header: "Bearer regular-token", fallback: true, wantStatus: http.StatusOK},
		{name: "optional anonymous", path: "/optional", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "optional invalid is anonymous", path: "/optional", cookie: "bogus", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "optional staff", path: "/optional", cookie: "staff-token", wantStatus: http.StatusOK, wantBody: `"IsStaff":true`},
		{name: "staff route as staff", path: "/staff", cookie: "staff-token", wantStatus: http.StatusOK},
		{name: "staff route as regular", path: "/staff", cookie: "regular-token", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			newAuthRouter(tt.fallback).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{name: "validation", err: apperrors.NewValidationError("name", "name is required"), wantStatus: 400, wantCode: dto.ErrorCodeValidationFailed},
		{name: "old password", err: apperrors.NewCustomError(apperrors.ErrOldPasswordMismatch, "old password is incorrect"), wantStatus: 400, wantCode: dto.ErrorCodeValidationFailed},
		{name: "credentials", err: apperrors.ErrInvalidCredentials, wantStatus: 401, wantCode: dto.ErrorCodeInvalidCredentials},
		{name: "inactive user", err: apperrors.ErrUserInactive, wantStatus: 401, wantCode: dto.ErrorCodeUnauthorized},
		{name: "refresh", err: apperrors.ErrInvalidRefreshToken, wantStatus: 401, wantCode: dto.ErrorCodeInvalidToken},
		{name: "forbidden", err: apperrors.NewForbiddenError("no"), wantStatus: 403, wantCode: dto.ErrorCodeForbidden},
		{name: "not found", err: apperrors.NewResourceNotFoundError("course CS1 not found"), wantStatus: 404, wantCode: dto.ErrorCodeResourceNotFound},
		{name: "conflict", err: apperrors.NewConflictError("exists"), wantStatus: 409, wantCode: dto.ErrorCodeResourceAlreadyExists},
		{name: "email exists", err: apperrors.ErrEmailAlreadyExists, wantStatus: 409, wantCode: dto.ErrorCodeResourceAlreadyExists},
		{name: "capacity", err: apperrors.ErrCapacityExceeded, wantStatus: 500, wantCode: dto.ErrorCodeCapacityExceeded},
		{name: "policy", err: apperrors.ErrPolicyViolation, wantStatus: 500, wantCode: dto.ErrorCodePolicyViolation},
		{name: "storage", err: fmt.Errorf("%w: syllabus file: %w", apperrors.ErrStorage, errors.New("bucket gone")), wantStatus: 500, wantCode: dto.ErrorCodeStorageError},
		{name: "database", err: fmt.Errorf("failed to list courses: %w", &pgconn.PgError{Code: "57P01"}), wantStatus: 500, wantCode: dto.ErrorCodeDatabaseError},
		{name: "unknown", err: errors.New("boom"), wantStatus: 500, wantCode: dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			middleware.HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Empty(t, body.Error.DebugInfo)
		})
	}
}

func TestHandleAPIError_DebugInfo(t *testing.T) {
	gin.SetMode(gin.DebugMode)
	defer gin.SetMode(gin.TestMode)

	serve := func(err error) dto.ErrorResponse {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		middleware.HandleAPIError(c, err)

		var body dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	assert.Equal(t, "boom", serve(errors.New("boom")).Error.DebugInfo)
	assert.Empty(t, serve(apperrors.NewResourceNotFoundError("missing")).Error.DebugInfo)
}

func TestHandleAPIError_FieldDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	middleware.HandleAPIError(c, apperrors.NewValidationError("maximumCredit", "maximumCredit must be between 0 and 20"))

	assert.Contains(t, rec.Body.String(), `"maximumCredit":"maximumCredit must be between 0 and 20"`)
}

func TestRequestIDAndMetrics(t *testing.T) {
	reg := metrics.NewRegistry()
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Metrics(reg))
	r.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.ContextRequestIDKey)) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	id := rec.Header().Get(middleware.RequestIDHeader)
	assert.Len(t, id, 26)
	assert.Equal(t, id, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping/2", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-id")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", rec.Header().Get(middleware.RequestIDHeader))

	families, err := reg.Gatherer().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if strings.HasSuffix(mf.GetName(), "http_requests_total") {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, float64(2), mf.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CORS([]string{"https://admin.university.edu"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "GET")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("https://admin.university.edu")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.university.edu", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
