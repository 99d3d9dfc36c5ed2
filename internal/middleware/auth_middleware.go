package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
)

// Authenticator resolves an access token to an active user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware authenticates requests from the access token cookie and,
// when enabled, from a bearer Authorization header.
type AuthMiddleware struct {
	authenticator       Authenticator
	allowHeaderFallback bool
	logger              zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, allowHeaderFallback bool, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator:       authenticator,
		allowHeaderFallback: allowHeaderFallback,
		logger:              logger,
	}
}

// accessToken reads the cookie first and the header second
func (m *AuthMiddleware) accessToken(c *gin.Context) string {
	if token, err := c.Cookie(auth.AccessTokenCookie); err == nil && token != "" {
		return token
	}
	if !m.allowHeaderFallback {
		return ""
	}
	token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return ""
	}
	return token
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*models.User, bool) {
	token := m.accessToken(c)
	if token == "" {
		return nil, false
	}

	user, err := m.authenticator.Authenticate(c.Request.Context(), token)
	if err != nil {
		m.logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Authentication failed")
		return nil, false
	}

	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	return user, true
}

// unauthorized writes the single body used for every authentication
// failure so callers cannot tell the causes apart
func unauthorized(c *gin.Context) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication failed")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// RequireAuth rejects requests without a valid session
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := m.authenticate(c); !ok {
			unauthorized(c)
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when possible and otherwise lets the
// request through as anonymous
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.authenticate(c)
		c.Next()
	}
}

// RequireStaff must run after RequireAuth
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			unauthorized(c)
			return
		}
		if !user.IsStaff && !user.IsSuperuser {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("Staff privileges are required for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentActor returns the audit identity of the caller, nil for anonymous requests
func CurrentActor(c *gin.Context) *models.Actor {
	user := CurrentUser(c)
	if user == nil {
		return nil
	}
	return user.Actor()
}
