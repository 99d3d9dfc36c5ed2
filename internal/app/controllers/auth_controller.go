// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/auth"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService         *services.AuthService
	userService         services.UserService
	cookies             *auth.CookieManager
	allowHeaderFallback bool
	logger              zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(
	authService *services.AuthService,
	userService services.UserService,
	cookies *auth.CookieManager,
	allowHeaderFallback bool,
	logger zerolog.Logger,
) *AuthController {
	return &AuthController{
		authService:         authService,
		userService:         userService,
		cookies:             cookies,
		allowHeaderFallback: allowHeaderFallback,
		logger:              logger,
	}
}

// tokenResponse reports lifetimes. The raw tokens only leave the cookies
// when clients are allowed to send them back as headers.
func (c *AuthController) tokenResponse(pair *auth.TokenPair) dto.TokenResponse {
	now := time.Now()
	resp := dto.TokenResponse{
		ExpiresIn: int64(pair.AccessExpiresAt.Sub(now).Round(time.Second).Seconds()),
	}
	if pair.RefreshToken != "" {
		resp.RefreshTokenExpiresIn = int64(pair.RefreshExpiresAt.Sub(now).Round(time.Second).Seconds())
	}
	if c.allowHeaderFallback {
		resp.AccessToken = pair.AccessToken
		resp.RefreshToken = pair.RefreshToken
	}
	return resp
}

// setCookies writes the access cookie and, when present, the refresh cookie
func (c *AuthController) setCookies(ctx *gin.Context, pair *auth.TokenPair) {
	c.cookies.SetAccess(ctx.Writer, pair.AccessToken)
	if pair.RefreshToken != "" {
		c.cookies.SetRefresh(ctx.Writer, pair.RefreshToken)
	}
}

// refreshToken reads the refresh cookie, falling back to the JSON body
// only when header fallback is enabled
func (c *AuthController) refreshToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(auth.RefreshTokenCookie); err == nil && token != "" {
		return token
	}
	if !c.allowHeaderFallback {
		return ""
	}
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates an active, non-staff account and sets the session cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "Registration successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register/ [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.HandleBindError(ctx, err)
		return
	}

	user, pair, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setCookies(ctx, pair)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.AuthResponse{
		Message: "Registration successful",
		Token:   c.tokenResponse(pair),
		User:    c.userService.ToResponse(user),
	}))
}

// Login handles user login
// @Summary User login
// @Description Authenticates a user and sets the access and refresh token cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format or validation error"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login/ [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	user, pair, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setCookies(ctx, pair)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AuthResponse{
		Token: c.tokenResponse(pair),
		User:  c.userService.ToResponse(user),
	}))
}

// Logout revokes the refresh token and clears the cookies
// @Summary Logout
// @Description Blacklists the refresh token and clears both cookies. Always succeeds for an authenticated caller.
// @Tags auth
// @Security CookieAuth
// @Success 204 "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Router /auth/logout/ [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	c.authService.Logout(ctx.Request.Context(), c.refreshToken(ctx))
	c.cookies.Clear(ctx.Writer)
	ctx.Status(http.StatusNoContent)
}

// RefreshToken issues a new access token, and a new refresh token when rotation is on
// @Summary Refresh access token
// @Description Exchanges the refresh token cookie for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token, honoured only with header fallback enabled"
// @Success 200 {object} dto.APIResponse{data=dto.TokenResponse} "Token refreshed"
// @Failure 400 {object} dto.ErrorResponse "Refresh token missing"
// @Failure 401 {object} dto.ErrorResponse "Invalid or expired refresh token"
// @Router /auth/token/refresh/ [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	token := c.refreshToken(ctx)
	if token == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Refresh token is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	pair, err := c.authService.Refresh(ctx.Request.Context(), token)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setCookies(ctx, pair)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.tokenResponse(pair)))
}

// ChangePassword replaces the caller's password and ends the session
// @Summary Change password
// @Description Verifies the old password, applies the password policy, revokes the refresh token and clears the cookies
// @Tags auth
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.ChangePasswordRequest true "Old and new password"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Validation error or old password mismatch"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Router /auth/password/change/ [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	refresh, _ := ctx.Cookie(auth.RefreshTokenCookie)
	if err := c.authService.ChangePassword(ctx.Request.Context(), user.ID, &req, refresh); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.cookies.Clear(ctx.Writer)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{
		Message: "Password changed, please log in again",
	}))
}
