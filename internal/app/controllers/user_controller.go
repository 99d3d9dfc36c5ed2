package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
)

// UserController handles the caller's profile and the staff user listing
type UserController struct {
	userService services.UserService
	logger      zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(userService services.UserService, logger zerolog.Logger) *UserController {
	return &UserController{
		userService: userService,
		logger:      logger,
	}
}

// GetMe returns the authenticated user's profile
// @Summary Get current user profile
// @Tags users
// @Produce json
// @Security CookieAuth
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "User profile"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Router /auth/me/ [get]
func (c *UserController) GetMe(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.userService.ToResponse(user)))
}

// UpdateMe updates the authenticated user's names and mobile number
// @Summary Update current user profile
// @Tags users
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Router /auth/me/ [put]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	resp, err := c.userService.UpdateMe(ctx.Request.Context(), user.ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UploadProfilePicture replaces the authenticated user's profile picture
// @Summary Upload profile picture
// @Description Accepts a jpg, jpeg or png image of at most 2MB
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param file formData file true "Image file"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Invalid or missing file"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Router /auth/me/profile-picture/ [post]
func (c *UserController) UploadProfilePicture(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)

	upload, ok := formFile(ctx, "file", models.MaxProfilePictureFileSize)
	if !ok {
		return
	}

	resp, err := c.userService.UploadProfilePicture(ctx.Request.Context(), user.ID, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListUsers returns a page of users
// @Summary List users
// @Tags users
// @Produce json
// @Security CookieAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.UserResponse}} "Users"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /auth/users/ [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page := helpers.ParsePaginationParams(ctx, helpers.UserPageSize)

	resp, err := c.userService.List(ctx.Request.Context(), page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
