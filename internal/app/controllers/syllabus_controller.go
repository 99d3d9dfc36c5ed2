package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
)

// SyllabusController handles syllabus uploads and listings
type SyllabusController struct {
	syllabusService *services.SyllabusService
}

// NewSyllabusController creates a new SyllabusController
func NewSyllabusController(syllabusService *services.SyllabusService) *SyllabusController {
	return &SyllabusController{syllabusService: syllabusService}
}

// syllabusID parses the path id. Non-numeric ids cannot exist.
func syllabusID(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewResourceNotFoundError("syllabus not found")
	}
	return id, nil
}

// bindSyllabusForm binds the multipart body and buffers the optional file
func bindSyllabusForm(ctx *gin.Context) (*dto.SyllabusForm, *services.Upload, bool) {
	var form dto.SyllabusForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.HandleBindError(ctx, err)
		return nil, nil, false
	}
	upload, err := readUpload(form.File, "file", models.MaxSyllabusFileSize)
	if err != nil {
		uploadError(ctx, "file", err)
		return nil, nil, false
	}
	return &form, upload, true
}

// ListSyllabi returns a page of syllabi
// @Summary List syllabi
// @Description Paginated, 5 per page by default and at most 50. Staff viewers also see soft-deleted syllabi.
// @Tags syllabi
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 50)" default(5)
// @Param course query string false "Course code"
// @Param version query string false "Syllabus version"
// @Param is_deleted query bool false "Filter on the deleted flag"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Syllabus}} "Syllabi"
// @Router /courses/syllabi/ [get]
func (c *SyllabusController) ListSyllabi(ctx *gin.Context) {
	var filter dto.SyllabusFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	page := helpers.ParsePaginationParams(ctx, helpers.SyllabusPageSize)

	resp, err := c.syllabusService.List(ctx.Request.Context(), filter, page, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateSyllabus uploads a syllabus PDF
// @Summary Upload a syllabus
// @Description The file must be a PDF of at most 5MB
// @Tags syllabi
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param course formData string true "Course code"
// @Param version formData string false "Version"
// @Param description formData string false "Description"
// @Param file formData file true "Syllabus PDF"
// @Success 201 {object} dto.APIResponse{data=models.Syllabus} "Syllabus created"
// @Failure 400 {object} dto.ErrorResponse "Invalid form data or file"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 409 {object} dto.ErrorResponse "Version already exists for the course"
// @Router /courses/syllabi/ [post]
func (c *SyllabusController) CreateSyllabus(ctx *gin.Context) {
	form, upload, ok := bindSyllabusForm(ctx)
	if !ok {
		return
	}

	syllabus, err := c.syllabusService.Create(ctx.Request.Context(), form, upload, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(syllabus))
}

// GetSyllabus retrieves a syllabus by ID
// @Summary Get syllabus by ID
// @Tags syllabi
// @Produce json
// @Param id path int true "Syllabus ID"
// @Success 200 {object} dto.APIResponse{data=models.Syllabus} "Syllabus"
// @Failure 404 {object} dto.ErrorResponse "Syllabus not found"
// @Router /courses/syllabi/{id}/ [get]
func (c *SyllabusController) GetSyllabus(ctx *gin.Context) {
	id, err := syllabusID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	syllabus, err := c.syllabusService.Get(ctx.Request.Context(), id, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(syllabus))
}

// UpdateSyllabus updates the metadata and optionally replaces the file
// @Summary Update syllabus
// @Tags syllabi
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param id path int true "Syllabus ID"
// @Param course formData string true "Course code"
// @Param version formData string false "Version"
// @Param description formData string false "Description"
// @Param file formData file false "Replacement PDF"
// @Success 200 {object} dto.APIResponse{data=models.Syllabus} "Syllabus updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid form data or file"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 404 {object} dto.ErrorResponse "Syllabus not found"
// @Router /courses/syllabi/{id}/ [put]
func (c *SyllabusController) UpdateSyllabus(ctx *gin.Context) {
	id, err := syllabusID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	form, upload, ok := bindSyllabusForm(ctx)
	if !ok {
		return
	}

	syllabus, err := c.syllabusService.Update(ctx.Request.Context(), id, form, upload, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(syllabus))
}

// DeleteSyllabus soft-deletes a syllabus. The stored file is kept.
// @Summary Delete syllabus
// @Tags syllabi
// @Security CookieAuth
// @Param id path int true "Syllabus ID"
// @Success 204 "Syllabus deleted"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 404 {object} dto.ErrorResponse "Syllabus not found"
// @Router /courses/syllabi/{id}/ [delete]
func (c *SyllabusController) DeleteSyllabus(ctx *gin.Context) {
	id, err := syllabusID(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.syllabusService.Delete(ctx.Request.Context(), id, middleware.CurrentActor(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
