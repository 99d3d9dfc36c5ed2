package controllers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/spreadsheet"
)

// AdminController serves the staff reference data import and export endpoints
type AdminController struct {
	spreadsheetService *services.SpreadsheetService
	logger             zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(spreadsheetService *services.SpreadsheetService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		spreadsheetService: spreadsheetService,
		logger:             logger,
	}
}

type exportFunc func(ctx context.Context, f spreadsheet.Format) (*services.Export, error)

type importFunc func(ctx context.Context, r io.Reader, f spreadsheet.Format, actor *models.Actor) (*dto.ImportResult, error)

func unsupportedFormat(ctx *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Unsupported format, expected csv or xlsx").
		WithField("format").
		WithDetails(err.Error())
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

func (c *AdminController) export(ctx *gin.Context, fn exportFunc) {
	format, err := spreadsheet.ParseFormat(ctx.Query("format"))
	if err != nil {
		unsupportedFormat(ctx, err)
		return
	}

	export, err := fn(ctx.Request.Context(), format)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	ctx.Data(http.StatusOK, export.ContentType, export.Data)
}

// importFile reads the multipart file. An explicit format query parameter
// wins over the file extension.
func (c *AdminController) importFile(ctx *gin.Context, fn importFunc) {
	upload, ok := formFile(ctx, "file", spreadsheet.MaxFileSize)
	if !ok {
		return
	}

	var format spreadsheet.Format
	var err error
	if q := ctx.Query("format"); q != "" {
		format, err = spreadsheet.ParseFormat(q)
	} else {
		format, err = spreadsheet.FormatFromFilename(upload.Filename)
	}
	if err != nil {
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			unsupportedFormat(ctx, err)
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	result, err := fn(ctx.Request.Context(), bytes.NewReader(upload.Content), format, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Str("path", ctx.FullPath()).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("rejected", len(result.Errors)).
		Msg("Reference data imported")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// ExportDepartments downloads every department
// @Summary Export departments
// @Tags admin
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security CookieAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "Spreadsheet"
// @Failure 400 {object} dto.ErrorResponse "Unsupported format"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /admin/departments/export/ [get]
func (c *AdminController) ExportDepartments(ctx *gin.Context) {
	c.export(ctx, c.spreadsheetService.ExportDepartments)
}

// ExportCourses downloads every course
// @Summary Export courses
// @Tags admin
// @Produce text/csv
// @Security CookieAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "Spreadsheet"
// @Failure 400 {object} dto.ErrorResponse "Unsupported format"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /admin/courses/export/ [get]
func (c *AdminController) ExportCourses(ctx *gin.Context) {
	c.export(ctx, c.spreadsheetService.ExportCourses)
}

// ExportSyllabi downloads every syllabus record
// @Summary Export syllabi
// @Tags admin
// @Produce text/csv
// @Security CookieAuth
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file "Spreadsheet"
// @Failure 400 {object} dto.ErrorResponse "Unsupported format"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /admin/syllabi/export/ [get]
func (c *AdminController) ExportSyllabi(ctx *gin.Context) {
	c.export(ctx, c.spreadsheetService.ExportSyllabi)
}

// ImportDepartments creates or updates departments from a spreadsheet
// @Summary Import departments
// @Description Rows with a blank id are allocated a new id, rows with an existing id are updated
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param file formData file true "CSV or XLSX file"
// @Param format query string false "Overrides the file extension"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResult} "Import summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid file"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /admin/departments/import/ [post]
func (c *AdminController) ImportDepartments(ctx *gin.Context) {
	c.importFile(ctx, c.spreadsheetService.ImportDepartments)
}

// ImportCourses creates or updates courses from a spreadsheet
// @Summary Import courses
// @Description Rows are upserted by course code
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security CookieAuth
// @Param file formData file true "CSV or XLSX file"
// @Param format query string false "Overrides the file extension"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResult} "Import summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid file"
// @Failure 403 {object} dto.ErrorResponse "Staff only"
// @Router /admin/courses/import/ [post]
func (c *AdminController) ImportCourses(ctx *gin.Context) {
	c.importFile(ctx, c.spreadsheetService.ImportCourses)
}
