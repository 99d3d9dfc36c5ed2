package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
)

// CourseController handles course operations and the course choice listings
type CourseController struct {
	courseService *services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// ListCourses returns a page of courses
// @Summary List courses
// @Description Paginated, 10 per page by default and at most 100. Staff viewers also see soft-deleted courses.
// @Tags courses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(10)
// @Param discipline query string false "Department ID"
// @Param course_category query string false "Course category code or label"
// @Param type query string false "Course type code or label"
// @Param cbcs_category query string false "CBCS category code or label"
// @Param is_deleted query bool false "Filter on the deleted flag"
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Course}} "Courses"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /courses/courses/ [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	var filter dto.CourseFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	page := helpers.ParsePaginationParams(ctx, helpers.CoursePageSize)

	resp, err := c.courseService.List(ctx.Request.Context(), filter, page, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// CreateCourse handles course creation
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.CreateCourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=models.Course} "Course created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or unknown discipline"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Router /courses/courses/ [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	course, err := c.courseService.Create(ctx.Request.Context(), &req, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(course))
}

// GetCourse retrieves a course by code
// @Summary Get course by code
// @Tags courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/courses/{code}/ [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.courseService.Get(ctx.Request.Context(), ctx.Param("code"), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course))
}

// UpdateCourse replaces the mutable course fields
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param code path string true "Course code"
// @Param request body dto.UpdateCourseRequest true "Course information"
// @Success 200 {object} dto.APIResponse{data=models.Course} "Course updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/courses/{code}/ [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	course, err := c.courseService.Update(ctx.Request.Context(), ctx.Param("code"), &req, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(course))
}

// DeleteCourse soft-deletes a course
// @Summary Delete course
// @Tags courses
// @Security CookieAuth
// @Param code path string true "Course code"
// @Success 204 "Course deleted"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/courses/{code}/ [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.courseService.Delete(ctx.Request.Context(), ctx.Param("code"), middleware.CurrentActor(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CourseCategoryChoices lists the course categories
// @Summary Course category choices
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Choice}
// @Router /courses/course-category-choices/ [get]
func (c *CourseController) CourseCategoryChoices(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.courseService.CourseCategoryChoices()))
}

// CourseTypeChoices lists the course types
// @Summary Course type choices
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Choice}
// @Router /courses/course-type-choices/ [get]
func (c *CourseController) CourseTypeChoices(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.courseService.CourseTypeChoices()))
}

// CBCSCategoryChoices lists the CBCS categories
// @Summary CBCS category choices
// @Tags courses
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Choice}
// @Router /courses/cbcs-category-choices/ [get]
func (c *CourseController) CBCSCategoryChoices(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.courseService.CBCSCategoryChoices()))
}
