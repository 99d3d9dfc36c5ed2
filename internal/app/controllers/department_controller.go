package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/middleware"
)

// DepartmentController handles department-related operations
type DepartmentController struct {
	departmentService *services.DepartmentService
}

// NewDepartmentController creates a new DepartmentController
func NewDepartmentController(departmentService *services.DepartmentService) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
	}
}

// ListDepartments lists departments
// @Summary List departments
// @Description Staff viewers also see soft-deleted departments
// @Tags departments
// @Produce json
// @Param faculty query string false "Faculty code or label"
// @Param is_deleted query bool false "Filter on the deleted flag"
// @Success 200 {object} dto.APIResponse{data=[]models.Department} "Departments"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /academic/departments/ [get]
func (c *DepartmentController) ListDepartments(ctx *gin.Context) {
	var filter dto.DepartmentFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	departments, err := c.departmentService.List(ctx.Request.Context(), filter, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(departments))
}

// CreateDepartment handles department creation
// @Summary Create a new department
// @Description The identifier is assigned by the server, sequentially from 101 to 999
// @Tags departments
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param request body dto.DepartmentRequest true "Department information"
// @Success 201 {object} dto.APIResponse{data=models.Department} "Department created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 409 {object} dto.ErrorResponse "Department already exists"
// @Failure 500 {object} dto.ErrorResponse "Identifier space exhausted or internal error"
// @Router /academic/departments/ [post]
func (c *DepartmentController) CreateDepartment(ctx *gin.Context) {
	var req dto.DepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	department, err := c.departmentService.Create(ctx.Request.Context(), &req, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(department))
}

// GetDepartment retrieves a department by ID
// @Summary Get department by ID
// @Tags departments
// @Produce json
// @Param id path string true "Department ID" example(101)
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /academic/departments/{id}/ [get]
func (c *DepartmentController) GetDepartment(ctx *gin.Context) {
	department, err := c.departmentService.Get(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(department))
}

// UpdateDepartment updates a department's name and faculty
// @Summary Update department
// @Tags departments
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path string true "Department ID"
// @Param request body dto.DepartmentRequest true "Department information"
// @Success 200 {object} dto.APIResponse{data=models.Department} "Department updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Department already exists"
// @Router /academic/departments/{id}/ [put]
func (c *DepartmentController) UpdateDepartment(ctx *gin.Context) {
	var req dto.DepartmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	department, err := c.departmentService.Update(ctx.Request.Context(), ctx.Param("id"), &req, middleware.CurrentActor(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(department))
}

// DeleteDepartment soft-deletes a department
// @Summary Delete department
// @Tags departments
// @Security CookieAuth
// @Param id path string true "Department ID"
// @Success 204 "Department deleted"
// @Failure 401 {object} dto.ErrorResponse "Authentication failed"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Router /academic/departments/{id}/ [delete]
func (c *DepartmentController) DeleteDepartment(ctx *gin.Context) {
	if err := c.departmentService.Delete(ctx.Request.Context(), ctx.Param("id"), middleware.CurrentActor(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// FacultyChoices lists the faculty values
// @Summary Faculty choices
// @Tags departments
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Choice} "Faculty values and labels"
// @Router /academic/faculty-choices/ [get]
func (c *DepartmentController) FacultyChoices(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.departmentService.FacultyChoices()))
}
