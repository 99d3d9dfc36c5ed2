package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniadmin/internal/app/controllers"
	"github.com/yigit/uniadmin/internal/middleware"
)

// Controllers bundles the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Department *controllers.DepartmentController
	Course     *controllers.CourseController
	Syllabus   *controllers.SyllabusController
	Admin      *controllers.AdminController
	Health     *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", c.Health.Health)

	required := authMiddleware.RequireAuth()
	optional := authMiddleware.OptionalAuth()
	staff := []gin.HandlerFunc{required, authMiddleware.RequireStaff()}

	// --- Auth routes ---
	auth := router.Group("/auth")
	{
		auth.POST("/register/", c.Auth.Register)
		auth.POST("/login/", c.Auth.Login)
		auth.POST("/token/refresh/", c.Auth.RefreshToken)

		auth.POST("/logout/", required, c.Auth.Logout)
		auth.POST("/password/change/", required, c.Auth.ChangePassword)
		auth.GET("/me/", required, c.User.GetMe)
		auth.PUT("/me/", required, c.User.UpdateMe)
		auth.POST("/me/profile-picture/", required, c.User.UploadProfilePicture)

		auth.GET("/users/", append(staff, c.User.ListUsers)...)
	}

	// --- Academic routes ---
	academic := router.Group("/academic")
	{
		academic.GET("/faculty-choices/", c.Department.FacultyChoices)

		academic.GET("/departments/", optional, c.Department.ListDepartments)
		academic.POST("/departments/", required, c.Department.CreateDepartment)
		academic.GET("/departments/:id/", optional, c.Department.GetDepartment)
		academic.PUT("/departments/:id/", required, c.Department.UpdateDepartment)
		academic.DELETE("/departments/:id/", required, c.Department.DeleteDepartment)
	}

	// --- Course and syllabus routes ---
	courses := router.Group("/courses")
	{
		courses.GET("/course-category-choices/", c.Course.CourseCategoryChoices)
		courses.GET("/course-type-choices/", c.Course.CourseTypeChoices)
		courses.GET("/cbcs-category-choices/", c.Course.CBCSCategoryChoices)

		courses.GET("/courses/", optional, c.Course.ListCourses)
		courses.POST("/courses/", required, c.Course.CreateCourse)
		courses.GET("/courses/:code/", optional, c.Course.GetCourse)
		courses.PUT("/courses/:code/", required, c.Course.UpdateCourse)
		courses.DELETE("/courses/:code/", required, c.Course.DeleteCourse)

		courses.GET("/syllabi/", optional, c.Syllabus.ListSyllabi)
		courses.POST("/syllabi/", required, c.Syllabus.CreateSyllabus)
		courses.GET("/syllabi/:id/", optional, c.Syllabus.GetSyllabus)
		courses.PUT("/syllabi/:id/", required, c.Syllabus.UpdateSyllabus)
		courses.DELETE("/syllabi/:id/", required, c.Syllabus.DeleteSyllabus)
	}

	// --- Staff reference data routes ---
	admin := router.Group("/admin", staff...)
	{
		admin.GET("/departments/export/", c.Admin.ExportDepartments)
		admin.GET("/courses/export/", c.Admin.ExportCourses)
		admin.GET("/syllabi/export/", c.Admin.ExportSyllabi)
		admin.POST("/departments/import/", c.Admin.ImportDepartments)
		admin.POST("/courses/import/", c.Admin.ImportCourses)
	}
}

// SetupMetrics exposes the Prometheus registry
func SetupMetrics(router *gin.Engine, handler http.Handler) {
	router.GET("/metrics", gin.WrapH(handler))
}

// SetupMedia serves locally stored uploads. dir is empty for remote backends.
func SetupMedia(router *gin.Engine, urlPrefix, dir string) {
	if dir == "" {
		return
	}
	router.Static(urlPrefix, dir)
}
