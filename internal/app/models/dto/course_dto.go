package dto

import "github.com/yigit/uniadmin/internal/app/models"

// CreateCourseRequest represents a new course
type CreateCourseRequest struct {
	Code string `json:"code" binding:"required,max=10" example:"CS101"`
	UpdateCourseRequest
}

// UpdateCourseRequest holds the mutable course fields
type UpdateCourseRequest struct {
	Name           string                `json:"name" binding:"required,max=255" example:"Programming Fundamentals"`
	CourseCategory models.CourseCategory `json:"courseCategory" binding:"required,course_category" example:"COMPULSORY"`
	Type           models.CourseType     `json:"type" binding:"required,course_type" example:"THEORY"`
	CBCSCategory   models.CBCSCategory   `json:"cbcsCategory" binding:"required,cbcs_category" example:"CORE"`
	MaximumCredit  *int                  `json:"maximumCredit" binding:"required,min=0,max=20" example:"4"`
	DisciplineID   string                `json:"disciplineId" binding:"required,len=3,numeric" example:"101"`
}

// ToModel copies the request onto a course
func (r *UpdateCourseRequest) ToModel(c *models.Course) {
	c.Name = r.Name
	c.CourseCategory = r.CourseCategory
	c.Type = r.Type
	c.CBCSCategory = r.CBCSCategory
	if r.MaximumCredit != nil {
		c.MaximumCredit = *r.MaximumCredit
	}
	c.DisciplineID = r.DisciplineID
}

// CourseFilter holds the list query parameters
type CourseFilter struct {
	Discipline     string `form:"discipline"`
	CourseCategory string `form:"course_category"`
	Type           string `form:"type"`
	CBCSCategory   string `form:"cbcs_category"`
	IsDeleted      *bool  `form:"is_deleted"`
}
