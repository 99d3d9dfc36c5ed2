package dto

import "github.com/yigit/uniadmin/internal/app/models"

// DepartmentRequest is used for both create and update. The identifier is
// never accepted from the client.
type DepartmentRequest struct {
	Name    string         `json:"name" binding:"required,max=50,deptname" example:"Computer Science"`
	Faculty models.Faculty `json:"faculty" binding:"required,faculty" example:"I&C"`
}

// DepartmentFilter holds the list query parameters
type DepartmentFilter struct {
	Faculty   string `form:"faculty"`
	IsDeleted *bool  `form:"is_deleted"`
}
