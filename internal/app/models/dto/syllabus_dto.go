package dto

import "mime/multipart"

// SyllabusForm is the multipart body for creating or updating a syllabus.
// File is required on create and optional on update.
type SyllabusForm struct {
	Course      string                `form:"course" binding:"required,max=10"`
	Version     string                `form:"version" binding:"omitempty,max=10"`
	Description string                `form:"description"`
	File        *multipart.FileHeader `form:"file"`
}

// SyllabusFilter holds the list query parameters
type SyllabusFilter struct {
	Course    string `form:"course"`
	Version   string `form:"version"`
	IsDeleted *bool  `form:"is_deleted"`
}
