package models

import (
	"fmt"
	"path"
	"time"
)

const (
	DefaultSyllabusVersion = "1.0"
	MaxSyllabusVersion     = 10
	MaxSyllabusFileSize    = 5 << 20
)

// Syllabus is a versioned PDF document attached to a course.
// CourseName is a copy of the course name taken on every save.
type Syllabus struct {
	ID          int64  `json:"id" db:"id"`
	CourseCode  string `json:"courseCode" db:"course_code"`
	CourseName  string `json:"courseName" db:"course_name"`
	File        string `json:"file" db:"file"`
	FileURL     string `json:"fileUrl,omitempty" db:"-"`
	Version     string `json:"version" db:"version"`
	Description string `json:"description" db:"description"`
	Audit
}

// SyncCourse copies the denormalized course fields onto the syllabus
func (s *Syllabus) SyncCourse(c *Course) {
	s.CourseCode = c.Code
	s.CourseName = c.Name
}

// SyllabusDir is the storage folder for files uploaded at t, e.g. syllabi/2025/01/31
func SyllabusDir(t time.Time) string {
	return path.Join("syllabi", fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), fmt.Sprintf("%02d", t.Day()))
}
