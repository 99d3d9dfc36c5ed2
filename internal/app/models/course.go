package models

const (
	MaxCourseCodeLength = 10
	MaxCourseNameLength = 255
	MinCredit           = 0
	MaxCredit           = 20
)

// Course is identified by its caller supplied code
type Course struct {
	Code           string         `json:"code" db:"code" example:"CS101"`
	Name           string         `json:"name" db:"name" example:"Programming Fundamentals"`
	CourseCategory CourseCategory `json:"courseCategory" db:"course_category" example:"COMPULSORY"`
	Type           CourseType     `json:"type" db:"type" example:"THEORY"`
	CBCSCategory   CBCSCategory   `json:"cbcsCategory" db:"cbcs_category" example:"CORE"`
	MaximumCredit  int            `json:"maximumCredit" db:"maximum_credit" example:"4"`
	DisciplineID   string         `json:"disciplineId" db:"discipline_id" example:"101"`
	Audit
}
