package models

import "strings"

// Choice is the wire form of one enumerated value
type Choice struct {
	Value string `json:"value" example:"I&C"`
	Label string `json:"label" example:"Information & Computing"`
}

type choiceEntry[T ~string] struct {
	value   T
	label   string
	aliases []string
}

// choiceSet is a closed enumeration with a total value to label mapping
type choiceSet[T ~string] struct {
	entries []choiceEntry[T]
}

func (s choiceSet[T]) valid(v T) bool {
	for _, e := range s.entries {
		if e.value == v {
			return true
		}
	}
	return false
}

func (s choiceSet[T]) label(v T) string {
	for _, e := range s.entries {
		if e.value == v {
			return e.label
		}
	}
	return string(v)
}

// parse accepts the canonical value, the label or an alias, case-insensitively
func (s choiceSet[T]) parse(raw string) (T, bool) {
	raw = strings.TrimSpace(raw)
	for _, e := range s.entries {
		if strings.EqualFold(raw, string(e.value)) || strings.EqualFold(raw, e.label) {
			return e.value, true
		}
		for _, a := range e.aliases {
			if strings.EqualFold(raw, a) {
				return e.value, true
			}
		}
	}
	var zero T
	return zero, false
}

func (s choiceSet[T]) choices() []Choice {
	out := make([]Choice, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, Choice{Value: string(e.value), Label: e.label})
	}
	return out
}

// Faculty a department belongs to
type Faculty string

const (
	FacultyIC   Faculty = "I&C"
	FacultyET   Faculty = "E&T"
	FacultyIR   Faculty = "I&R"
	FacultyLS   Faculty = "LS"
	FacultyLAMS Faculty = "LAMS"
	FacultyMS   Faculty = "MS"
	FacultySC   Faculty = "SC"
	FacultyCCSD Faculty = "CCSD"
)

var faculties = choiceSet[Faculty]{entries: []choiceEntry[Faculty]{
	{FacultyIC, "Information & Computing", []string{"IC"}},
	{FacultyET, "Engineering & Technology", []string{"ET"}},
	{FacultyIR, "Interdisciplinary and Research", []string{"IR"}},
	{FacultyLS, "Life Sciences", nil},
	{FacultyLAMS, "Liberal Arts & Media Studies", nil},
	{FacultyMS, "Management Studies", nil},
	{FacultySC, "Sciences", nil},
	{FacultyCCSD, "CCSD", nil},
}}

// Valid reports whether f is a known faculty code
func (f Faculty) Valid() bool { return faculties.valid(f) }

// Label returns the display name of f
func (f Faculty) Label() string { return faculties.label(f) }

// FacultyChoices lists every faculty in display order
func FacultyChoices() []Choice { return faculties.choices() }

// ParseFaculty accepts a faculty code, label or short alias
func ParseFaculty(raw string) (Faculty, bool) { return faculties.parse(raw) }

// CourseCategory tells compulsory courses from electives
type CourseCategory string

const (
	CourseCategoryCompulsory CourseCategory = "COMPULSORY"
	CourseCategoryElective   CourseCategory = "ELECTIVE"
)

var courseCategories = choiceSet[CourseCategory]{entries: []choiceEntry[CourseCategory]{
	{CourseCategoryCompulsory, "Compulsory", nil},
	{CourseCategoryElective, "Elective", nil},
}}

// Valid reports whether c is a known course category
func (c CourseCategory) Valid() bool { return courseCategories.valid(c) }

// Label returns the display name of c
func (c CourseCategory) Label() string { return courseCategories.label(c) }

// CourseCategoryChoices lists every course category
func CourseCategoryChoices() []Choice { return courseCategories.choices() }

// ParseCourseCategory accepts a category code or label
func ParseCourseCategory(raw string) (CourseCategory, bool) {
	return courseCategories.parse(raw)
}

// CourseType is the teaching mode of a course
type CourseType string

const (
	CourseTypeDissertation       CourseType = "DISSERTATION"
	CourseTypeLaboratory         CourseType = "LABORATORY"
	CourseTypePractical          CourseType = "PRACTICAL"
	CourseTypeProject            CourseType = "PROJECT"
	CourseTypeTheory             CourseType = "THEORY"
	CourseTypeTheoryAndPractical CourseType = "THEORY_AND_PRACTICAL"
	CourseTypeTutorial           CourseType = "TUTORIAL"
)

var courseTypes = choiceSet[CourseType]{entries: []choiceEntry[CourseType]{
	{CourseTypeDissertation, "Dissertation", nil},
	{CourseTypeLaboratory, "Laboratory", nil},
	{CourseTypePractical, "Practical", nil},
	{CourseTypeProject, "Project", nil},
	{CourseTypeTheory, "Theory", nil},
	{CourseTypeTheoryAndPractical, "Theory and Practical", nil},
	{CourseTypeTutorial, "Tutorial", nil},
}}

// Valid reports whether c is a known course type
func (c CourseType) Valid() bool { return courseTypes.valid(c) }

// Label returns the display name of c
func (c CourseType) Label() string { return courseTypes.label(c) }

// CourseTypeChoices lists every course type
func CourseTypeChoices() []Choice { return courseTypes.choices() }

// ParseCourseType accepts a course type code or label
func ParseCourseType(raw string) (CourseType, bool) { return courseTypes.parse(raw) }

// CBCSCategory classifies a course under the Choice Based Credit System
type CBCSCategory string

const (
	CBCSMajor CBCSCategory = "MAJOR"
	CBCSMinor CBCSCategory = "MINOR"
	CBCSCore  CBCSCategory = "CORE"
	CBCSDSE   CBCSCategory = "DSE"
	CBCSGE    CBCSCategory = "GE"
	CBCSOE    CBCSCategory = "OE"
	CBCSVAC   CBCSCategory = "VAC"
	CBCSAECC  CBCSCategory = "AECC"
	CBCSSEC   CBCSCategory = "SEC"
	CBCSMDC   CBCSCategory = "MDC"
	CBCSIDC   CBCSCategory = "IDC"
)

var cbcsCategories = choiceSet[CBCSCategory]{entries: []choiceEntry[CBCSCategory]{
	{CBCSMajor, "Major", nil},
	{CBCSMinor, "Minor", nil},
	{CBCSCore, "Core", nil},
	{CBCSDSE, "Discipline Specific Elective", nil},
	{CBCSGE, "Generic Elective", nil},
	{CBCSOE, "Open Elective", nil},
	{CBCSVAC, "Value Added Course", nil},
	{CBCSAECC, "Ability Enhancement Compulsory Course", nil},
	{CBCSSEC, "Skill Enhancement Course", nil},
	{CBCSMDC, "Multi-Disciplinary Course", nil},
	{CBCSIDC, "Inter-Disciplinary Course", nil},
}}

// Valid reports whether c is a known CBCS category
func (c CBCSCategory) Valid() bool { return cbcsCategories.valid(c) }

// Label returns the display name of c
func (c CBCSCategory) Label() string { return cbcsCategories.label(c) }

// CBCSCategoryChoices lists every CBCS category
func CBCSCategoryChoices() []Choice { return cbcsCategories.choices() }

// ParseCBCSCategory accepts a CBCS code or label
func ParseCBCSCategory(raw string) (CBCSCategory, bool) {
	return cbcsCategories.parse(raw)
}
