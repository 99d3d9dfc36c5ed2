package dto

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// HandleValidationError converts binding errors into an ErrorDetail with one
// entry per offending field.
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fieldErrors := NewValidationErrors()
	for _, fe := range verrs {
		fieldErrors.AddError(fe.Field(), formatValidationError(fe))
	}
	return NewErrorDetail(ErrorCodeValidationFailed, "Validation failed").WithDetails(fieldErrors.Errors)
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "len":
		return e.Field() + " must be exactly " + e.Param() + " characters"
	case "email":
		return e.Field() + " must be a valid email address"
	case "numeric":
		return e.Field() + " must contain digits only"
	case "mobile":
		return e.Field() + " must be a 10 digit number starting with 6-9"
	case "deptname":
		return e.Field() + " may contain letters, spaces and & only"
	case "faculty", "course_category", "course_type", "cbcs_category":
		return e.Field() + " is not a valid choice"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
