package middleware

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/uniadmin/internal/app/models"
)

// RegisterValidators installs the custom binding tags used by the request
// DTOs and reports fields by their json or form name
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(fieldName)

	rules := map[string]validator.Func{
		"faculty": func(fl validator.FieldLevel) bool {
			return models.Faculty(fl.Field().String()).Valid()
		},
		"deptname": func(fl validator.FieldLevel) bool {
			return models.ValidDepartmentName(fl.Field().String())
		},
		"mobile": func(fl validator.FieldLevel) bool {
			return models.ValidMobileNumber(strings.TrimSpace(fl.Field().String()))
		},
		"course_category": func(fl validator.FieldLevel) bool {
			return models.CourseCategory(fl.Field().String()).Valid()
		},
		"course_type": func(fl validator.FieldLevel) bool {
			return models.CourseType(fl.Field().String()).Valid()
		},
		"cbcs_category": func(fl validator.FieldLevel) bool {
			return models.CBCSCategory(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
