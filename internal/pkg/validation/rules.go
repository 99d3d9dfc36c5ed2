package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yigit/uniadmin/internal/pkg/apperrors"
)

// StringRule validates one string field. Failures are returned as
// apperrors validation errors naming the field.
type StringRule struct {
	field      string
	value      string
	required   bool
	maxLen     int
	exactLen   int
	pattern    *regexp.Regexp
	patternMsg string
}

// String starts a rule for a required field
func String(field, value string) *StringRule {
	return &StringRule{field: field, value: value, required: true}
}

// Optional allows an empty value
func (r *StringRule) Optional() *StringRule {
	r.required = false
	return r
}

// MaxLength limits the length in characters
func (r *StringRule) MaxLength(n int) *StringRule {
	r.maxLen = n
	return r
}

// Length requires an exact length in characters
func (r *StringRule) Length(n int) *StringRule {
	r.exactLen = n
	return r
}

// Matches requires the value to match re; msg describes the format
func (r *StringRule) Matches(re *regexp.Regexp, msg string) *StringRule {
	r.pattern = re
	r.patternMsg = msg
	return r
}

// Check runs the rule
func (r *StringRule) Check() error {
	v := strings.TrimSpace(r.value)
	if v == "" {
		if r.required {
			return apperrors.NewValidationError(r.field, r.field+" is required")
		}
		return nil
	}

	n := utf8.RuneCountInString(v)
	if r.maxLen > 0 && n > r.maxLen {
		return apperrors.NewValidationError(r.field, fmt.Sprintf("%s must be at most %d characters", r.field, r.maxLen))
	}
	if r.exactLen > 0 && n != r.exactLen {
		return apperrors.NewValidationError(r.field, fmt.Sprintf("%s must be exactly %d characters", r.field, r.exactLen))
	}
	if r.pattern != nil && !r.pattern.MatchString(v) {
		return apperrors.NewValidationError(r.field, r.field+" "+r.patternMsg)
	}
	return nil
}

// IntRange checks min <= value <= max
func IntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return apperrors.NewValidationError(field, fmt.Sprintf("%s must be between %d and %d", field, min, max))
	}
	return nil
}

// Choice checks that an enumerated value is part of its set
func Choice(field string, valid bool, value string) error {
	if !valid {
		return apperrors.NewValidationError(field, fmt.Sprintf("%q is not a valid choice for %s", value, field))
	}
	return nil
}

// First returns the first non-nil error
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
