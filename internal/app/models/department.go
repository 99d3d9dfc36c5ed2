package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yigit/uniadmin/internal/pkg/apperrors"
)

// Department identifiers are three digit strings handed out sequentially
const (
	DepartmentIDFirst = 101
	DepartmentIDLast  = 999
	DepartmentIDWidth = 3

	MaxDepartmentNameLength = 50
)

var departmentNamePattern = regexp.MustCompile(`^[a-zA-Z\s&]+$`)

// Department represents an academic department within a faculty
type Department struct {
	ID      string  `json:"id" db:"id" example:"101"`
	Name    string  `json:"name" db:"name" example:"Computer Science"`
	Faculty Faculty `json:"faculty" db:"faculty" example:"I&C"`
	Audit
}

// NextDepartmentID returns the identifier following currentMax.
// An empty currentMax means no department exists yet.
func NextDepartmentID(currentMax string) (string, error) {
	if currentMax == "" {
		return formatDepartmentID(DepartmentIDFirst), nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(currentMax))
	if err != nil {
		return "", fmt.Errorf("malformed department id %q: %w", currentMax, err)
	}

	next := n + 1
	if next > DepartmentIDLast {
		return "", apperrors.ErrCapacityExceeded
	}
	return formatDepartmentID(next), nil
}

// NormalizeDepartmentID zero-fills imported identifiers such as "7" to "007"
func NormalizeDepartmentID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > DepartmentIDLast {
		return "", apperrors.NewValidationError("id", fmt.Sprintf("department id %q must be a number of at most %d digits", raw, DepartmentIDWidth))
	}
	return formatDepartmentID(n), nil
}

func formatDepartmentID(n int) string {
	return fmt.Sprintf("%0*d", DepartmentIDWidth, n)
}

// ValidDepartmentName allows letters, whitespace and ampersands only
func ValidDepartmentName(name string) bool {
	return len(name) <= MaxDepartmentNameLength && departmentNamePattern.MatchString(name)
}
