package helpers

import (
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		ps    PageSize
		want  Page
	}{
		{"defaults", "", CoursePageSize, Page{Number: 1, Size: 10}},
		{"syllabus defaults", "", SyllabusPageSize, Page{Number: 1, Size: 5}},
		{"explicit", "?page=3&limit=20", CoursePageSize, Page{Number: 3, Size: 20}},
		{"capped", "?limit=500", CoursePageSize, Page{Number: 1, Size: 100}},
		{"syllabus capped", "?limit=51", SyllabusPageSize, Page{Number: 1, Size: 50}},
		{"invalid falls back", "?page=abc&limit=-4", CoursePageSize, Page{Number: 1, Size: 10}},
		{"zero page", "?page=0", CoursePageSize, Page{Number: 1, Size: 10}},
		{"offset overflow", "?page=1000000000000000000&limit=10", CoursePageSize, Page{Number: 1, Size: 10}},
		{"beyond int range", "?page=99999999999999999999", CoursePageSize, Page{Number: 1, Size: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/items"+tt.query, nil)

			assert.Equal(t, tt.want, ParsePaginationParams(c, tt.ps))
		})
	}
}

func TestPageOffset(t *testing.T) {
	p := NewPage(3, 10, CoursePageSize)
	assert.Equal(t, uint64(20), p.Offset())
	assert.Equal(t, uint64(10), p.Limit())

	last := NewPage(math.MaxInt/100+1, 100, CoursePageSize)
	assert.LessOrEqual(t, last.Offset(), uint64(math.MaxInt64))

	wrapped := NewPage(math.MaxInt/100+2, 100, CoursePageSize)
	assert.Equal(t, DefaultPage, wrapped.Number)
	assert.Equal(t, uint64(0), wrapped.Offset())
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(27, Page{Number: 2, Size: 10})
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(27), info.TotalItems)

	empty := NewPaginationInfo(0, Page{Number: 1, Size: 5})
	assert.Equal(t, 1, empty.TotalPages)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 15*time.Minute, ParseDuration("15m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
}
