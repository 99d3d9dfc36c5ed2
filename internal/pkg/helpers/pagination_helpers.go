package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/uniadmin/internal/app/models/dto"
)

const DefaultPage = 1

// PageSize is the default and maximum page size of a list endpoint
type PageSize struct {
	Default int
	Max     int
}

var (
	CoursePageSize   = PageSize{Default: 10, Max: 100}
	SyllabusPageSize = PageSize{Default: 5, Max: 50}
	UserPageSize     = PageSize{Default: 10, Max: 100}
)

// Page is a validated 1-based page request
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip
func (p Page) Offset() uint64 {
	return uint64((p.Number - 1) * p.Size)
}

// Limit returns the page size as a query limit
func (p Page) Limit() uint64 {
	return uint64(p.Size)
}

// NewPage normalizes a page request. Invalid values, including pages whose
// offset would overflow, fall back to the defaults and oversized limits are capped.
func NewPage(number, size int, ps PageSize) Page {
	if number < 1 {
		number = DefaultPage
	}
	if size <= 0 {
		size = ps.Default
	}
	if size > ps.Max {
		size = ps.Max
	}
	// the offset must fit a bigint
	if number-1 > math.MaxInt/size {
		number = DefaultPage
	}
	return Page{Number: number, Size: size}
}

// ParsePaginationParams reads the page and limit query parameters
func ParsePaginationParams(c *gin.Context, ps PageSize) Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = DefaultPage
	}

	size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(ps.Default)))
	if err != nil {
		size = ps.Default
	}

	return NewPage(page, size, ps)
}

// NewPaginationInfo creates a standard PaginationInfo DTO
func NewPaginationInfo(totalItems int64, p Page) dto.PaginationInfo {
	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(p.Size)))
	} else if p.Number == 1 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: p.Number,
		TotalPages:  totalPages,
		PageSize:    p.Size,
		TotalItems:  totalItems,
	}
}

// NewPaginatedResponse wraps a page of items with its metadata
func NewPaginatedResponse(items interface{}, totalItems int64, p Page) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Items:      items,
		Pagination: NewPaginationInfo(totalItems, p),
	}
}
