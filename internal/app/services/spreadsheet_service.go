package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/repositories"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/filestorage"
	"github.com/yigit/uniadmin/internal/pkg/spreadsheet"
)

// Export is an encoded spreadsheet ready to be served
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SpreadsheetService imports and exports reference data
type SpreadsheetService struct {
	departmentRepo repositories.IDepartmentRepository
	courseRepo     repositories.ICourseRepository
	syllabusRepo   repositories.ISyllabusRepository
	storage        filestorage.FileStorage
	logger         zerolog.Logger
	now            func() time.Time
}

// NewSpreadsheetService creates a new SpreadsheetService
func NewSpreadsheetService(
	departmentRepo repositories.IDepartmentRepository,
	courseRepo repositories.ICourseRepository,
	syllabusRepo repositories.ISyllabusRepository,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *SpreadsheetService {
	return &SpreadsheetService{
		departmentRepo: departmentRepo,
		courseRepo:     courseRepo,
		syllabusRepo:   syllabusRepo,
		storage:        storage,
		logger:         logger,
		now:            time.Now,
	}
}

func encodeExport(name string, f spreadsheet.Format, t spreadsheet.Table) (*Export, error) {
	data, err := spreadsheet.Encode(f, name, t)
	if err != nil {
		return nil, err
	}
	return &Export{
		Filename:    fmt.Sprintf("%s.%s", strings.ToLower(name), f),
		ContentType: f.ContentType(),
		Data:        data,
	}, nil
}

// ExportDepartments writes every department, deleted ones included
func (s *SpreadsheetService) ExportDepartments(ctx context.Context, f spreadsheet.Format) (*Export, error) {
	departments, err := s.departmentRepo.List(ctx, repositories.DepartmentQuery{IncludeDeleted: true})
	if err != nil {
		return nil, err
	}

	t := spreadsheet.Table{Headers: []string{"id", "name", "faculty", "is_deleted", "created_at"}}
	for _, d := range departments {
		t.Rows = append(t.Rows, []string{
			d.ID, d.Name, d.Faculty.Label(), strconv.FormatBool(d.IsDeleted), d.CreatedAt.Format(time.RFC3339),
		})
	}
	return encodeExport("Departments", f, t)
}

// ExportCourses writes every course with choice labels
func (s *SpreadsheetService) ExportCourses(ctx context.Context, f spreadsheet.Format) (*Export, error) {
	courses, err := s.courseRepo.ListAll(ctx, repositories.CourseQuery{IncludeDeleted: true})
	if err != nil {
		return nil, err
	}

	t := spreadsheet.Table{Headers: []string{
		"code", "name", "course_category", "type", "cbcs_category", "maximum_credit", "discipline", "is_deleted",
	}}
	for _, c := range courses {
		t.Rows = append(t.Rows, []string{
			c.Code, c.Name, c.CourseCategory.Label(), c.Type.Label(), c.CBCSCategory.Label(),
			strconv.Itoa(c.MaximumCredit), c.DisciplineID, strconv.FormatBool(c.IsDeleted),
		})
	}
	return encodeExport("Courses", f, t)
}

// ExportSyllabi writes syllabus metadata with file URLs
func (s *SpreadsheetService) ExportSyllabi(ctx context.Context, f spreadsheet.Format) (*Export, error) {
	syllabi, err := s.syllabusRepo.ListAll(ctx, repositories.SyllabusQuery{IncludeDeleted: true})
	if err != nil {
		return nil, err
	}

	t := spreadsheet.Table{Headers: []string{"id", "course", "course_name", "version", "description", "file", "is_deleted"}}
	for _, sy := range syllabi {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(sy.ID, 10), sy.CourseCode, sy.CourseName, sy.Version, sy.Description,
			s.storage.URL(sy.File), strconv.FormatBool(sy.IsDeleted),
		})
	}
	return encodeExport("Syllabi", f, t)
}

func readRecords(r io.Reader, f spreadsheet.Format, required ...string) ([]map[string]string, error) {
	t, err := spreadsheet.Read(r, f)
	if err != nil {
		return nil, apperrors.NewValidationError("file", err.Error())
	}
	present := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		present[h] = true
	}
	for _, h := range required {
		if !present[h] {
			return nil, apperrors.NewValidationError("file", fmt.Sprintf("missing column %q", h))
		}
	}
	return t.Records(), nil
}

func rowError(result *dto.ImportResult, row int, err error) {
	result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Message: err.Error()})
}

// ImportDepartments creates or updates departments. A blank id goes through
// the allocator, an existing id is updated and an unknown explicit id is
// rejected because only the allocator may assign identifiers.
func (s *SpreadsheetService) ImportDepartments(ctx context.Context, r io.Reader, f spreadsheet.Format, actor *models.Actor) (*dto.ImportResult, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}

	records, err := readRecords(r, f, "name", "faculty")
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for i, rec := range records {
		if rec == nil {
			continue
		}
		created, err := s.importDepartment(ctx, rec, actor)
		if err != nil {
			rowError(result, i+1, err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info().Int("created", result.Created).Int("updated", result.Updated).Int("errors", len(result.Errors)).Msg("Departments imported")
	return result, nil
}

func (s *SpreadsheetService) importDepartment(ctx context.Context, rec map[string]string, actor *models.Actor) (bool, error) {
	faculty, ok := models.ParseFaculty(rec["faculty"])
	if !ok {
		return false, fmt.Errorf("unknown faculty %q", rec["faculty"])
	}
	name := rec["name"]
	if err := validateDepartment(name, faculty); err != nil {
		return false, err
	}

	if rec["id"] == "" {
		d := &models.Department{Name: name, Faculty: faculty}
		d.StampCreate(actor, s.now())
		return true, s.departmentRepo.Create(ctx, d)
	}

	id, err := models.NormalizeDepartmentID(rec["id"])
	if err != nil {
		return false, err
	}
	d, err := s.departmentRepo.GetByID(ctx, id, true)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return false, fmt.Errorf("%w: department %s does not exist", apperrors.ErrPolicyViolation, id)
		}
		return false, err
	}

	d.Name = name
	d.Faculty = faculty
	d.StampUpdate(actor, s.now())
	return false, s.departmentRepo.Update(ctx, d)
}

// ImportCourses upserts courses by code
func (s *SpreadsheetService) ImportCourses(ctx context.Context, r io.Reader, f spreadsheet.Format, actor *models.Actor) (*dto.ImportResult, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}

	records, err := readRecords(r, f, "code", "name", "course_category", "type", "cbcs_category", "maximum_credit", "discipline")
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for i, rec := range records {
		if rec == nil {
			continue
		}
		created, err := s.importCourse(ctx, rec, actor)
		if err != nil {
			rowError(result, i+1, err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info().Int("created", result.Created).Int("updated", result.Updated).Int("errors", len(result.Errors)).Msg("Courses imported")
	return result, nil
}

func (s *SpreadsheetService) importCourse(ctx context.Context, rec map[string]string, actor *models.Actor) (bool, error) {
	c := &models.Course{Code: rec["code"], Name: rec["name"]}

	var ok bool
	if c.CourseCategory, ok = models.ParseCourseCategory(rec["course_category"]); !ok {
		return false, fmt.Errorf("unknown course category %q", rec["course_category"])
	}
	if c.Type, ok = models.ParseCourseType(rec["type"]); !ok {
		return false, fmt.Errorf("unknown course type %q", rec["type"])
	}
	if c.CBCSCategory, ok = models.ParseCBCSCategory(rec["cbcs_category"]); !ok {
		return false, fmt.Errorf("unknown CBCS category %q", rec["cbcs_category"])
	}

	credit, err := strconv.Atoi(rec["maximum_credit"])
	if err != nil {
		return false, fmt.Errorf("maximum_credit %q is not a number", rec["maximum_credit"])
	}
	c.MaximumCredit = credit

	if c.DisciplineID, err = models.NormalizeDepartmentID(rec["discipline"]); err != nil {
		return false, err
	}
	if err := validateCourse(c); err != nil {
		return false, err
	}
	if _, err := s.departmentRepo.GetByID(ctx, c.DisciplineID, false); err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return false, fmt.Errorf("department %s does not exist", c.DisciplineID)
		}
		return false, err
	}

	existing, err := s.courseRepo.GetByCode(ctx, c.Code, true)
	switch {
	case err == nil:
		c.Audit = existing.Audit
		c.StampUpdate(actor, s.now())
		return false, s.courseRepo.Update(ctx, c)
	case apperrors.Is(err, apperrors.ErrResourceNotFound):
		c.StampCreate(actor, s.now())
		return true, s.courseRepo.Create(ctx, c)
	default:
		return false, err
	}
}
