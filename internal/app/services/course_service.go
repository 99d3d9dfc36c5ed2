package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/repositories"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
	"github.com/yigit/uniadmin/internal/pkg/validation"
)

// CourseService handles course business logic
type CourseService struct {
	courseRepo     repositories.ICourseRepository
	departmentRepo repositories.IDepartmentRepository
	logger         zerolog.Logger
	now            func() time.Time
}

// NewCourseService creates a new course service
func NewCourseService(courseRepo repositories.ICourseRepository, departmentRepo repositories.IDepartmentRepository, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courseRepo:     courseRepo,
		departmentRepo: departmentRepo,
		logger:         logger,
		now:            time.Now,
	}
}

func validateCourse(c *models.Course) error {
	return validation.First(
		validation.String("code", c.Code).MaxLength(models.MaxCourseCodeLength).Check(),
		validation.String("name", c.Name).MaxLength(models.MaxCourseNameLength).Check(),
		validation.Choice("courseCategory", c.CourseCategory.Valid(), string(c.CourseCategory)),
		validation.Choice("type", c.Type.Valid(), string(c.Type)),
		validation.Choice("cbcsCategory", c.CBCSCategory.Valid(), string(c.CBCSCategory)),
		validation.IntRange("maximumCredit", c.MaximumCredit, models.MinCredit, models.MaxCredit),
	)
}

// requireDiscipline checks that the owning department exists and is not deleted
func (s *CourseService) requireDiscipline(ctx context.Context, id string) error {
	if _, err := s.departmentRepo.GetByID(ctx, id, false); err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewValidationError("disciplineId", fmt.Sprintf("department %s does not exist", id))
		}
		return err
	}
	return nil
}

// courseQuery maps the list filter, resolving choice labels to values
func courseQuery(filter dto.CourseFilter, viewer *models.Actor) (repositories.CourseQuery, error) {
	q := repositories.CourseQuery{
		Discipline:     filter.Discipline,
		IsDeleted:      filter.IsDeleted,
		IncludeDeleted: viewer.CanSeeDeleted(),
	}
	if filter.CourseCategory != "" {
		v, ok := models.ParseCourseCategory(filter.CourseCategory)
		if !ok {
			return q, apperrors.NewValidationError("course_category", fmt.Sprintf("%q is not a valid course category", filter.CourseCategory))
		}
		q.CourseCategory = string(v)
	}
	if filter.Type != "" {
		v, ok := models.ParseCourseType(filter.Type)
		if !ok {
			return q, apperrors.NewValidationError("type", fmt.Sprintf("%q is not a valid course type", filter.Type))
		}
		q.Type = string(v)
	}
	if filter.CBCSCategory != "" {
		v, ok := models.ParseCBCSCategory(filter.CBCSCategory)
		if !ok {
			return q, apperrors.NewValidationError("cbcs_category", fmt.Sprintf("%q is not a valid CBCS category", filter.CBCSCategory))
		}
		q.CBCSCategory = string(v)
	}
	return q, nil
}

// List returns one page of courses visible to viewer
func (s *CourseService) List(ctx context.Context, filter dto.CourseFilter, page helpers.Page, viewer *models.Actor) (*dto.PaginatedResponse, error) {
	q, err := courseQuery(filter, viewer)
	if err != nil {
		return nil, err
	}

	courses, total, err := s.courseRepo.List(ctx, q, page)
	if err != nil {
		return nil, err
	}

	resp := helpers.NewPaginatedResponse(courses, total, page)
	return &resp, nil
}

// Get retrieves a course visible to viewer
func (s *CourseService) Get(ctx context.Context, code string, viewer *models.Actor) (*models.Course, error) {
	return s.courseRepo.GetByCode(ctx, code, viewer.CanSeeDeleted())
}

// Create adds a course under an existing department
func (s *CourseService) Create(ctx context.Context, req *dto.CreateCourseRequest, actor *models.Actor) (*models.Course, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}

	c := &models.Course{Code: strings.TrimSpace(req.Code)}
	req.UpdateCourseRequest.ToModel(c)
	if err := s.save(ctx, c, actor, true); err != nil {
		return nil, err
	}

	s.logger.Info().Str("courseCode", c.Code).Int64("actor", actor.UserID).Msg("Course created")
	return c, nil
}

// Update replaces the mutable course fields
func (s *CourseService) Update(ctx context.Context, code string, req *dto.UpdateCourseRequest, actor *models.Actor) (*models.Course, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}

	c, err := s.courseRepo.GetByCode(ctx, code, actor.CanSeeDeleted())
	if err != nil {
		return nil, err
	}

	req.ToModel(c)
	if err := s.save(ctx, c, actor, false); err != nil {
		return nil, err
	}
	return c, nil
}

// save validates, stamps and persists a course
func (s *CourseService) save(ctx context.Context, c *models.Course, actor *models.Actor, create bool) error {
	if err := validateCourse(c); err != nil {
		return err
	}
	if err := s.requireDiscipline(ctx, c.DisciplineID); err != nil {
		return err
	}

	if create {
		c.StampCreate(actor, s.now())
		return s.courseRepo.Create(ctx, c)
	}
	c.StampUpdate(actor, s.now())
	return s.courseRepo.Update(ctx, c)
}

// Delete soft-deletes the course. All other fields are preserved.
func (s *CourseService) Delete(ctx context.Context, code string, actor *models.Actor) error {
	if err := models.RequireActor(actor); err != nil {
		return err
	}

	c, err := s.courseRepo.GetByCode(ctx, code, actor.CanSeeDeleted())
	if err != nil {
		return err
	}

	c.MarkDeleted(actor, s.now())
	return s.courseRepo.SoftDelete(ctx, c)
}

// CourseCategoryChoices lists the course categories
func (s *CourseService) CourseCategoryChoices() []models.Choice {
	return models.CourseCategoryChoices()
}

// CourseTypeChoices lists the course types
func (s *CourseService) CourseTypeChoices() []models.Choice {
	return models.CourseTypeChoices()
}

// CBCSCategoryChoices lists the CBCS categories
func (s *CourseService) CBCSCategoryChoices() []models.Choice {
	return models.CBCSCategoryChoices()
}
