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
	"github.com/yigit/uniadmin/internal/pkg/validation"
)

// DepartmentService handles department business logic
type DepartmentService struct {
	departmentRepo repositories.IDepartmentRepository
	logger         zerolog.Logger
	now            func() time.Time
}

// NewDepartmentService creates a new department service
func NewDepartmentService(departmentRepo repositories.IDepartmentRepository, logger zerolog.Logger) *DepartmentService {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		logger:         logger,
		now:            time.Now,
	}
}

func validateDepartment(name string, faculty models.Faculty) error {
	if err := validation.String("name", name).MaxLength(models.MaxDepartmentNameLength).Check(); err != nil {
		return err
	}
	if !models.ValidDepartmentName(name) {
		return apperrors.NewValidationError("name", "department name may only contain letters, spaces and &")
	}
	return validation.Choice("faculty", faculty.Valid(), string(faculty))
}

// List returns the departments visible to viewer
func (s *DepartmentService) List(ctx context.Context, filter dto.DepartmentFilter, viewer *models.Actor) ([]*models.Department, error) {
	q := repositories.DepartmentQuery{
		IsDeleted:      filter.IsDeleted,
		IncludeDeleted: viewer.CanSeeDeleted(),
	}
	if filter.Faculty != "" {
		faculty, ok := models.ParseFaculty(filter.Faculty)
		if !ok {
			return nil, apperrors.NewValidationError("faculty", fmt.Sprintf("%q is not a valid faculty", filter.Faculty))
		}
		q.Faculty = string(faculty)
	}
	return s.departmentRepo.List(ctx, q)
}

// Get retrieves a department visible to viewer
func (s *DepartmentService) Get(ctx context.Context, id string, viewer *models.Actor) (*models.Department, error) {
	return s.departmentRepo.GetByID(ctx, id, viewer.CanSeeDeleted())
}

// Create validates the department and persists it through the id allocator
func (s *DepartmentService) Create(ctx context.Context, req *dto.DepartmentRequest, actor *models.Actor) (*models.Department, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}

	d := &models.Department{
		Name:    strings.TrimSpace(req.Name),
		Faculty: req.Faculty,
	}
	if err := validateDepartment(d.Name, d.Faculty); err != nil {
		return nil, err
	}
	d.StampCreate(actor, s.now())

	if err := s.departmentRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info().Str("departmentID", d.ID).Int64("actor", actor.UserID).Msg("Department created")
	return d, nil
}

// Update changes the name and faculty. The identifier never changes.
func (s *DepartmentService) Update(ctx context.Context, id string, req *dto.DepartmentRequest, actor *models.Actor) (*models.Department, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}

	d, err := s.departmentRepo.GetByID(ctx, id, actor.CanSeeDeleted())
	if err != nil {
		return nil, err
	}

	d.Name = strings.TrimSpace(req.Name)
	d.Faculty = req.Faculty
	if err := validateDepartment(d.Name, d.Faculty); err != nil {
		return nil, err
	}
	d.StampUpdate(actor, s.now())

	if err := s.departmentRepo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete soft-deletes the department
func (s *DepartmentService) Delete(ctx context.Context, id string, actor *models.Actor) error {
	if err := models.RequireActor(actor); err != nil {
		return err
	}

	d, err := s.departmentRepo.GetByID(ctx, id, actor.CanSeeDeleted())
	if err != nil {
		return err
	}

	d.MarkDeleted(actor, s.now())
	if err := s.departmentRepo.SoftDelete(ctx, d); err != nil {
		return err
	}

	s.logger.Info().Str("departmentID", id).Int64("actor", actor.UserID).Msg("Department soft-deleted")
	return nil
}

// FacultyChoices lists the faculty values with their labels
func (s *DepartmentService) FacultyChoices() []models.Choice {
	return models.FacultyChoices()
}
