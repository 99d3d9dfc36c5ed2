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
	"github.com/yigit/uniadmin/internal/pkg/filestorage"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
	"github.com/yigit/uniadmin/internal/pkg/validation"
)

// SyllabusService handles syllabus uploads
type SyllabusService struct {
	syllabusRepo repositories.ISyllabusRepository
	courseRepo   repositories.ICourseRepository
	storage      filestorage.FileStorage
	logger       zerolog.Logger
	now          func() time.Time
}

// NewSyllabusService creates a new syllabus service
func NewSyllabusService(
	syllabusRepo repositories.ISyllabusRepository,
	courseRepo repositories.ICourseRepository,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *SyllabusService {
	return &SyllabusService{
		syllabusRepo: syllabusRepo,
		courseRepo:   courseRepo,
		storage:      storage,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *SyllabusService) withURL(syllabus *models.Syllabus) *models.Syllabus {
	if syllabus.File != "" {
		syllabus.FileURL = s.storage.URL(syllabus.File)
	}
	return syllabus
}

// List returns one page of syllabi visible to viewer
func (s *SyllabusService) List(ctx context.Context, filter dto.SyllabusFilter, page helpers.Page, viewer *models.Actor) (*dto.PaginatedResponse, error) {
	syllabi, total, err := s.syllabusRepo.List(ctx, repositories.SyllabusQuery{
		Course:         filter.Course,
		Version:        filter.Version,
		IsDeleted:      filter.IsDeleted,
		IncludeDeleted: viewer.CanSeeDeleted(),
	}, page)
	if err != nil {
		return nil, err
	}

	for _, syllabus := range syllabi {
		s.withURL(syllabus)
	}
	resp := helpers.NewPaginatedResponse(syllabi, total, page)
	return &resp, nil
}

// Get retrieves a syllabus visible to viewer
func (s *SyllabusService) Get(ctx context.Context, id int64, viewer *models.Actor) (*models.Syllabus, error) {
	syllabus, err := s.syllabusRepo.GetByID(ctx, id, viewer.CanSeeDeleted())
	if err != nil {
		return nil, err
	}
	return s.withURL(syllabus), nil
}

// Create stores the PDF and records the syllabus
func (s *SyllabusService) Create(ctx context.Context, req *dto.SyllabusForm, file *Upload, actor *models.Actor) (*models.Syllabus, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.NewValidationError("file", "file is required")
	}

	syllabus := &models.Syllabus{Description: req.Description}
	if err := s.prepare(ctx, syllabus, req); err != nil {
		return nil, err
	}

	key, err := s.store(ctx, file)
	if err != nil {
		return nil, err
	}
	syllabus.File = key
	syllabus.StampCreate(actor, s.now())

	if err := s.syllabusRepo.Create(ctx, syllabus); err != nil {
		discardFile(ctx, s.storage, key)
		return nil, err
	}

	s.logger.Info().Int64("syllabusID", syllabus.ID).Str("courseCode", syllabus.CourseCode).Msg("Syllabus uploaded")
	return s.withURL(syllabus), nil
}

// Update changes the metadata and optionally replaces the file. The
// uploader is never changed.
func (s *SyllabusService) Update(ctx context.Context, id int64, req *dto.SyllabusForm, file *Upload, actor *models.Actor) (*models.Syllabus, error) {
	if err := models.RequireActor(actor); err != nil {
		return nil, err
	}

	syllabus, err := s.syllabusRepo.GetByID(ctx, id, actor.CanSeeDeleted())
	if err != nil {
		return nil, err
	}

	syllabus.Description = req.Description
	if err := s.prepare(ctx, syllabus, req); err != nil {
		return nil, err
	}

	oldFile := syllabus.File
	if file != nil {
		key, err := s.store(ctx, file)
		if err != nil {
			return nil, err
		}
		syllabus.File = key
	}
	syllabus.StampUpdate(actor, s.now())

	if err := s.syllabusRepo.Update(ctx, syllabus); err != nil {
		if syllabus.File != oldFile {
			discardFile(ctx, s.storage, syllabus.File)
		}
		return nil, err
	}
	if syllabus.File != oldFile {
		discardFile(ctx, s.storage, oldFile)
	}
	return s.withURL(syllabus), nil
}

// Delete soft-deletes the syllabus and keeps its file
func (s *SyllabusService) Delete(ctx context.Context, id int64, actor *models.Actor) error {
	if err := models.RequireActor(actor); err != nil {
		return err
	}

	syllabus, err := s.syllabusRepo.GetByID(ctx, id, actor.CanSeeDeleted())
	if err != nil {
		return err
	}

	syllabus.MarkDeleted(actor, s.now())
	return s.syllabusRepo.SoftDelete(ctx, syllabus)
}

// prepare applies the course and version and reloads the course so the
// denormalized course name is current on every save.
func (s *SyllabusService) prepare(ctx context.Context, syllabus *models.Syllabus, req *dto.SyllabusForm) error {
	version := strings.TrimSpace(req.Version)
	if version == "" {
		version = models.DefaultSyllabusVersion
	}
	if err := validation.String("version", version).MaxLength(models.MaxSyllabusVersion).Check(); err != nil {
		return err
	}
	syllabus.Version = version

	code := strings.TrimSpace(req.Course)
	course, err := s.courseRepo.GetByCode(ctx, code, false)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewValidationError("course", fmt.Sprintf("course %s does not exist", code))
		}
		return err
	}
	syllabus.SyncCourse(course)
	return nil
}

func (s *SyllabusService) store(ctx context.Context, file *Upload) (string, error) {
	if _, err := validation.ValidatePDF(file.Filename, file.Content, validation.SyllabusLimits); err != nil {
		return "", err
	}

	key, err := s.storage.Save(ctx, models.SyllabusDir(s.now()), file.Filename, file.Content, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("%w: syllabus file: %w", apperrors.ErrStorage, err)
	}
	return key, nil
}
