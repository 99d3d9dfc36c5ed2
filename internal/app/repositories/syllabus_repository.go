package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/dberrors"
	"github.com/yigit/uniadmin/internal/pkg/helpers"
)

const syllabusCourseVersionKey = "syllabi_course_code_version_key"

// uploaded_by maps to Audit.CreatedBy
var syllabusColumns = []string{
	"id", "course_code", "course_name", "file", "version", "description",
	"uploaded_by", "updated_by", "created_at", "updated_at", "is_deleted",
}

// SyllabusQuery filters syllabus lists
type SyllabusQuery struct {
	Course         string
	Version        string
	IsDeleted      *bool
	IncludeDeleted bool
}

// ISyllabusRepository defines syllabus persistence
type ISyllabusRepository interface {
	List(ctx context.Context, q SyllabusQuery, page helpers.Page) ([]*models.Syllabus, int64, error)
	ListAll(ctx context.Context, q SyllabusQuery) ([]*models.Syllabus, error)
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*models.Syllabus, error)
	Create(ctx context.Context, syllabus *models.Syllabus) error
	Update(ctx context.Context, syllabus *models.Syllabus) error
	SoftDelete(ctx context.Context, syllabus *models.Syllabus) error
}

// SyllabusRepository handles database operations for syllabi
type SyllabusRepository struct {
	db *pgxpool.Pool
}

// NewSyllabusRepository creates a new SyllabusRepository
func NewSyllabusRepository(db *pgxpool.Pool) *SyllabusRepository {
	return &SyllabusRepository{db: db}
}

func scanSyllabus(row pgx.Row) (*models.Syllabus, error) {
	var s models.Syllabus
	err := row.Scan(&s.ID, &s.CourseCode, &s.CourseName, &s.File, &s.Version, &s.Description,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt, &s.IsDeleted)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SyllabusRepository) filtered(q SyllabusQuery) squirrel.SelectBuilder {
	query := Visible(psql.Select(syllabusColumns...).From("syllabi"), q.IncludeDeleted)
	query = deletedFilter(query, q.IsDeleted)
	if q.Course != "" {
		query = query.Where(squirrel.Eq{"course_code": q.Course})
	}
	if q.Version != "" {
		query = query.Where(squirrel.Eq{"version": q.Version})
	}
	return query
}

// List returns one page of syllabi ordered by course code then version, with the total count
func (r *SyllabusRepository) List(ctx context.Context, q SyllabusQuery, page helpers.Page) ([]*models.Syllabus, int64, error) {
	query := r.filtered(q)

	total, err := count(ctx, r.db, query)
	if err != nil {
		return nil, 0, err
	}

	syllabi, err := r.query(ctx, query.OrderBy("course_code", "version", "id").Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return syllabi, total, nil
}

// ListAll returns every matching syllabus, used by exports
func (r *SyllabusRepository) ListAll(ctx context.Context, q SyllabusQuery) ([]*models.Syllabus, error) {
	return r.query(ctx, r.filtered(q).OrderBy("id"))
}

func (r *SyllabusRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Syllabus, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list syllabi query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing syllabi: %w", err)
	}
	defer rows.Close()

	syllabi := make([]*models.Syllabus, 0)
	for rows.Next() {
		s, err := scanSyllabus(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning syllabus: %w", err)
		}
		syllabi = append(syllabi, s)
	}
	return syllabi, rows.Err()
}

// GetByID retrieves a syllabus by id
func (r *SyllabusRepository) GetByID(ctx context.Context, id int64, includeDeleted bool) (*models.Syllabus, error) {
	sql, args, err := Visible(psql.Select(syllabusColumns...).From("syllabi"), includeDeleted).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get syllabus query: %w", err)
	}

	s, err := scanSyllabus(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("syllabus %d not found", id))
		}
		return nil, fmt.Errorf("error retrieving syllabus: %w", err)
	}
	return s, nil
}

// Create inserts a syllabus and sets its id
func (r *SyllabusRepository) Create(ctx context.Context, syllabus *models.Syllabus) error {
	sql, args, err := psql.Insert("syllabi").
		Columns(syllabusColumns[1:]...).
		Values(syllabus.CourseCode, syllabus.CourseName, syllabus.File, syllabus.Version, syllabus.Description,
			syllabus.CreatedBy, syllabus.UpdatedBy, syllabus.CreatedAt, syllabus.UpdatedAt, syllabus.IsDeleted).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert syllabus query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&syllabus.ID); err != nil {
		return mapSyllabusWriteError(err, syllabus)
	}
	return nil
}

// Update writes the mutable syllabus fields. uploaded_by is never changed.
func (r *SyllabusRepository) Update(ctx context.Context, syllabus *models.Syllabus) error {
	sql, args, err := psql.Update("syllabi").
		Set("course_code", syllabus.CourseCode).
		Set("course_name", syllabus.CourseName).
		Set("file", syllabus.File).
		Set("version", syllabus.Version).
		Set("description", syllabus.Description).
		Set("updated_by", syllabus.UpdatedBy).
		Set("updated_at", syllabus.UpdatedAt).
		Where(squirrel.Eq{"id": syllabus.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update syllabus query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapSyllabusWriteError(err, syllabus)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("syllabus %d not found", syllabus.ID))
	}
	return nil
}

// SoftDelete flags the syllabus as deleted
func (r *SyllabusRepository) SoftDelete(ctx context.Context, syllabus *models.Syllabus) error {
	return softDelete(ctx, r.db, "syllabi", squirrel.Eq{"id": syllabus.ID}, syllabus.UpdatedBy, syllabus.UpdatedAt)
}

func mapSyllabusWriteError(err error, syllabus *models.Syllabus) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, syllabusCourseVersionKey):
		return apperrors.NewConflictError(fmt.Sprintf("syllabus version %s already exists for course %s", syllabus.Version, syllabus.CourseCode))
	case dberrors.IsForeignKeyError(err):
		return apperrors.NewValidationError("course", fmt.Sprintf("course %s does not exist", syllabus.CourseCode))
	}
	return fmt.Errorf("error saving syllabus: %w", err)
}
