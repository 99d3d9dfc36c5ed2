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

var courseColumns = []string{
	"code", "name", "course_category", "type", "cbcs_category", "maximum_credit", "discipline_id",
	"created_by", "updated_by", "created_at", "updated_at", "is_deleted",
}

// CourseQuery filters course lists
type CourseQuery struct {
	Discipline     string
	CourseCategory string
	Type           string
	CBCSCategory   string
	IsDeleted      *bool
	IncludeDeleted bool
}

// ICourseRepository defines course persistence
type ICourseRepository interface {
	List(ctx context.Context, q CourseQuery, page helpers.Page) ([]*models.Course, int64, error)
	ListAll(ctx context.Context, q CourseQuery) ([]*models.Course, error)
	GetByCode(ctx context.Context, code string, includeDeleted bool) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SoftDelete(ctx context.Context, course *models.Course) error
}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: db}
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(&c.Code, &c.Name, &c.CourseCategory, &c.Type, &c.CBCSCategory, &c.MaximumCredit, &c.DisciplineID,
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt, &c.IsDeleted)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) filtered(q CourseQuery) squirrel.SelectBuilder {
	query := Visible(psql.Select(courseColumns...).From("courses"), q.IncludeDeleted)
	query = deletedFilter(query, q.IsDeleted)

	eq := squirrel.Eq{}
	if q.Discipline != "" {
		eq["discipline_id"] = q.Discipline
	}
	if q.CourseCategory != "" {
		eq["course_category"] = q.CourseCategory
	}
	if q.Type != "" {
		eq["type"] = q.Type
	}
	if q.CBCSCategory != "" {
		eq["cbcs_category"] = q.CBCSCategory
	}
	if len(eq) > 0 {
		query = query.Where(eq)
	}
	return query
}

// List returns one page of courses ordered by code, with the total count
func (r *CourseRepository) List(ctx context.Context, q CourseQuery, page helpers.Page) ([]*models.Course, int64, error) {
	query := r.filtered(q)

	total, err := count(ctx, r.db, query)
	if err != nil {
		return nil, 0, err
	}

	courses, err := r.query(ctx, query.OrderBy("code").Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

// ListAll returns every matching course, used by exports
func (r *CourseRepository) ListAll(ctx context.Context, q CourseQuery) ([]*models.Course, error) {
	return r.query(ctx, r.filtered(q).OrderBy("code"))
}

func (r *CourseRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Course, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetByCode retrieves a course by code
func (r *CourseRepository) GetByCode(ctx context.Context, code string, includeDeleted bool) (*models.Course, error) {
	sql, args, err := Visible(psql.Select(courseColumns...).From("courses"), includeDeleted).
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	c, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("course %s not found", code))
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return c, nil
}

// Create inserts a course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := psql.Insert("courses").
		Columns(courseColumns...).
		Values(course.Code, course.Name, course.CourseCategory, course.Type, course.CBCSCategory, course.MaximumCredit,
			course.DisciplineID, course.CreatedBy, course.UpdatedBy, course.CreatedAt, course.UpdatedAt, course.IsDeleted).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert course query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return mapCourseWriteError(err, course)
	}
	return nil
}

// Update writes the mutable course fields. Creator columns are left untouched.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	sql, args, err := psql.Update("courses").
		Set("name", course.Name).
		Set("course_category", course.CourseCategory).
		Set("type", course.Type).
		Set("cbcs_category", course.CBCSCategory).
		Set("maximum_credit", course.MaximumCredit).
		Set("discipline_id", course.DisciplineID).
		Set("updated_by", course.UpdatedBy).
		Set("updated_at", course.UpdatedAt).
		Where(squirrel.Eq{"code": course.Code}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapCourseWriteError(err, course)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("course %s not found", course.Code))
	}
	return nil
}

// SoftDelete flags the course as deleted
func (r *CourseRepository) SoftDelete(ctx context.Context, course *models.Course) error {
	return softDelete(ctx, r.db, "courses", squirrel.Eq{"code": course.Code}, course.UpdatedBy, course.UpdatedAt)
}

func mapCourseWriteError(err error, course *models.Course) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, "courses_pkey"):
		return apperrors.NewConflictError(fmt.Sprintf("course with code %s already exists", course.Code))
	case dberrors.IsForeignKeyError(err):
		return apperrors.NewValidationError("disciplineId", fmt.Sprintf("department %s does not exist", course.DisciplineID))
	}
	return fmt.Errorf("error saving course: %w", err)
}
