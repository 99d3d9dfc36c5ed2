package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/db"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/dberrors"
	"github.com/yigit/uniadmin/internal/pkg/logger"
	"github.com/yigit/uniadmin/internal/pkg/metrics"
)

const departmentNameFacultyKey = "departments_name_faculty_key"

var departmentColumns = []string{"id", "name", "faculty", "created_by", "updated_by", "created_at", "updated_at", "is_deleted"}

// DepartmentQuery filters department lists
type DepartmentQuery struct {
	Faculty        string
	IsDeleted      *bool
	IncludeDeleted bool
}

// IDepartmentRepository defines department persistence
type IDepartmentRepository interface {
	List(ctx context.Context, q DepartmentQuery) ([]*models.Department, error)
	GetByID(ctx context.Context, id string, includeDeleted bool) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	SoftDelete(ctx context.Context, department *models.Department) error
}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db      *pgxpool.Pool
	metrics *metrics.Registry
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool, m *metrics.Registry) *DepartmentRepository {
	return &DepartmentRepository{
		db:      db,
		metrics: m,
	}
}

func scanDepartment(row pgx.Row) (*models.Department, error) {
	var d models.Department
	err := row.Scan(&d.ID, &d.Name, &d.Faculty, &d.CreatedBy, &d.UpdatedBy, &d.CreatedAt, &d.UpdatedAt, &d.IsDeleted)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns departments ordered by id
func (r *DepartmentRepository) List(ctx context.Context, q DepartmentQuery) ([]*models.Department, error) {
	query := Visible(psql.Select(departmentColumns...).From("departments"), q.IncludeDeleted)
	query = deletedFilter(query, q.IsDeleted)
	if q.Faculty != "" {
		query = query.Where(squirrel.Eq{"faculty": q.Faculty})
	}

	sql, args, err := query.OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list departments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*models.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// GetByID retrieves a department by its three digit id
func (r *DepartmentRepository) GetByID(ctx context.Context, id string, includeDeleted bool) (*models.Department, error) {
	sql, args, err := Visible(psql.Select(departmentColumns...).From("departments"), includeDeleted).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get department query: %w", err)
	}

	d, err := scanDepartment(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("department %s not found", id))
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}
	return d, nil
}

// Create allocates the next identifier and inserts the department in one
// transaction. The table lock serializes concurrent allocations. A
// department that already carries an id is rejected before any SQL runs.
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	if department.ID != "" {
		r.metrics.IncAllocation(metrics.AllocationPolicyViolation)
		logger.Error().Str("departmentID", department.ID).Msg("Department created with a preset id, allocator bypass rejected")
		return apperrors.ErrPolicyViolation
	}

	var allocated string
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "LOCK TABLE departments IN SHARE ROW EXCLUSIVE MODE"); err != nil {
			return fmt.Errorf("failed to lock departments: %w", err)
		}

		var currentMax string
		if err := tx.QueryRow(ctx, "SELECT COALESCE(MAX(id), '') FROM departments").Scan(&currentMax); err != nil {
			return fmt.Errorf("failed to read max department id: %w", err)
		}

		next, err := models.NextDepartmentID(currentMax)
		if err != nil {
			return err
		}

		sql, args, err := psql.Insert("departments").
			Columns(departmentColumns...).
			Values(next, department.Name, department.Faculty, department.CreatedBy, department.UpdatedBy,
				department.CreatedAt, department.UpdatedAt, department.IsDeleted).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert department query: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
		allocated = next
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrCapacityExceeded):
			r.metrics.IncAllocation(metrics.AllocationCapacityExceeded)
			logger.Error().Int("last", models.DepartmentIDLast).Msg("Department identifier space exhausted")
			return err
		case dberrors.IsDuplicateConstraintError(err, departmentNameFacultyKey):
			return apperrors.NewConflictError("department with this name already exists in the faculty")
		}
		return fmt.Errorf("error creating department: %w", err)
	}

	department.ID = allocated
	r.metrics.IncAllocation(metrics.AllocationAllocated)
	return nil
}

// Update writes name, faculty and the updater columns
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	sql, args, err := psql.Update("departments").
		Set("name", department.Name).
		Set("faculty", department.Faculty).
		Set("updated_by", department.UpdatedBy).
		Set("updated_at", department.UpdatedAt).
		Where(squirrel.Eq{"id": department.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, departmentNameFacultyKey) {
			return apperrors.NewConflictError("department with this name already exists in the faculty")
		}
		return fmt.Errorf("error updating department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("department %s not found", department.ID))
	}
	return nil
}

// SoftDelete flags the department as deleted
func (r *DepartmentRepository) SoftDelete(ctx context.Context, department *models.Department) error {
	return softDelete(ctx, r.db, "departments", squirrel.Eq{"id": department.ID}, department.UpdatedBy, department.UpdatedAt)
}
