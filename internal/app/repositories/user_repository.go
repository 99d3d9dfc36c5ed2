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

const (
	usersEmailKey  = "users_email_key"
	usersMobileKey = "users_mobile_number_key"
)

var userColumns = []string{
	"id", "email", "password_hash", "first_name", "last_name", "mobile_number", "profile_picture",
	"is_active", "is_staff", "is_superuser", "date_joined", "last_updated",
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, page helpers.Page) ([]*models.User, int64, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateProfilePicture(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, user *models.User) error
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.MobileNumber, &u.ProfilePicture,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.DateJoined, &u.LastUpdated)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and sets its id
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Insert("users").
		Columns(userColumns[1:]...).
		Values(user.Email, user.Password, user.FirstName, user.LastName, user.MobileNumber, user.ProfilePicture,
			user.IsActive, user.IsStaff, user.IsSuperuser, user.DateJoined, user.LastUpdated).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID); err != nil {
		return mapUserWriteError(err)
	}
	return nil
}

func (r *UserRepository) getBy(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by lower-cased email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

// List returns one page of users ordered by id
func (r *UserRepository) List(ctx context.Context, page helpers.Page) ([]*models.User, int64, error) {
	query := psql.Select(userColumns...).From("users")

	total, err := count(ctx, r.db, query)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.OrderBy("id").Limit(page.Limit()).Offset(page.Offset()).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) update(ctx context.Context, id int64, set map[string]interface{}) error {
	sql, args, err := psql.Update("users").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return mapUserWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateProfile writes the names and mobile number
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.update(ctx, user.ID, map[string]interface{}{
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"mobile_number": user.MobileNumber,
		"last_updated":  user.LastUpdated,
	})
}

// UpdateProfilePicture writes the stored picture key
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, user *models.User) error {
	return r.update(ctx, user.ID, map[string]interface{}{
		"profile_picture": user.ProfilePicture,
		"last_updated":    user.LastUpdated,
	})
}

// UpdatePassword writes the password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, user *models.User) error {
	return r.update(ctx, user.ID, map[string]interface{}{
		"password_hash": user.Password,
		"last_updated":  user.LastUpdated,
	})
}

func mapUserWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, usersEmailKey):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, usersMobileKey):
		return apperrors.NewConflictError("mobile number is already in use")
	}
	return fmt.Errorf("error saving user: %w", err)
}
