package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	appRepos "github.com/yigit/uniadmin/internal/app/repositories"
	appServices "github.com/yigit/uniadmin/internal/app/services"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/auth"
)

// DefaultDepartments is created by SeedDepartments on an empty database
var DefaultDepartments = []dto.DepartmentRequest{
	{Name: "Computer Science", Faculty: appModels.FacultyIC},
	{Name: "Electrical Engineering", Faculty: appModels.FacultyET},
	{Name: "Mechanical Engineering", Faculty: appModels.FacultyET},
	{Name: "Biotechnology", Faculty: appModels.FacultyLS},
	{Name: "Mathematics", Faculty: appModels.FacultyMS},
}

// EnsureSuperuser creates an active staff superuser unless the email is
// already registered. It reports whether a user was created.
func EnsureSuperuser(ctx context.Context, users appRepos.IUserRepository, email, password string, lgr zerolog.Logger) (bool, error) {
	if email == "" || password == "" {
		lgr.Debug().Msg("No admin credentials configured, skipping superuser creation")
		return false, nil
	}

	if _, err := users.GetByEmail(ctx, email); err == nil {
		lgr.Debug().Str("email", email).Msg("Superuser already exists")
		return false, nil
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) && !errors.Is(err, apperrors.ErrUserNotFound) {
		return false, fmt.Errorf("failed to look up superuser: %w", err)
	}

	if err := auth.ValidatePasswordLength(password); err != nil {
		return false, fmt.Errorf("admin password rejected: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("error hashing password: %w", err)
	}

	now := time.Now()
	user := &appModels.User{
		Email:       email,
		Password:    hash,
		FirstName:   "Admin",
		LastName:    "User",
		IsActive:    true,
		IsStaff:     true,
		IsSuperuser: true,
		DateJoined:  now,
		LastUpdated: now,
	}
	user.Normalize()

	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create superuser: %w", err)
	}

	lgr.Info().Int64("userID", user.ID).Str("email", user.Email).Msg("Superuser created")
	return true, nil
}

// SeedDepartments creates DefaultDepartments through the id allocator.
// Departments that already exist are skipped; other failures are collected.
func SeedDepartments(ctx context.Context, departments *appServices.DepartmentService, actor *appModels.Actor, lgr zerolog.Logger) (int, error) {
	var created int
	var finalErr error

	for _, req := range DefaultDepartments {
		req := req
		d, err := departments.Create(ctx, &req, actor)
		switch {
		case err == nil:
			created++
			lgr.Info().Str("departmentID", d.ID).Str("name", d.Name).Msg("Default department created")
		case errors.Is(err, apperrors.ErrResourceAlreadyExists):
			lgr.Debug().Str("name", req.Name).Msg("Default department already exists")
		default:
			lgr.Error().Err(err).Str("name", req.Name).Msg("Error creating default department")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return created, finalErr
}
