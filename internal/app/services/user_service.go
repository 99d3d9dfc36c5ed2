package services

import (
	"context"
	"fmt"
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

// UserService defines the interface for user operations
type UserService interface {
	Me(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UploadProfilePicture(ctx context.Context, userID int64, file *Upload) (*dto.UserResponse, error)
	List(ctx context.Context, page helpers.Page) (*dto.PaginatedResponse, error)
	ToResponse(user *models.User) *dto.UserResponse
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo    repositories.IUserRepository
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
	now         func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, fileStorage filestorage.FileStorage, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		logger:      logger,
		now:         time.Now,
	}
}

// ToResponse renders a user with a resolved profile picture URL
func (s *userServiceImpl) ToResponse(user *models.User) *dto.UserResponse {
	return dto.NewUserResponse(user, s.fileStorage.URL)
}

// Me returns the caller's profile
func (s *userServiceImpl) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.ToResponse(user), nil
}

// UpdateMe updates names and mobile number. Names are trimmed and title-cased.
func (s *userServiceImpl) UpdateMe(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.MobileNumber = req.MobileNumber
	user.Normalize()

	if err := validation.First(
		validation.String("firstName", user.FirstName).MaxLength(models.MaxNameLength).Check(),
		validation.String("lastName", user.LastName).MaxLength(models.MaxNameLength).Check(),
	); err != nil {
		return nil, err
	}
	if user.MobileNumber != nil && !models.ValidMobileNumber(*user.MobileNumber) {
		return nil, apperrors.NewValidationError("mobileNumber", "mobile number must be 10 digits starting with 6-9")
	}

	user.LastUpdated = s.now()
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return s.ToResponse(user), nil
}

// UploadProfilePicture stores a new picture and removes the previous one
func (s *userServiceImpl) UploadProfilePicture(ctx context.Context, userID int64, file *Upload) (*dto.UserResponse, error) {
	if file == nil {
		return nil, apperrors.NewValidationError("file", "file is required")
	}

	contentType, err := validation.ValidateImage(file.Filename, file.Content, models.MaxProfilePictureFileSize)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.fileStorage.Save(ctx, "profile_pictures", file.Filename, file.Content, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: profile picture: %w", apperrors.ErrStorage, err)
	}

	var previous string
	if user.ProfilePicture != nil {
		previous = *user.ProfilePicture
	}
	user.ProfilePicture = &key
	user.LastUpdated = s.now()

	if err := s.userRepo.UpdateProfilePicture(ctx, user); err != nil {
		discardFile(ctx, s.fileStorage, key)
		return nil, err
	}
	discardFile(ctx, s.fileStorage, previous)

	s.logger.Info().Int64("userID", userID).Str("key", key).Msg("Profile picture updated")
	return s.ToResponse(user), nil
}

// List returns one page of users for staff
func (s *userServiceImpl) List(ctx context.Context, page helpers.Page) (*dto.PaginatedResponse, error) {
	users, total, err := s.userRepo.List(ctx, page)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, s.ToResponse(u))
	}
	resp := helpers.NewPaginatedResponse(items, total, page)
	return &resp, nil
}
