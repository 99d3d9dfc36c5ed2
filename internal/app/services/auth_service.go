package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniadmin/internal/app/models"
	"github.com/yigit/uniadmin/internal/app/models/dto"
	"github.com/yigit/uniadmin/internal/app/repositories"
	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"github.com/yigit/uniadmin/internal/pkg/auth"
	"github.com/yigit/uniadmin/internal/pkg/metrics"
)

// Revocation reasons reported to metrics
const (
	revokedByLogout         = "logout"
	revokedByPasswordChange = "password_change"
	revokedByRotation       = "rotation"
)

// AuthConfig holds the session policy switches
type AuthConfig struct {
	// RotateRefreshTokens issues a new refresh token on every refresh
	RotateRefreshTokens bool
	// BlacklistAfterRotation revokes the presented refresh token once it
	// has been rotated. Off by default.
	BlacklistAfterRotation bool
	// Now overrides the clock, mainly for tests
	Now func() time.Time
}

// AuthService issues, validates, refreshes and revokes sessions
type AuthService struct {
	userRepo   repositories.IUserRepository
	blacklist  auth.Blacklist
	jwtService *auth.JWTService
	config     AuthConfig
	metrics    *metrics.Registry
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	blacklist auth.Blacklist,
	jwtService *auth.JWTService,
	config AuthConfig,
	m *metrics.Registry,
	logger zerolog.Logger,
) *AuthService {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		jwtService: jwtService,
		config:     config,
		metrics:    m,
		logger:     logger,
		now:        now,
	}
}

// Register creates an active, non-staff account and opens a session for it
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, *auth.TokenPair, error) {
	if err := auth.ValidatePasswordLength(req.Password); err != nil {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:        req.Email,
		Password:     hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		MobileNumber: req.MobileNumber,
		IsActive:     true,
		DateJoined:   now,
		LastUpdated:  now,
	}
	user.Normalize()

	if user.MobileNumber != nil && !models.ValidMobileNumber(*user.MobileNumber) {
		return nil, nil, apperrors.NewValidationError("mobileNumber", "mobile number must be 10 digits starting with 6-9")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, "a user with this email already exists")
		}
		return nil, nil, fmt.Errorf("user creation error: %w", err)
	}

	pair, err := s.jwtService.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("token generation error: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User registered")
	return user, pair, nil
}

// Login verifies credentials and issues a new token pair. Unknown email,
// wrong password and inactive account are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *auth.TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Debug().Str("email", email).Msg("Login for unknown email")
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Int64("userID", user.ID).Msg("Login with wrong password")
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Debug().Int64("userID", user.ID).Msg("Login to inactive account")
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("token generation error: %w", err)
	}
	return user, pair, nil
}

// Authenticate resolves an access token to an active user. It returns
// ErrInvalidToken, ErrUserNotFound or ErrUserInactive; the HTTP layer
// reports all of them identically.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.jwtService.ValidateToken(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}

	for _, jti := range []string{claims.ID, claims.SessionID} {
		if jti == "" {
			continue
		}
		revoked, err := s.blacklist.IsRevoked(ctx, jti)
		if err != nil {
			s.logger.Error().Err(err).Str("jti", jti).Msg("Blacklist lookup failed during authentication")
			return nil, fmt.Errorf("%w: blacklist unavailable", apperrors.ErrInvalidToken)
		}
		if revoked {
			return nil, fmt.Errorf("%w: session revoked", apperrors.ErrInvalidToken)
		}
	}

	return s.activeUser(ctx, claims.UserID)
}

func (s *AuthService) activeUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}
	return user, nil
}

// Refresh exchanges a refresh token for a new access token. With rotation
// enabled a new refresh token is issued too and the returned pair carries
// it; otherwise RefreshToken is empty and the access token stays bound to
// the presented session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Refresh with invalid token")
		return nil, apperrors.ErrInvalidRefreshToken
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("jti", claims.ID).Msg("Blacklist lookup failed during refresh")
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if revoked {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if _, err := s.activeUser(ctx, claims.UserID); err != nil {
		s.logger.Debug().Err(err).Int64("userID", claims.UserID).Msg("Refresh for unusable account")
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if !s.config.RotateRefreshTokens {
		access, exp, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("token generation error: %w", err)
		}
		return &auth.TokenPair{AccessToken: access, AccessExpiresAt: exp}, nil
	}

	pair, err := s.jwtService.GenerateTokenPair(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if s.config.BlacklistAfterRotation {
		s.revoke(ctx, claims, revokedByRotation)
	}
	return pair, nil
}

// Logout revokes the refresh token. Missing, invalid and already revoked
// tokens are accepted silently, as are blacklist failures.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.jwtService.ValidateToken(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return
	}
	s.revoke(ctx, claims, revokedByLogout)
}

// ChangePassword replaces the password and revokes the presented refresh
// token so the caller has to log in again. A refresh token belonging to
// another user is left alone.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest, refreshToken string) error {
	if req.OldPassword == req.NewPassword {
		return apperrors.NewValidationError("newPassword", "new password must be different from the old password")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(user.Password, req.OldPassword) {
		return apperrors.NewCustomError(apperrors.ErrOldPasswordMismatch, "old password is incorrect").
			WithDetails(map[string]interface{}{"oldPassword": "old password is incorrect"})
	}

	if err := auth.ValidatePasswordPolicy(req.NewPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	user.Password = hash
	user.LastUpdated = s.now()

	if err := s.userRepo.UpdatePassword(ctx, user); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if refreshToken != "" {
		if claims, err := s.jwtService.ValidateToken(refreshToken, auth.TokenTypeRefresh); err == nil {
			if claims.UserID == userID {
				s.revoke(ctx, claims, revokedByPasswordChange)
			} else {
				s.logger.Warn().Int64("userID", userID).Int64("tokenUserID", claims.UserID).
					Msg("Refresh token of another user presented on password change, not revoked")
			}
		}
	}

	s.logger.Info().Int64("userID", userID).Msg("Password changed")
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims, reason string) {
	revoked, err := s.blacklist.Revoke(ctx, claims.ID, claims.UserID, claims.ExpiresAtTime())
	if err != nil {
		s.logger.Warn().Err(err).Str("jti", claims.ID).Str("reason", reason).Msg("Failed to blacklist refresh token")
		return
	}
	if revoked {
		s.metrics.IncRevocation(reason)
	}
}
