package dto

import (
	"time"

	"github.com/yigit/uniadmin/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@university.edu"`
	Password string `json:"password" binding:"required" example:"Secret123!"`
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email        string  `json:"email" binding:"required,email,max=254"`
	Password     string  `json:"password" binding:"required,min=8"`
	FirstName    string  `json:"firstName" binding:"required,max=50"`
	LastName     string  `json:"lastName" binding:"required,max=50"`
	MobileNumber *string `json:"mobileNumber" binding:"omitempty,mobile"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// RefreshTokenRequest is only honoured when header fallback is enabled;
// otherwise the refresh token is read from its cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse carries token lifetimes. Raw tokens are only included
// when bearer header fallback is enabled.
type TokenResponse struct {
	AccessToken           string `json:"accessToken,omitempty"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	ExpiresIn             int64  `json:"expiresIn" example:"900"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"86400"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Message string        `json:"message,omitempty" example:"Registration successful"`
	Token   TokenResponse `json:"token"`
	User    *UserResponse `json:"user,omitempty"`
}

// UserResponse represents the public view of a user
type UserResponse struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	MobileNumber      *string   `json:"mobileNumber,omitempty"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	IsActive          bool      `json:"isActive"`
	IsStaff           bool      `json:"isStaff"`
	DateJoined        time.Time `json:"dateJoined"`
}

// NewUserResponse builds a UserResponse. pictureURL resolves the stored
// profile picture key to a public URL.
func NewUserResponse(u *models.User, pictureURL func(string) string) *UserResponse {
	if u == nil {
		return nil
	}
	resp := &UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		MobileNumber: u.MobileNumber,
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		DateJoined:   u.DateJoined,
	}
	if u.ProfilePicture != nil && pictureURL != nil {
		resp.ProfilePictureURL = pictureURL(*u.ProfilePicture)
	}
	return resp
}
