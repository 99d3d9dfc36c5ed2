package models

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MaxNameLength             = 50
	MaxProfilePictureFileSize = 2 << 20
)

var mobileNumberPattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// User is an account that can authenticate against the API
type User struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	Email          string    `json:"email" db:"email" example:"jane@university.edu"`
	Password       string    `json:"-" db:"password_hash"`
	FirstName      string    `json:"firstName" db:"first_name" example:"Jane"`
	LastName       string    `json:"lastName" db:"last_name" example:"Doe"`
	MobileNumber   *string   `json:"mobileNumber,omitempty" db:"mobile_number" example:"9876543210"`
	ProfilePicture *string   `json:"profilePicture,omitempty" db:"profile_picture"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	IsStaff        bool      `json:"isStaff" db:"is_staff"`
	IsSuperuser    bool      `json:"isSuperuser" db:"is_superuser"`
	DateJoined     time.Time `json:"dateJoined" db:"date_joined"`
	LastUpdated    time.Time `json:"lastUpdated" db:"last_updated"`
}

// Normalize lower-cases the email and title-cases trimmed names
func (u *User) Normalize() {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = TitleName(u.FirstName)
	u.LastName = TitleName(u.LastName)
	if u.MobileNumber != nil {
		m := strings.TrimSpace(*u.MobileNumber)
		if m == "" {
			u.MobileNumber = nil
		} else {
			u.MobileNumber = &m
		}
	}
}

// Actor returns the identity used for audit stamping
func (u *User) Actor() *Actor {
	return &Actor{UserID: u.ID, IsStaff: u.IsStaff || u.IsSuperuser}
}

// TitleName trims and title-cases a personal name
func TitleName(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// ValidMobileNumber checks a ten digit Indian mobile number
func ValidMobileNumber(s string) bool {
	return mobileNumberPattern.MatchString(s)
}
