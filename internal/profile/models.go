// internal/profile/models.go

package profile

import (
	"time"
)

// Profile is the unified in-memory profile value. Identity and demographic
// fields live in the users table, lifestyle fields and preferences in
// user_profiles; the repository reads them back as one row. Optional fields
// are pointers so the API serializes explicit nulls instead of dropping keys.
type Profile struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	DisplayName    string     `json:"display_name" db:"display_name"`
	Bio            *string    `json:"bio" db:"bio"`
	Birthdate      *time.Time `json:"birthdate" db:"birthdate"`
	Gender         *string    `json:"gender" db:"gender"`
	ProfilePicture *string    `json:"profile_picture" db:"profile_picture"`
	Latitude       *float64   `json:"latitude" db:"latitude"`
	Longitude      *float64   `json:"longitude" db:"longitude"`

	// Lifestyle attributes from user_profiles
	HeightCM   *int    `json:"height_cm" db:"height_cm"`
	Education  *string `json:"education" db:"education"`
	Occupation *string `json:"occupation" db:"occupation"`
	Smoking    *string `json:"smoking" db:"smoking"`
	Drinking   *string `json:"drinking" db:"drinking"`
	Children   *string `json:"children" db:"children"`

	Preferences Preferences `json:"preferences" db:"preferences"`

	IsVerified   bool       `json:"is_verified" db:"is_verified"`
	VerifiedAt   *time.Time `json:"verified_at" db:"verified_at"`
	LastOnlineAt *time.Time `json:"last_online_at" db:"last_online_at"`
	IsOnline     bool       `json:"is_online"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Age returns the profile's age in whole years, or 0 when birthdate is unset
func (p *Profile) Age() int {
	if p.Birthdate == nil {
		return 0
	}
	now := time.Now()
	age := now.Year() - p.Birthdate.Year()
	if now.YearDay() < p.Birthdate.YearDay() {
		age--
	}
	return age
}

// UpdateProfileRequest represents a partial profile update. Only fields
// present in the request are written; nil means "leave unchanged".
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name" validate:"omitempty,min=2,max=100"`
	Bio         *string  `json:"bio" validate:"omitempty,max=500"`
	Birthdate   *string  `json:"birthdate" validate:"omitempty"`
	Gender      *string  `json:"gender" validate:"omitempty,oneof=male female nonbinary other"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
	HeightCM    *int     `json:"height_cm" validate:"omitempty,min=100,max=250"`
	Education   *string  `json:"education" validate:"omitempty,max=200"`
	Occupation  *string  `json:"occupation" validate:"omitempty,max=200"`
	Smoking     *string  `json:"smoking" validate:"omitempty,oneof=never sometimes often"`
	Drinking    *string  `json:"drinking" validate:"omitempty,oneof=never sometimes often"`
	Children    *string  `json:"children" validate:"omitempty,oneof=none have_some want_some dont_want"`
}

// DiscoverFilter represents pagination for discovery; the hard filters come
// from the caller's stored preferences
type DiscoverFilter struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
