// internal/profile/service.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrInvalidImageFormat = errors.New("invalid image format")
	ErrImageTooLarge      = errors.New("image size exceeds limit")
)

// Service defines the profile service interface
type Service interface {
	// Profile facade
	GetMyProfile(ctx context.Context, userID int64) (*Profile, error)
	GetProfile(ctx context.Context, userID int64, viewerID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error)

	// Preferences
	GetPreferences(ctx context.Context, userID int64) (Preferences, error)
	UpdatePreferences(ctx context.Context, userID int64, patch *PreferencesPatch) (Preferences, error)

	// Profile picture
	UploadProfilePicture(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error)
	DeleteProfilePicture(ctx context.Context, userID int64) error

	// Discovery
	DiscoverProfiles(ctx context.Context, userID int64, filter *DiscoverFilter) ([]*Profile, error)

	// Presence
	TouchPresence(ctx context.Context, userID int64)
}

// service implements the profile service
type service struct {
	repo          Repository
	uploadService UploadService
	presence      *Presence
	maxPhotoSize  int64
}

// NewService creates a new profile service
func NewService(repo Repository, uploadService UploadService, presence *Presence, maxPhotoSize int64) Service {
	return &service{
		repo:          repo,
		uploadService: uploadService,
		presence:      presence,
		maxPhotoSize:  maxPhotoSize,
	}
}

// GetMyProfile retrieves the current user's full profile
func (s *service) GetMyProfile(ctx context.Context, userID int64) (*Profile, error) {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.IsOnline = s.presence.IsOnline(ctx, userID)
	return profile, nil
}

// GetProfile retrieves another user's profile, refusing across a block
func (s *service) GetProfile(ctx context.Context, userID int64, viewerID int64) (*Profile, error) {
	if userID != viewerID {
		blocked, err := s.repo.IsBlockedEither(ctx, userID, viewerID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrUserBlocked
		}
	}

	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Viewers don't get the contact address
	if userID != viewerID {
		profile.Email = ""
	}

	profile.IsOnline = s.presence.IsOnline(ctx, userID)
	return profile, nil
}

// UpdateProfile applies a partial profile update
func (s *service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	var birthdate *time.Time
	if req.Birthdate != nil && *req.Birthdate != "" {
		parsed, err := time.Parse("2006-01-02", *req.Birthdate)
		if err != nil {
			return nil, fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		birthdate = &parsed
	}

	return s.repo.UpdateProfile(ctx, userID, req, birthdate)
}

// GetPreferences returns the user's normalized preferences
func (s *service) GetPreferences(ctx context.Context, userID int64) (Preferences, error) {
	return s.repo.GetPreferences(ctx, userID)
}

// UpdatePreferences merges a patch over the stored preferences and persists
// the result
func (s *service) UpdatePreferences(ctx context.Context, userID int64, patch *PreferencesPatch) (Preferences, error) {
	current, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return DefaultPreferences(), err
	}

	merged := MergePreferences(current, patch)
	if err := s.repo.UpdatePreferences(ctx, userID, merged); err != nil {
		return DefaultPreferences(), err
	}

	return merged, nil
}

// UploadProfilePicture uploads a profile picture and records its URL
func (s *service) UploadProfilePicture(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := s.validateImage(header); err != nil {
		return "", err
	}

	url, err := s.uploadService.UploadFile(ctx, file, header, "profile-pictures")
	if err != nil {
		return "", fmt.Errorf("failed to upload profile picture: %w", err)
	}

	if err := s.repo.UpdateProfilePicture(ctx, userID, url); err != nil {
		// Best effort cleanup of the orphaned object
		_ = s.uploadService.DeleteFile(ctx, url)
		return "", err
	}

	return url, nil
}

// DeleteProfilePicture removes the profile picture
func (s *service) DeleteProfilePicture(ctx context.Context, userID int64) error {
	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if profile.ProfilePicture != nil && *profile.ProfilePicture != "" {
		_ = s.uploadService.DeleteFile(ctx, *profile.ProfilePicture)
	}

	return s.repo.UpdateProfilePicture(ctx, userID, "")
}

// DiscoverProfiles returns candidates matching the caller's preferences
func (s *service) DiscoverProfiles(ctx context.Context, userID int64, filter *DiscoverFilter) ([]*Profile, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	me, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.repo.Discover(ctx, userID, prefs, me.Latitude, me.Longitude, filter)
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		p.Email = ""
		p.IsOnline = s.presence.IsOnline(ctx, p.UserID)
	}

	return profiles, nil
}

// TouchPresence marks the user as online
func (s *service) TouchPresence(ctx context.Context, userID int64) {
	if err := s.presence.Touch(ctx, userID); err != nil {
		// Presence is advisory, never fail a request over it
		return
	}
	_ = s.repo.TouchLastOnline(ctx, userID)
}

// validateImage validates an uploaded image
func (s *service) validateImage(header *multipart.FileHeader) error {
	maxSize := s.maxPhotoSize
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	if header.Size > maxSize {
		return ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowedExts := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
		".webp": true,
	}

	if !allowedExts[ext] {
		return ErrInvalidImageFormat
	}

	return nil
}
