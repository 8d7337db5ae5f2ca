// internal/profile/service_test.go

package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProfileRepo lets each test wire only the calls it cares about.
type stubProfileRepo struct {
	getProfileByUserID   func(ctx context.Context, userID int64) (*Profile, error)
	updateProfile        func(ctx context.Context, userID int64, req *UpdateProfileRequest, birthdate *time.Time) (*Profile, error)
	updateProfilePicture func(ctx context.Context, userID int64, url string) error
	getPreferences       func(ctx context.Context, userID int64) (Preferences, error)
	updatePreferences    func(ctx context.Context, userID int64, prefs Preferences) error
	discover             func(ctx context.Context, userID int64, prefs Preferences, lat, lng *float64, filter *DiscoverFilter) ([]*Profile, error)
	isBlockedEither      func(ctx context.Context, userID, otherID int64) (bool, error)
	touchLastOnline      func(ctx context.Context, userID int64) error
}

func (s *stubProfileRepo) GetProfileByUserID(ctx context.Context, userID int64) (*Profile, error) {
	if s.getProfileByUserID != nil {
		return s.getProfileByUserID(ctx, userID)
	}
	return &Profile{UserID: userID}, nil
}

func (s *stubProfileRepo) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest, birthdate *time.Time) (*Profile, error) {
	if s.updateProfile != nil {
		return s.updateProfile(ctx, userID, req, birthdate)
	}
	return &Profile{UserID: userID}, nil
}

func (s *stubProfileRepo) UpdateProfilePicture(ctx context.Context, userID int64, url string) error {
	if s.updateProfilePicture != nil {
		return s.updateProfilePicture(ctx, userID, url)
	}
	return nil
}

func (s *stubProfileRepo) GetPreferences(ctx context.Context, userID int64) (Preferences, error) {
	if s.getPreferences != nil {
		return s.getPreferences(ctx, userID)
	}
	return DefaultPreferences(), nil
}

func (s *stubProfileRepo) UpdatePreferences(ctx context.Context, userID int64, prefs Preferences) error {
	if s.updatePreferences != nil {
		return s.updatePreferences(ctx, userID, prefs)
	}
	return nil
}

func (s *stubProfileRepo) Discover(ctx context.Context, userID int64, prefs Preferences, lat, lng *float64, filter *DiscoverFilter) ([]*Profile, error) {
	if s.discover != nil {
		return s.discover(ctx, userID, prefs, lat, lng, filter)
	}
	return []*Profile{}, nil
}

func (s *stubProfileRepo) IsBlockedEither(ctx context.Context, userID, otherID int64) (bool, error) {
	if s.isBlockedEither != nil {
		return s.isBlockedEither(ctx, userID, otherID)
	}
	return false, nil
}

func (s *stubProfileRepo) TouchLastOnline(ctx context.Context, userID int64) error {
	if s.touchLastOnline != nil {
		return s.touchLastOnline(ctx, userID)
	}
	return nil
}

func newTestService(repo Repository) Service {
	return NewService(repo, nil, NewPresence(nil, 0), 0)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("viewer never sees the email", func(t *testing.T) {
		repo := &stubProfileRepo{
			getProfileByUserID: func(ctx context.Context, userID int64) (*Profile, error) {
				return &Profile{UserID: userID, Email: "secret@example.com"}, nil
			},
		}
		svc := newTestService(repo)

		p, err := svc.GetProfile(ctx, 2, 1)
		require.NoError(t, err)
		assert.Empty(t, p.Email)
	})

	t.Run("own profile keeps the email", func(t *testing.T) {
		repo := &stubProfileRepo{
			getProfileByUserID: func(ctx context.Context, userID int64) (*Profile, error) {
				return &Profile{UserID: userID, Email: "me@example.com"}, nil
			},
		}
		svc := newTestService(repo)

		p, err := svc.GetProfile(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, "me@example.com", p.Email)
	})

	t.Run("blocked pair gets refused in either direction", func(t *testing.T) {
		repo := &stubProfileRepo{
			isBlockedEither: func(ctx context.Context, userID, otherID int64) (bool, error) {
				return true, nil
			},
			getProfileByUserID: func(ctx context.Context, userID int64) (*Profile, error) {
				t.Fatal("must not load a profile across a block")
				return nil, nil
			},
		}
		svc := newTestService(repo)

		_, err := svc.GetProfile(ctx, 2, 1)
		assert.ErrorIs(t, err, ErrUserBlocked)
	})
}

func TestUpdateProfileBirthdate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid date is parsed", func(t *testing.T) {
		var got *time.Time
		repo := &stubProfileRepo{
			updateProfile: func(ctx context.Context, userID int64, req *UpdateProfileRequest, birthdate *time.Time) (*Profile, error) {
				got = birthdate
				return &Profile{UserID: userID}, nil
			},
		}
		svc := newTestService(repo)

		date := "1995-04-20"
		_, err := svc.UpdateProfile(ctx, 1, &UpdateProfileRequest{Birthdate: &date})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1995, got.Year())
		assert.Equal(t, time.April, got.Month())
	})

	t.Run("bad date format is rejected", func(t *testing.T) {
		svc := newTestService(&stubProfileRepo{})

		date := "20/04/1995"
		_, err := svc.UpdateProfile(ctx, 1, &UpdateProfileRequest{Birthdate: &date})
		assert.Error(t, err)
	})
}

func TestUpdatePreferences(t *testing.T) {
	ctx := context.Background()

	t.Run("patch is merged over stored preferences and persisted", func(t *testing.T) {
		stored := Preferences{
			AgeRange:         AgeRange{Min: 20, Max: 30},
			MaxDistanceKM:    50,
			Genders:          []string{"female"},
			RelationshipGoal: GoalCasual,
		}
		var persisted Preferences
		repo := &stubProfileRepo{
			getPreferences: func(ctx context.Context, userID int64) (Preferences, error) {
				return stored, nil
			},
			updatePreferences: func(ctx context.Context, userID int64, prefs Preferences) error {
				persisted = prefs
				return nil
			},
		}
		svc := newTestService(repo)

		merged, err := svc.UpdatePreferences(ctx, 1, &PreferencesPatch{MaxDistanceKM: intPtr(10)})
		require.NoError(t, err)
		assert.Equal(t, 10, merged.MaxDistanceKM)
		assert.Equal(t, stored.AgeRange, merged.AgeRange)
		assert.Equal(t, merged, persisted)
	})

	t.Run("persist failure is surfaced", func(t *testing.T) {
		repo := &stubProfileRepo{
			updatePreferences: func(ctx context.Context, userID int64, prefs Preferences) error {
				return errors.New("db down")
			},
		}
		svc := newTestService(repo)

		_, err := svc.UpdatePreferences(ctx, 1, &PreferencesPatch{})
		assert.Error(t, err)
	})
}

func TestDiscoverProfiles(t *testing.T) {
	ctx := context.Background()

	t.Run("limit is clamped and emails are stripped", func(t *testing.T) {
		var gotFilter *DiscoverFilter
		repo := &stubProfileRepo{
			discover: func(ctx context.Context, userID int64, prefs Preferences, lat, lng *float64, filter *DiscoverFilter) ([]*Profile, error) {
				gotFilter = filter
				return []*Profile{
					{UserID: 2, Email: "a@example.com"},
					{UserID: 3, Email: "b@example.com"},
				}, nil
			},
		}
		svc := newTestService(repo)

		profiles, err := svc.DiscoverProfiles(ctx, 1, &DiscoverFilter{Limit: 5000, Offset: -1})
		require.NoError(t, err)
		assert.Equal(t, 100, gotFilter.Limit)
		assert.Equal(t, 0, gotFilter.Offset)
		for _, p := range profiles {
			assert.Empty(t, p.Email)
		}
	})

	t.Run("caller preferences drive the query", func(t *testing.T) {
		stored := Preferences{
			AgeRange:         AgeRange{Min: 25, Max: 35},
			MaxDistanceKM:    15,
			Genders:          []string{"male"},
			RelationshipGoal: GoalSerious,
		}
		var gotPrefs Preferences
		repo := &stubProfileRepo{
			getPreferences: func(ctx context.Context, userID int64) (Preferences, error) {
				return stored, nil
			},
			discover: func(ctx context.Context, userID int64, prefs Preferences, lat, lng *float64, filter *DiscoverFilter) ([]*Profile, error) {
				gotPrefs = prefs
				return []*Profile{}, nil
			},
		}
		svc := newTestService(repo)

		_, err := svc.DiscoverProfiles(ctx, 1, &DiscoverFilter{})
		require.NoError(t, err)
		assert.Equal(t, stored, gotPrefs)
	})
}
