// internal/profile/repository.go

package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines the profile repository interface
type Repository interface {
	// Profile facade
	GetProfileByUserID(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest, birthdate *time.Time) (*Profile, error)
	UpdateProfilePicture(ctx context.Context, userID int64, url string) error

	// Preferences
	GetPreferences(ctx context.Context, userID int64) (Preferences, error)
	UpdatePreferences(ctx context.Context, userID int64, prefs Preferences) error

	// Discovery
	Discover(ctx context.Context, userID int64, prefs Preferences, lat, lng *float64, filter *DiscoverFilter) ([]*Profile, error)

	// Relationship checks shared with discovery filtering
	IsBlockedEither(ctx context.Context, userID, otherID int64) (bool, error)

	// Presence
	TouchLastOnline(ctx context.Context, userID int64) error
}

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const profileColumns = `
		u.id, u.id AS user_id, u.username, u.email, u.display_name,
		u.bio, u.birthdate, u.gender, u.profile_picture,
		u.latitude, u.longitude,
		p.height_cm, p.education, p.occupation,
		p.smoking, p.drinking, p.children,
		p.preferences,
		u.is_verified, u.verified_at, u.last_online_at,
		u.created_at, u.updated_at`

// GetProfileByUserID reads the two backing stores as one unified profile
func (r *postgresRepository) GetProfileByUserID(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	query := `
		SELECT ` + profileColumns + `
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE u.id = $1`

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpdateProfile writes only the fields present in the request and always
// stamps updated_at. Identity fields go to users, lifestyle fields to
// user_profiles.
func (r *postgresRepository) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest, birthdate *time.Time) (*Profile, error) {
	type fieldWrite struct {
		column string
		value  interface{}
	}

	var userFields []fieldWrite
	if req.DisplayName != nil {
		userFields = append(userFields, fieldWrite{"display_name", *req.DisplayName})
	}
	if req.Bio != nil {
		userFields = append(userFields, fieldWrite{"bio", *req.Bio})
	}
	if birthdate != nil {
		userFields = append(userFields, fieldWrite{"birthdate", *birthdate})
	}
	if req.Gender != nil {
		userFields = append(userFields, fieldWrite{"gender", *req.Gender})
	}
	if req.Latitude != nil {
		userFields = append(userFields, fieldWrite{"latitude", *req.Latitude})
	}
	if req.Longitude != nil {
		userFields = append(userFields, fieldWrite{"longitude", *req.Longitude})
	}

	var profileFields []fieldWrite
	if req.HeightCM != nil {
		profileFields = append(profileFields, fieldWrite{"height_cm", *req.HeightCM})
	}
	if req.Education != nil {
		profileFields = append(profileFields, fieldWrite{"education", *req.Education})
	}
	if req.Occupation != nil {
		profileFields = append(profileFields, fieldWrite{"occupation", *req.Occupation})
	}
	if req.Smoking != nil {
		profileFields = append(profileFields, fieldWrite{"smoking", *req.Smoking})
	}
	if req.Drinking != nil {
		profileFields = append(profileFields, fieldWrite{"drinking", *req.Drinking})
	}
	if req.Children != nil {
		profileFields = append(profileFields, fieldWrite{"children", *req.Children})
	}

	now := time.Now()

	if len(userFields) > 0 {
		var setClauses []string
		var args []interface{}
		argCount := 1

		for _, f := range userFields {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", f.column, argCount))
			args = append(args, f.value)
			argCount++
		}
		setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argCount))
		args = append(args, now)
		argCount++
		args = append(args, userID)

		query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`,
			strings.Join(setClauses, ", "), argCount)

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	if len(profileFields) > 0 {
		if err := r.ensureProfileRow(ctx, userID); err != nil {
			return nil, err
		}

		var setClauses []string
		var args []interface{}
		argCount := 1

		for _, f := range profileFields {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", f.column, argCount))
			args = append(args, f.value)
			argCount++
		}
		setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argCount))
		args = append(args, now)
		argCount++
		args = append(args, userID)

		query := fmt.Sprintf(`UPDATE user_profiles SET %s WHERE user_id = $%d`,
			strings.Join(setClauses, ", "), argCount)

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to update profile details: %w", err)
		}
	}

	if len(userFields) == 0 && len(profileFields) == 0 {
		// Nothing to write besides the timestamp
		query := `UPDATE users SET updated_at = $1 WHERE id = $2`
		if _, err := r.db.ExecContext(ctx, query, now, userID); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return r.GetProfileByUserID(ctx, userID)
}

// UpdateProfilePicture updates the profile picture URL
func (r *postgresRepository) UpdateProfilePicture(ctx context.Context, userID int64, url string) error {
	query := `UPDATE users SET profile_picture = $1, updated_at = $2 WHERE id = $3`

	var pictureValue interface{}
	if url != "" {
		pictureValue = url
	}

	_, err := r.db.ExecContext(ctx, query, pictureValue, time.Now(), userID)
	return err
}

// GetPreferences reads the stored preference blob, normalizing on the way out
func (r *postgresRepository) GetPreferences(ctx context.Context, userID int64) (Preferences, error) {
	var prefs Preferences
	query := `SELECT preferences FROM user_profiles WHERE user_id = $1`

	err := r.db.GetContext(ctx, &prefs, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return DefaultPreferences(), nil
		}
		return DefaultPreferences(), fmt.Errorf("failed to get preferences: %w", err)
	}

	return prefs, nil
}

// UpdatePreferences persists a full preference value
func (r *postgresRepository) UpdatePreferences(ctx context.Context, userID int64, prefs Preferences) error {
	query := `
		INSERT INTO user_profiles (user_id, preferences, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET preferences = $2, updated_at = $3`

	_, err := r.db.ExecContext(ctx, query, userID, prefs, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	return nil
}

// Discover returns candidate profiles matching the caller's preferences,
// excluding blocks in either direction and anyone already actively liked.
// A stray like slipping in during a concurrent cascade is acceptable; the
// next read filters it out again.
func (r *postgresRepository) Discover(ctx context.Context, userID int64, prefs Preferences, lat, lng *float64, filter *DiscoverFilter) ([]*Profile, error) {
	var conditions []string
	var args []interface{}
	argCount := 1

	addArg := func(v interface{}) int {
		args = append(args, v)
		n := argCount
		argCount++
		return n
	}

	selfArg := addArg(userID)
	conditions = append(conditions, fmt.Sprintf("u.id != $%d", selfArg))
	conditions = append(conditions, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM blocks b
			WHERE (b.blocker_id = $%d AND b.blocked_id = u.id)
			   OR (b.blocker_id = u.id AND b.blocked_id = $%d)
		)`, selfArg, selfArg))
	conditions = append(conditions, fmt.Sprintf(`NOT EXISTS (
			SELECT 1 FROM likes l
			WHERE l.liker_id = $%d AND l.liked_id = u.id AND l.is_active = TRUE
		)`, selfArg))

	minArg := addArg(prefs.AgeRange.Min)
	maxArg := addArg(prefs.AgeRange.Max)
	conditions = append(conditions, fmt.Sprintf(
		"u.birthdate IS NOT NULL AND EXTRACT(YEAR FROM AGE(u.birthdate)) BETWEEN $%d AND $%d",
		minArg, maxArg))

	if len(prefs.Genders) > 0 {
		gArg := addArg(pq.Array(prefs.Genders))
		conditions = append(conditions, fmt.Sprintf("u.gender = ANY($%d)", gArg))
	}

	if lat != nil && lng != nil && prefs.MaxDistanceKM > 0 {
		latArg := addArg(*lat)
		lngArg := addArg(*lng)
		distArg := addArg(prefs.MaxDistanceKM)
		// Haversine in km; candidates without coordinates are excluded
		conditions = append(conditions, fmt.Sprintf(`
			u.latitude IS NOT NULL AND u.longitude IS NOT NULL AND
			6371 * 2 * asin(sqrt(
				power(sin(radians(u.latitude - $%d) / 2), 2) +
				cos(radians($%d)) * cos(radians(u.latitude)) *
				power(sin(radians(u.longitude - $%d) / 2), 2)
			)) <= $%d`, latArg, latArg, lngArg, distArg))
	}

	limitArg := addArg(filter.Limit)
	offsetArg := addArg(filter.Offset)

	query := `
		SELECT ` + profileColumns + `
		FROM users u
		LEFT JOIN user_profiles p ON p.user_id = u.id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY u.last_online_at DESC NULLS LAST
		LIMIT $` + fmt.Sprint(limitArg) + ` OFFSET $` + fmt.Sprint(offsetArg)

	var profiles []*Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to discover profiles: %w", err)
	}

	return profiles, nil
}

// IsBlockedEither checks for a block in either direction between two users
func (r *postgresRepository) IsBlockedEither(ctx context.Context, userID, otherID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)`

	err := r.db.GetContext(ctx, &exists, query, userID, otherID)
	return exists, err
}

// TouchLastOnline stamps the durable last-online marker
func (r *postgresRepository) TouchLastOnline(ctx context.Context, userID int64) error {
	query := `UPDATE users SET last_online_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), userID)
	return err
}

// ensureProfileRow inserts an empty user_profiles row if one is missing
func (r *postgresRepository) ensureProfileRow(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO user_profiles (user_id, updated_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to ensure profile row: %w", err)
	}
	return nil
}
