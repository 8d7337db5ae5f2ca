// internal/connections/repository.go

package connections

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository handles connection data access
type Repository interface {
	// Likes
	UpsertLike(ctx context.Context, likerID, likedID int64) error
	HasActiveLike(ctx context.Context, likerID, likedID int64) (bool, error)
	RetireLike(ctx context.Context, likerID, likedID int64) error
	DeactivateLikes(ctx context.Context, userA, userB int64) error

	// Matches
	UpsertMatch(ctx context.Context, userA, userB int64) error
	DeactivateMatch(ctx context.Context, userA, userB, actorID int64) (bool, error)
	HasActiveMatch(ctx context.Context, userA, userB int64) (bool, error)
	GetUserMatches(ctx context.Context, userID int64, limit, offset int) ([]*MatchWithUser, error)

	// Blocks
	UpsertBlock(ctx context.Context, blockerID, blockedID int64, reason *string) error
	DeleteBlock(ctx context.Context, blockerID, blockedID int64) error
	IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error)
	IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error)
	GetBlocks(ctx context.Context, blockerID int64, limit, offset int) ([]*BlockWithUser, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewRepository creates a new postgres-backed connections repository
func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// UpsertLike records likerID liking likedID. A previously retired like is
// reactivated and its unliked_at cleared.
func (r *postgresRepository) UpsertLike(ctx context.Context, likerID, likedID int64) error {
	query := `
		INSERT INTO likes (liker_id, liked_id, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		ON CONFLICT (liker_id, liked_id)
		DO UPDATE SET is_active = TRUE, unliked_at = NULL, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, likerID, likedID); err != nil {
		return fmt.Errorf("failed to upsert like: %w", err)
	}
	return nil
}

func (r *postgresRepository) HasActiveLike(ctx context.Context, likerID, likedID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM likes
			WHERE liker_id = $1 AND liked_id = $2 AND is_active = TRUE
		)`

	if err := r.db.GetContext(ctx, &exists, query, likerID, likedID); err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

// RetireLike writes the historical inactive record for likerID→likedID
// with unliked_at stamped, creating the row if it never existed.
func (r *postgresRepository) RetireLike(ctx context.Context, likerID, likedID int64) error {
	query := `
		INSERT INTO likes (liker_id, liked_id, is_active, unliked_at, created_at, updated_at)
		VALUES ($1, $2, FALSE, NOW(), NOW(), NOW())
		ON CONFLICT (liker_id, liked_id)
		DO UPDATE SET is_active = FALSE, unliked_at = NOW(), updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, likerID, likedID); err != nil {
		return fmt.Errorf("failed to retire like: %w", err)
	}
	return nil
}

// DeactivateLikes retires both directions of like between two users.
func (r *postgresRepository) DeactivateLikes(ctx context.Context, userA, userB int64) error {
	query := `
		UPDATE likes
		SET is_active = FALSE, updated_at = NOW()
		WHERE ((liker_id = $1 AND liked_id = $2) OR (liker_id = $2 AND liked_id = $1))
		  AND is_active = TRUE`

	if _, err := r.db.ExecContext(ctx, query, userA, userB); err != nil {
		return fmt.Errorf("failed to deactivate likes: %w", err)
	}
	return nil
}

// UpsertMatch creates or reactivates the match for a pair, stored with the
// smaller user ID first so either ordering hits the same row.
func (r *postgresRepository) UpsertMatch(ctx context.Context, userA, userB int64) error {
	u1, u2 := orderPair(userA, userB)

	query := `
		INSERT INTO matches (user1_id, user2_id, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		ON CONFLICT (user1_id, user2_id)
		DO UPDATE SET is_active = TRUE, unmatched_by = NULL, unmatched_at = NULL, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, u1, u2); err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}
	return nil
}

// DeactivateMatch retires an active match and records who ended it.
// Returns false when no active match existed.
func (r *postgresRepository) DeactivateMatch(ctx context.Context, userA, userB, actorID int64) (bool, error) {
	u1, u2 := orderPair(userA, userB)

	query := `
		UPDATE matches
		SET is_active = FALSE, unmatched_by = $3, unmatched_at = NOW(), updated_at = NOW()
		WHERE user1_id = $1 AND user2_id = $2 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, u1, u2, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *postgresRepository) HasActiveMatch(ctx context.Context, userA, userB int64) (bool, error) {
	u1, u2 := orderPair(userA, userB)

	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE user1_id = $1 AND user2_id = $2 AND is_active = TRUE
		)`

	if err := r.db.GetContext(ctx, &exists, query, u1, u2); err != nil {
		return false, fmt.Errorf("failed to check match: %w", err)
	}
	return exists, nil
}

// GetUserMatches lists the user's active matches newest first, each joined
// with the other user's summary.
func (r *postgresRepository) GetUserMatches(ctx context.Context, userID int64, limit, offset int) ([]*MatchWithUser, error) {
	query := `
		SELECT
			m.id, m.user1_id, m.user2_id, m.is_active,
			m.unmatched_by, m.unmatched_at, m.created_at, m.updated_at,
			u.id AS "user.id",
			u.username AS "user.username",
			COALESCE(NULLIF(u.display_name, ''), u.username) AS "user.display_name",
			u.profile_picture AS "user.profile_picture"
		FROM matches m
		JOIN users u ON u.id = CASE WHEN m.user1_id = $1 THEN m.user2_id ELSE m.user1_id END
		WHERE (m.user1_id = $1 OR m.user2_id = $1) AND m.is_active = TRUE
		ORDER BY m.created_at DESC
		LIMIT $2 OFFSET $3`

	var matches []*MatchWithUser
	if err := r.db.SelectContext(ctx, &matches, query, userID, limit, offset); err != nil {
		if err == sql.ErrNoRows {
			return []*MatchWithUser{}, nil
		}
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	for _, m := range matches {
		m.ChannelID = ChannelID(m.User1ID, m.User2ID)
	}
	return matches, nil
}

// UpsertBlock records a block, overwriting any prior reason and timestamp.
func (r *postgresRepository) UpsertBlock(ctx context.Context, blockerID, blockedID int64, reason *string) error {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id, reason, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (blocker_id, blocked_id)
		DO UPDATE SET reason = EXCLUDED.reason, created_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, blockerID, blockedID, reason); err != nil {
		return fmt.Errorf("failed to upsert block: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteBlock(ctx context.Context, blockerID, blockedID int64) error {
	query := `DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`

	if _, err := r.db.ExecContext(ctx, query, blockerID, blockedID); err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	return nil
}

func (r *postgresRepository) IsBlocked(ctx context.Context, blockerID, blockedID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE blocker_id = $1 AND blocked_id = $2
		)`

	if err := r.db.GetContext(ctx, &exists, query, blockerID, blockedID); err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) IsBlockedEither(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blocks
			WHERE (blocker_id = $1 AND blocked_id = $2)
			   OR (blocker_id = $2 AND blocked_id = $1)
		)`

	if err := r.db.GetContext(ctx, &exists, query, userA, userB); err != nil {
		return false, fmt.Errorf("failed to check blocks: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) GetBlocks(ctx context.Context, blockerID int64, limit, offset int) ([]*BlockWithUser, error) {
	query := `
		SELECT
			b.id, b.blocker_id, b.blocked_id, b.reason, b.created_at,
			u.id AS "user.id",
			u.username AS "user.username",
			COALESCE(NULLIF(u.display_name, ''), u.username) AS "user.display_name",
			u.profile_picture AS "user.profile_picture"
		FROM blocks b
		JOIN users u ON u.id = b.blocked_id
		WHERE b.blocker_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3`

	var blocks []*BlockWithUser
	if err := r.db.SelectContext(ctx, &blocks, query, blockerID, limit, offset); err != nil {
		if err == sql.ErrNoRows {
			return []*BlockWithUser{}, nil
		}
		return nil, fmt.Errorf("failed to get blocks: %w", err)
	}
	return blocks, nil
}
