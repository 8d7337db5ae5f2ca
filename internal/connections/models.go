// internal/connections/models.go

package connections

import (
	"time"
)

// Like records a one-directional like from one user to another.
// A retired like keeps its row with is_active=false and unliked_at set.
type Like struct {
	ID        int64      `db:"id" json:"id"`
	LikerID   int64      `db:"liker_id" json:"liker_id"`
	LikedID   int64      `db:"liked_id" json:"liked_id"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	UnlikedAt *time.Time `db:"unliked_at" json:"unliked_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Match is a mutual connection between two users.
// The pair is stored ordered: User1ID is always the smaller ID.
type Match struct {
	ID          int64      `db:"id" json:"id"`
	User1ID     int64      `db:"user1_id" json:"user1_id"`
	User2ID     int64      `db:"user2_id" json:"user2_id"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	UnmatchedBy *int64     `db:"unmatched_by" json:"unmatched_by,omitempty"`
	UnmatchedAt *time.Time `db:"unmatched_at" json:"unmatched_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Block records that blocker no longer wants any contact with blocked.
type Block struct {
	ID        int64     `db:"id" json:"id"`
	BlockerID int64     `db:"blocker_id" json:"blocker_id"`
	BlockedID int64     `db:"blocked_id" json:"blocked_id"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserInfo is the counterpart summary attached to match and block listings.
type UserInfo struct {
	ID             int64   `db:"id" json:"id"`
	Username       string  `db:"username" json:"username"`
	DisplayName    string  `db:"display_name" json:"display_name"`
	ProfilePicture *string `db:"profile_picture" json:"profile_picture,omitempty"`
}

// MatchWithUser is a match joined with the other user's summary.
type MatchWithUser struct {
	Match
	User      UserInfo `json:"user"`
	ChannelID string   `json:"channel_id"`
}

// BlockWithUser is a block joined with the blocked user's summary.
type BlockWithUser struct {
	Block
	User UserInfo `json:"user"`
}

// Connection states between the acting user and another user.
const (
	StateBlocked   = "blocked"    // actor has blocked the other user
	StateBlockedBy = "blocked_by" // the other user has blocked the actor
	StateMatched   = "matched"
	StateLiked     = "liked"    // actor likes the other user, not reciprocated
	StateLikedBy   = "liked_by" // the other user likes the actor
	StateNone      = "none"
)

// PairState is the full relationship picture for an actor/other pair.
type PairState struct {
	State     string `json:"state"`
	ChannelID string `json:"channel_id,omitempty"`
}

// orderPair returns the pair in canonical storage order, smaller ID first.
func orderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
