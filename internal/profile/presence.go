// internal/profile/presence.go
// Online presence backed by Redis with a TTL. Presence is advisory only:
// if Redis is absent or unavailable, everyone reads as offline.

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Presence tracks which users are currently online
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresence creates a presence tracker. A nil client disables presence.
func NewPresence(client *redis.Client, ttl time.Duration) *Presence {
	return &Presence{client: client, ttl: ttl}
}

// Touch marks the user online for the configured TTL
func (p *Presence) Touch(ctx context.Context, userID int64) error {
	if p.client == nil {
		return nil
	}
	return p.client.Set(ctx, presenceKey(userID), time.Now().Unix(), p.ttl).Err()
}

// IsOnline reports whether the user was seen within the TTL
func (p *Presence) IsOnline(ctx context.Context, userID int64) bool {
	if p.client == nil {
		return false
	}
	exists, err := p.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

func presenceKey(userID int64) string {
	return fmt.Sprintf("presence:user:%d", userID)
}
