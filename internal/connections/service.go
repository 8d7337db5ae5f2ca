// internal/connections/service.go

package connections

import (
	"context"
	"errors"
	"log"

	"github.com/emberapp/ember-backend/internal/chat"
)

var (
	ErrCannotLikeSelf  = errors.New("cannot like yourself")
	ErrCannotBlockSelf = errors.New("cannot block yourself")
	ErrUserBlocked     = errors.New("interaction not allowed with this user")
	ErrNotMatched      = errors.New("users are not matched")
)

// LikeResult reports the outcome of a like action.
type LikeResult struct {
	IsMatch   bool   `json:"is_match"`
	ChannelID string `json:"channel_id,omitempty"`
}

// Service handles connection lifecycle business logic
type Service interface {
	Like(ctx context.Context, actorID, targetID int64) (*LikeResult, error)
	Unmatch(ctx context.Context, actorID, otherID int64) error
	Block(ctx context.Context, actorID, targetID int64, reason *string) error
	Unblock(ctx context.Context, actorID, targetID int64) error
	GetState(ctx context.Context, actorID, otherID int64) (*PairState, error)
	GetMatches(ctx context.Context, userID int64, limit, offset int) ([]*MatchWithUser, error)
	GetBlocked(ctx context.Context, userID int64, limit, offset int) ([]*BlockWithUser, error)
	EnsureChannel(ctx context.Context, actorID, otherID int64) (string, error)
	ChannelToken(userID int64) (string, error)
}

type service struct {
	repo Repository
	chat chat.Provider
}

// NewService creates a new connections service
func NewService(repo Repository, chatProvider chat.Provider) Service {
	return &service{repo: repo, chat: chatProvider}
}

// Like records actor→target and promotes the pair to a match when the
// reverse like is already active. Re-liking is a no-op for the edge but
// still reports a match, covering a reverse like that arrived while the
// forward like sat inactive.
func (s *service) Like(ctx context.Context, actorID, targetID int64) (*LikeResult, error) {
	if actorID == targetID {
		return nil, ErrCannotLikeSelf
	}

	blocked, err := s.repo.IsBlockedEither(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrUserBlocked
	}

	if err := s.repo.UpsertLike(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	likesTotal.Inc()

	reciprocated, err := s.repo.HasActiveLike(ctx, targetID, actorID)
	if err != nil {
		return nil, err
	}
	if !reciprocated {
		return &LikeResult{IsMatch: false}, nil
	}

	// The unique pair constraint makes this safe under racing mutual likes:
	// both sides land on the same row.
	if err := s.repo.UpsertMatch(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	matchesTotal.Inc()

	return &LikeResult{
		IsMatch:   true,
		ChannelID: ChannelID(actorID, targetID),
	}, nil
}

// Unmatch ends an active match. Without one it is a no-op, not an error;
// the caller may be racing a concurrent block. On success it retires both
// like directions, stamps the actor's like as retracted and tears down the
// chat channel best-effort.
func (s *service) Unmatch(ctx context.Context, actorID, otherID int64) error {
	removed, err := s.repo.DeactivateMatch(ctx, actorID, otherID, actorID)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	unmatchesTotal.Inc()

	if err := s.repo.DeactivateLikes(ctx, actorID, otherID); err != nil {
		return err
	}
	if err := s.repo.RetireLike(ctx, actorID, otherID); err != nil {
		return err
	}

	s.teardownChannel(ctx, actorID, otherID)
	return nil
}

// Block upserts actor→target and unconditionally runs the unmatch cascade,
// whether or not a match existed. The relational state is authoritative;
// chat teardown failure never rolls it back.
func (s *service) Block(ctx context.Context, actorID, targetID int64, reason *string) error {
	if actorID == targetID {
		return ErrCannotBlockSelf
	}

	if err := s.repo.UpsertBlock(ctx, actorID, targetID, reason); err != nil {
		return err
	}
	blocksTotal.Inc()

	if _, err := s.repo.DeactivateMatch(ctx, actorID, targetID, actorID); err != nil {
		return err
	}
	if err := s.repo.DeactivateLikes(ctx, actorID, targetID); err != nil {
		return err
	}

	s.teardownChannel(ctx, actorID, targetID)
	return nil
}

// Unblock removes the block record only. Prior matches, likes and chat
// history stay gone; reconnecting goes through the normal like flow.
func (s *service) Unblock(ctx context.Context, actorID, targetID int64) error {
	return s.repo.DeleteBlock(ctx, actorID, targetID)
}

// GetState derives the relationship between actor and other. States are
// computed from the underlying rows, never stored.
func (s *service) GetState(ctx context.Context, actorID, otherID int64) (*PairState, error) {
	blocked, err := s.repo.IsBlocked(ctx, actorID, otherID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return &PairState{State: StateBlocked}, nil
	}

	blockedBy, err := s.repo.IsBlocked(ctx, otherID, actorID)
	if err != nil {
		return nil, err
	}
	if blockedBy {
		return &PairState{State: StateBlockedBy}, nil
	}

	matched, err := s.repo.HasActiveMatch(ctx, actorID, otherID)
	if err != nil {
		return nil, err
	}
	if matched {
		return &PairState{
			State:     StateMatched,
			ChannelID: ChannelID(actorID, otherID),
		}, nil
	}

	liked, err := s.repo.HasActiveLike(ctx, actorID, otherID)
	if err != nil {
		return nil, err
	}
	if liked {
		return &PairState{State: StateLiked}, nil
	}

	likedBy, err := s.repo.HasActiveLike(ctx, otherID, actorID)
	if err != nil {
		return nil, err
	}
	if likedBy {
		return &PairState{State: StateLikedBy}, nil
	}

	return &PairState{State: StateNone}, nil
}

func (s *service) GetMatches(ctx context.Context, userID int64, limit, offset int) ([]*MatchWithUser, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetUserMatches(ctx, userID, limit, offset)
}

func (s *service) GetBlocked(ctx context.Context, userID int64, limit, offset int) ([]*BlockWithUser, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetBlocks(ctx, userID, limit, offset)
}

// EnsureChannel lazily creates the chat channel for an active match and
// returns its id. Requires an active match.
func (s *service) EnsureChannel(ctx context.Context, actorID, otherID int64) (string, error) {
	matched, err := s.repo.HasActiveMatch(ctx, actorID, otherID)
	if err != nil {
		return "", err
	}
	if !matched {
		return "", ErrNotMatched
	}

	channelID := ChannelID(actorID, otherID)
	if err := s.chat.EnsureChannel(ctx, channelID, []int64{actorID, otherID}); err != nil {
		return "", err
	}
	return channelID, nil
}

func (s *service) ChannelToken(userID int64) (string, error) {
	return s.chat.UserToken(userID)
}

// teardownChannel deletes the pair's chat channel. Failures are logged and
// swallowed; a missing channel counts as success.
func (s *service) teardownChannel(ctx context.Context, userA, userB int64) {
	channelID := ChannelID(userA, userB)

	if err := s.chat.DeleteChannel(ctx, channelID); err != nil {
		if errors.Is(err, chat.ErrChannelNotFound) {
			return
		}
		channelTeardownFailures.Inc()
		log.Printf("WARN: failed to delete chat channel %s: %v", channelID, err)
	}
}
