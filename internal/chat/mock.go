// internal/chat/mock.go

package chat

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// MockProvider implements Provider in memory for development and tests
type MockProvider struct {
	mu       sync.Mutex
	channels map[string][]int64
}

// NewMockProvider creates a new mock chat provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		channels: make(map[string][]int64),
	}
}

// EnsureChannel records the channel in memory
func (p *MockProvider) EnsureChannel(ctx context.Context, channelID string, memberIDs []int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.channels[channelID]; !exists {
		p.channels[channelID] = memberIDs
		log.Printf("[MOCK CHAT] Created channel %s for members %v", channelID, memberIDs)
	}
	return nil
}

// DeleteChannel removes the channel from memory
func (p *MockProvider) DeleteChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.channels[channelID]; !exists {
		return ErrChannelNotFound
	}
	delete(p.channels, channelID)
	log.Printf("[MOCK CHAT] Deleted channel %s", channelID)
	return nil
}

// UserToken returns a predictable development token
func (p *MockProvider) UserToken(userID int64) (string, error) {
	return fmt.Sprintf("mock-chat-token-%d", userID), nil
}

// HasChannel reports whether a channel exists, for tests
func (p *MockProvider) HasChannel(channelID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, exists := p.channels[channelID]
	return exists
}
