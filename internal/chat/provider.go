// internal/chat/provider.go
// Client for the hosted chat/video provider. Message and call transport is
// owned entirely by the provider; this service only provisions channels,
// tears them down, and mints client tokens.

package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrChannelNotFound is returned by DeleteChannel when the provider does not
// know the channel. Callers treat it as success: the channel is gone either way.
var ErrChannelNotFound = errors.New("chat channel not found")

// Provider defines the chat provider interface
type Provider interface {
	// EnsureChannel creates the channel if it does not exist yet and adds
	// the given members. Calling it for an existing channel is a no-op.
	EnsureChannel(ctx context.Context, channelID string, memberIDs []int64) error

	// DeleteChannel removes a channel and its history from the provider.
	DeleteChannel(ctx context.Context, channelID string) error

	// UserToken mints a client-side token the given user presents to the
	// provider's own SDK to connect.
	UserToken(userID int64) (string, error)
}

// HTTPProvider implements Provider against the provider's REST API
type HTTPProvider struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
}

// NewHTTPProvider creates a new HTTP chat provider client
func NewHTTPProvider(baseURL, apiKey, apiSecret string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client:    &http.Client{Timeout: timeout},
	}
}

type channelRequest struct {
	ChannelID string   `json:"channel_id"`
	Type      string   `json:"type"`
	Members   []string `json:"members"`
}

// EnsureChannel creates or fetches a messaging channel by id
func (p *HTTPProvider) EnsureChannel(ctx context.Context, channelID string, memberIDs []int64) error {
	members := make([]string, len(memberIDs))
	for i, id := range memberIDs {
		members[i] = strconv.FormatInt(id, 10)
	}

	body, err := json.Marshal(channelRequest{
		ChannelID: channelID,
		Type:      "messaging",
		Members:   members,
	})
	if err != nil {
		return fmt.Errorf("failed to encode channel request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/channels", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build channel request: %w", err)
	}

	resp, err := p.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 409 means the channel already exists, which is exactly what we want
	if resp.StatusCode >= 200 && resp.StatusCode < 300 || resp.StatusCode == http.StatusConflict {
		return nil
	}

	return fmt.Errorf("chat provider returned status %d creating channel %s", resp.StatusCode, channelID)
}

// DeleteChannel removes a channel from the provider
func (p *HTTPProvider) DeleteChannel(ctx context.Context, channelID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		p.baseURL+"/channels/"+channelID, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}

	resp, err := p.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrChannelNotFound
	default:
		return fmt.Errorf("chat provider returned status %d deleting channel %s", resp.StatusCode, channelID)
	}
}

// UserToken mints a client token for the given user
func (p *HTTPProvider) UserToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": strconv.FormatInt(userID, 10),
		"iat":     time.Now().Unix(),
	})

	signed, err := token.SignedString([]byte(p.apiSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign user token: %w", err)
	}

	return signed, nil
}

// do attaches server-side auth and executes the request
func (p *HTTPProvider) do(req *http.Request) (*http.Response, error) {
	serverToken, err := p.serverToken()
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+serverToken)
	req.Header.Set("X-Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat provider request failed: %w", err)
	}

	return resp, nil
}

// serverToken mints a short-lived server-to-server token
func (p *HTTPProvider) serverToken() (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"server": true,
		"iat":    now.Unix(),
		"exp":    now.Add(5 * time.Minute).Unix(),
	})

	signed, err := token.SignedString([]byte(p.apiSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign server token: %w", err)
	}

	return signed, nil
}
