// internal/chat/provider_test.go

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(url string) *HTTPProvider {
	return NewHTTPProvider(url, "test-key", "test-secret", 5*time.Second)
}

func TestEnsureChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("creates channel with members", func(t *testing.T) {
		var got channelRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/channels", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
			assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))

			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		require.NoError(t, provider.EnsureChannel(ctx, "ch_abc", []int64{1, 2}))

		assert.Equal(t, "ch_abc", got.ChannelID)
		assert.Equal(t, "messaging", got.Type)
		assert.Equal(t, []string{"1", "2"}, got.Members)
	})

	t.Run("existing channel is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		assert.NoError(t, provider.EnsureChannel(ctx, "ch_abc", []int64{1, 2}))
	})

	t.Run("provider failure is surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		assert.Error(t, provider.EnsureChannel(ctx, "ch_abc", []int64{1, 2}))
	})
}

func TestDeleteChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes by id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/channels/ch_abc", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		assert.NoError(t, provider.DeleteChannel(ctx, "ch_abc"))
	})

	t.Run("missing channel maps to ErrChannelNotFound", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		provider := newTestProvider(server.URL)
		assert.ErrorIs(t, provider.DeleteChannel(ctx, "ch_abc"), ErrChannelNotFound)
	})
}

func TestUserToken(t *testing.T) {
	provider := newTestProvider("http://unused")

	signed, err := provider.UserToken(42)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "42", claims["user_id"])
}

func TestMockProvider(t *testing.T) {
	ctx := context.Background()
	provider := NewMockProvider()

	require.NoError(t, provider.EnsureChannel(ctx, "ch_abc", []int64{1, 2}))
	assert.True(t, provider.HasChannel("ch_abc"))

	require.NoError(t, provider.DeleteChannel(ctx, "ch_abc"))
	assert.False(t, provider.HasChannel("ch_abc"))
}
