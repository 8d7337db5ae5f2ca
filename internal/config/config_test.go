// internal/config/config_test.go

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "BASE_URL", "CHAT_PROVIDER", "CHAT_TIMEOUT", "PRESENCE_TTL", "MAX_PHOTO_SIZE_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "mock", cfg.ChatProvider)
	assert.Equal(t, 10*time.Second, cfg.ChatTimeout)
	assert.Equal(t, 5*time.Minute, cfg.PresenceTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.MaxPhotoSizeBytes)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHAT_PROVIDER", "http")
	t.Setenv("PRESENCE_TTL", "90s")
	t.Setenv("USE_S3", "true")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, "http", cfg.ChatProvider)
	assert.Equal(t, 90*time.Second, cfg.PresenceTTL)
	assert.True(t, cfg.UseS3)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:        "development",
			DatabaseURL:        "postgres://localhost/ember",
			JWTSecret:          "secret",
			ChatProvider:       "mock",
			LocalUploadDir:     "./uploads",
			MinAge:             18,
			MaxAge:             100,
			DefaultMaxDistance: 25,
		}
	}

	t.Run("valid development config passes", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("default jwt secret rejected in production", func(t *testing.T) {
		cfg := valid()
		cfg.Environment = "production"
		cfg.JWTSecret = "change-me-in-production"
		cfg.ChatProvider = "http"
		cfg.ChatAPIBase = "https://chat.example.com"
		cfg.ChatAPIKey = "key"
		cfg.ChatAPISecret = "secret"
		assert.Error(t, cfg.Validate())
	})

	t.Run("mock chat provider rejected in production", func(t *testing.T) {
		cfg := valid()
		cfg.Environment = "production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("http chat provider needs full configuration", func(t *testing.T) {
		cfg := valid()
		cfg.ChatProvider = "http"
		assert.Error(t, cfg.Validate())

		cfg.ChatAPIBase = "https://chat.example.com"
		cfg.ChatAPIKey = "key"
		cfg.ChatAPISecret = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown chat provider rejected", func(t *testing.T) {
		cfg := valid()
		cfg.ChatProvider = "carrier-pigeon"
		assert.Error(t, cfg.Validate())
	})

	t.Run("age range must be sane", func(t *testing.T) {
		cfg := valid()
		cfg.MinAge = 17
		assert.Error(t, cfg.Validate())

		cfg = valid()
		cfg.MinAge = 60
		cfg.MaxAge = 40
		assert.Error(t, cfg.Validate())
	})
}
