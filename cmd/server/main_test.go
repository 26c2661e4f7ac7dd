package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "secret",
		TokenTTL:          time.Hour,
		StorageType:       config.StorageLocal,
		AuthRatePerMinute: 1,
		MongoURI:          "mongodb://localhost:27017",
		MongoDB:           "socialfeed_test",
	}
}

func TestRun_InvalidConfigReturnsError(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""

	err := run(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestRun_MongoFailureReturnsError(t *testing.T) {
	cfg := validConfig()
	cfg.MongoURI = "notmongo://localhost"

	err := run(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo connect")
}
