package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("AUTH_ADMIN_EMAILS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "helpdesk", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.False(t, cfg.App.Hardened())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, 256, cfg.Activity.QueueSize)
	assert.Equal(t, "helpdesk:events", cfg.Notification.Channel)
	assert.Nil(t, cfg.Auth.AdminEmails)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("AUTH_ADMIN_EMAILS", " root@example.com, ,ops@example.com ")
	t.Setenv("ACTIVITY_QUEUE_SIZE", "not-a-number")
	t.Setenv("NOTIFY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, []string{"root@example.com", "ops@example.com"}, cfg.Auth.AdminEmails)
	assert.Equal(t, 256, cfg.Activity.QueueSize)
	assert.False(t, cfg.Notification.Enabled)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "s3cr3t")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.App.Hardened())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")

	_, err := Load()
	require.Error(t, err)
}

func TestRequestTimeout_Disabled(t *testing.T) {
	assert.Zero(t, AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
	assert.Equal(t, 5*time.Second, ActivityConfig{}.WriteTimeout())
}
