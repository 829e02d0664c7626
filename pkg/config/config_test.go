package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boicualexandru/scraping-calendis/internal/domain/entities"
	apperrors "github.com/boicualexandru/scraping-calendis/pkg/errors"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SCRAPING_ENABLED", "TIME_INTERVAL_START", "TIME_INTERVAL_END", "CHECK_SPECIFIC_DAYS",
		"CHECK_DAYS_AHEAD", "CALENDIS_BASE_URL", "CALENDIS_LOGIN_URL", "SERVICE_ID", "LOCATION_ID",
		"NOTIFIER_CHANNEL", "CONFIG_STORE", "REDIS_HOST", "REDIS_PORT", "REDIS_KEY_PREFIX", "DB_ENABLED",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CLIENT_SESSION", "session-token")
	t.Setenv("CALENDIS_EMAIL", "player@example.com")
	t.Setenv("CALENDIS_PASSWORD", "secret")
	t.Setenv("TELEGRAM_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.ScrapingEnabled)
	assert.Equal(t, "8029", cfg.Calendis.ServiceID)
	assert.Equal(t, "1651", cfg.Calendis.LocationID)
	assert.Equal(t, "https://www.calendis.ro/api", cfg.Calendis.BaseURL)
	assert.Equal(t, "https://www.calendis.ro/api/login", cfg.Calendis.LoginURL)
	assert.Equal(t, entities.TimeWindow{Start: 16 * time.Hour, End: 20 * time.Hour}, cfg.Window)
	assert.Equal(t, ChannelTelegram, cfg.Notifier.Channel)
	assert.Equal(t, StoreRedis, cfg.ConfigStore.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
	assert.Equal(t, "calendis:", cfg.Redis.KeyPrefix)
	assert.False(t, cfg.Database.Enabled)
	assert.Empty(t, cfg.Dates.SpecificDays)
	assert.Empty(t, cfg.Dates.DaysAhead)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SCRAPING_ENABLED", "0")
	t.Setenv("TIME_INTERVAL_START", "07:30")
	t.Setenv("TIME_INTERVAL_END", "09:00")
	t.Setenv("CHECK_SPECIFIC_DAYS", " 2025-04-10,2025-04-12 ")
	t.Setenv("CHECK_DAYS_AHEAD", "3")
	t.Setenv("CALENDIS_BASE_URL", "http://localhost:9000/api/")
	t.Setenv("REDIS_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.ScrapingEnabled)
	assert.Equal(t, 7*time.Hour+30*time.Minute, cfg.Window.Start)
	assert.Equal(t, 9*time.Hour, cfg.Window.End)
	assert.Equal(t, "2025-04-10,2025-04-12", cfg.Dates.SpecificDays)
	assert.Equal(t, "3", cfg.Dates.DaysAhead)
	assert.Equal(t, "http://localhost:9000/api", cfg.Calendis.BaseURL)
	assert.Equal(t, "http://localhost:9000/api/login", cfg.Calendis.LoginURL)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		extra   map[string]string
		wantMsg string
	}{
		{name: "Missing session", unset: "CLIENT_SESSION", wantMsg: "CLIENT_SESSION"},
		{name: "Missing login email", unset: "CALENDIS_EMAIL", wantMsg: "CALENDIS_EMAIL"},
		{name: "Missing login password", unset: "CALENDIS_PASSWORD", wantMsg: "CALENDIS_PASSWORD"},
		{name: "Missing telegram token", unset: "TELEGRAM_TOKEN", wantMsg: "TELEGRAM_TOKEN"},
		{
			name:    "Missing whatsapp recipient",
			extra:   map[string]string{"NOTIFIER_CHANNEL": "whatsapp", "WHATSAPP_ACCESS_TOKEN": "t", "WHATSAPP_PHONE_NUMBER_ID": "1"},
			wantMsg: "WHATSAPP_RECIPIENT",
		},
		{
			name:    "Missing github token",
			extra:   map[string]string{"CONFIG_STORE": "github", "GITHUB_REPOSITORY": "owner/repo"},
			wantMsg: "GITHUB_TOKEN",
		},
		{name: "Unknown channel", extra: map[string]string{"NOTIFIER_CHANNEL": "pigeon"}, wantMsg: "NOTIFIER_CHANNEL"},
		{name: "Unknown store", extra: map[string]string{"CONFIG_STORE": "etcd"}, wantMsg: "CONFIG_STORE"},
		{name: "Invalid window", extra: map[string]string{"TIME_INTERVAL_END": "24:30"}, wantMsg: "window end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			if tt.unset != "" {
				t.Setenv(tt.unset, "")
			}
			for k, v := range tt.extra {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestWithStoredState(t *testing.T) {
	setRequiredEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	renewed := entities.Session("renewed-token")
	disabled := false
	overlaid := cfg.WithStoredState(&renewed, &disabled)

	assert.Equal(t, "renewed-token", overlaid.Calendis.SessionToken)
	assert.False(t, overlaid.ScrapingEnabled)
	assert.Equal(t, "session-token", cfg.Calendis.SessionToken)
	assert.True(t, cfg.ScrapingEnabled)

	unchanged := cfg.WithStoredState(nil, nil)
	assert.Equal(t, cfg.Calendis.SessionToken, unchanged.Calendis.SessionToken)
	assert.Equal(t, cfg.ScrapingEnabled, unchanged.ScrapingEnabled)
}
