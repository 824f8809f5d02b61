package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("KOFI_USER_KEY", "user-key-1234")
	t.Setenv("KOFI_PAGE_ID", "page42")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "user-key-1234", cfg.Kofi.UserKey)
	assert.Equal(t, "page42", cfg.Kofi.PageID)
	assert.Equal(t, "https://ko-fi.com/api/streamalerts/negotiation-token", cfg.Kofi.TokenURL)
	assert.Equal(t, 15*time.Second, cfg.Kofi.NegotiateTimeout)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Redis.LastAlertTTL)
	assert.Equal(t, []time.Duration{0, 2 * time.Second, 10 * time.Second, 30 * time.Second}, cfg.SignalR.ReconnectDelays)
	assert.Equal(t, 30*time.Second, cfg.SignalR.ServerTimeout)
}

func TestLoad_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		userKey string
		pageID  string
		wantErr string
	}{
		{name: "missing user key", pageID: "page42", wantErr: "KOFI_USER_KEY is required"},
		{name: "missing page id", userKey: "key", wantErr: "KOFI_PAGE_ID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KOFI_USER_KEY", tt.userKey)
			t.Setenv("KOFI_PAGE_ID", tt.pageID)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("KOFI_USER_KEY", "from-env")
	// Registers cleanup for the variable godotenv is about to set.
	t.Setenv("KOFI_PAGE_ID", "")
	require.NoError(t, os.Unsetenv("KOFI_PAGE_ID"))

	file := filepath.Join(t.TempDir(), ".env")
	content := "KOFI_USER_KEY=from-file\nKOFI_PAGE_ID=file-page\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Kofi.UserKey)
	assert.Equal(t, "file-page", cfg.Kofi.PageID)
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("SIGNALR_RECONNECT_DELAYS", "1s,-2s")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative")

	t.Setenv("SIGNALR_RECONNECT_DELAYS", "1s")
	t.Setenv("HTTP_PORT", "not-a-number")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing environment")
}

func TestSignalRConfig_Delays(t *testing.T) {
	cfg := SignalRConfig{Reconnect: true, ReconnectDelays: []time.Duration{time.Second}}
	assert.Equal(t, []time.Duration{time.Second}, cfg.Delays())

	cfg.Reconnect = false
	delays := cfg.Delays()
	assert.NotNil(t, delays)
	assert.Empty(t, delays)
}
