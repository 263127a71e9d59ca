package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, "http://127.0.0.1/", config.Dashboard.BaseURL)
	assert.True(t, config.Browser.Headless)
	assert.Equal(t, 5*time.Second, config.Timeouts.Default)
	assert.Equal(t, 20*time.Second, config.Timeouts.ListingWait)
	assert.Equal(t, 500*time.Millisecond, config.Timeouts.PollInterval)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "amdriver.toml")
	content := `[dashboard]
username = "admin"
password = "secret"
base_url = "http://dashboard.example.com/"

[browser]
headless = false
window_width = 1280
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err, "Failed to load test configuration")

	assert.Equal(t, "admin", config.Dashboard.Username)
	assert.Equal(t, "http://dashboard.example.com/", config.Dashboard.BaseURL)
	assert.False(t, config.Browser.Headless)
	assert.Equal(t, 1280, config.Browser.WindowWidth)
	// Untouched sections keep their defaults.
	assert.Equal(t, 1080, config.Browser.WindowHeight)
	assert.Equal(t, 5*time.Second, config.Timeouts.Default)
}

func TestLoadFromFilesLaterOverridesEarlier(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "base.toml")
	second := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(first, []byte("[dashboard]\nusername = \"one\"\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("[dashboard]\nusername = \"two\"\n"), 0o644))

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, "two", config.Dashboard.Username)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AMDRIVER_DASHBOARD_URL", "http://env.example.com/")
	t.Setenv("AMDRIVER_DEFAULT_TIMEOUT", "9s")
	t.Setenv("AMDRIVER_POLL_INTERVAL", "250ms")
	t.Setenv("AMDRIVER_HEADLESS", "false")

	config, err := LoadFromFiles()
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com/", config.Dashboard.BaseURL)
	assert.Equal(t, 9*time.Second, config.Timeouts.Default)
	assert.Equal(t, 250*time.Millisecond, config.Timeouts.PollInterval)
	assert.False(t, config.Browser.Headless)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	config := NewDefaultConfig()
	config.Dashboard.Password = ""
	assert.Error(t, config.Validate(), "Missing credentials must fail validation")

	config = NewDefaultConfig()
	config.Dashboard.BaseURL = "not a url"
	assert.Error(t, config.Validate())

	config = NewDefaultConfig()
	config.Timeouts.PollInterval = 0
	assert.Error(t, config.Validate())
}
