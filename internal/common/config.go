package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the harness configuration. One Config per test
// session; nothing here is persisted.
type Config struct {
	Dashboard DashboardConfig `toml:"dashboard"`
	Storage   StorageConfig   `toml:"storage"`
	Browser   BrowserConfig   `toml:"browser"`
	Timeouts  TimeoutConfig   `toml:"timeouts"`
	Logging   LoggingConfig   `toml:"logging"`
	Groups    GroupsConfig    `toml:"groups"`
}

// DashboardConfig holds credentials and the base URL for the
// preservation dashboard under test.
type DashboardConfig struct {
	Username string `toml:"username" validate:"required"`
	Password string `toml:"password" validate:"required"`
	BaseURL  string `toml:"base_url" validate:"required,url"`
	APIKey   string `toml:"api_key"`
}

// StorageConfig holds credentials for the cooperating storage service.
// Only the base URL and credentials are modeled; the dashboard itself
// drives all storage-service traffic.
type StorageConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	BaseURL  string `toml:"base_url" validate:"omitempty,url"`
	APIKey   string `toml:"api_key"`
}

// BrowserConfig selects and configures the automation engine.
type BrowserConfig struct {
	Headless     bool   `toml:"headless"`
	DisableGPU   bool   `toml:"disable_gpu"`
	NoSandbox    bool   `toml:"no_sandbox"`
	WindowWidth  int    `toml:"window_width"`
	WindowHeight int    `toml:"window_height"`
	UserAgent    string `toml:"user_agent"`
}

// TimeoutConfig holds the poll/wait tuning knobs. Default is the
// process-wide wait timeout; the larger values cover slow server-side
// operations such as directory listing and transfer removal.
type TimeoutConfig struct {
	Default      time.Duration `toml:"default"`
	ListingWait  time.Duration `toml:"listing_wait"`
	RemovalWait  time.Duration `toml:"removal_wait"`
	PollInterval time.Duration `toml:"poll_interval"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// GroupsConfig points at an optional YAML file overriding the built-in
// microservice-name to group-name lookup table.
type GroupsConfig struct {
	File string `toml:"file"`
}

// NewDefaultConfig returns a Config with the empirically chosen
// defaults. Timeouts mirror the dashboard's observed render timing.
func NewDefaultConfig() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			Username: "test",
			Password: "test",
			BaseURL:  "http://127.0.0.1/",
		},
		Storage: StorageConfig{
			Username: "test",
			Password: "test",
			BaseURL:  "http://127.0.0.1:8000/",
		},
		Browser: BrowserConfig{
			Headless:     true,
			DisableGPU:   true,
			WindowWidth:  1920,
			WindowHeight: 1080,
		},
		Timeouts: TimeoutConfig{
			Default:      5 * time.Second,
			ListingWait:  20 * time.Second,
			RemovalWait:  20 * time.Second,
			PollInterval: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override
// earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("AMDRIVER_DASHBOARD_USERNAME"); v != "" {
		config.Dashboard.Username = v
	}
	if v := os.Getenv("AMDRIVER_DASHBOARD_PASSWORD"); v != "" {
		config.Dashboard.Password = v
	}
	if v := os.Getenv("AMDRIVER_DASHBOARD_URL"); v != "" {
		config.Dashboard.BaseURL = v
	}
	if v := os.Getenv("AMDRIVER_DASHBOARD_API_KEY"); v != "" {
		config.Dashboard.APIKey = v
	}
	if v := os.Getenv("AMDRIVER_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("AMDRIVER_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}
	if v := os.Getenv("AMDRIVER_STORAGE_URL"); v != "" {
		config.Storage.BaseURL = v
	}
	if v := os.Getenv("AMDRIVER_STORAGE_API_KEY"); v != "" {
		config.Storage.APIKey = v
	}
	if v := os.Getenv("AMDRIVER_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Browser.Headless = b
		}
	}
	if v := os.Getenv("AMDRIVER_DEFAULT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Timeouts.Default = d
		}
	}
	if v := os.Getenv("AMDRIVER_LISTING_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Timeouts.ListingWait = d
		}
	}
	if v := os.Getenv("AMDRIVER_REMOVAL_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Timeouts.RemovalWait = d
		}
	}
	if v := os.Getenv("AMDRIVER_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Timeouts.PollInterval = d
		}
	}
	if v := os.Getenv("AMDRIVER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("AMDRIVER_GROUPS_FILE"); v != "" {
		config.Groups.File = v
	}
}

// Validate checks structural requirements (credentials present, URLs
// well-formed) before any browser work starts.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Timeouts.Default <= 0 {
		return fmt.Errorf("invalid configuration: timeouts.default must be positive, got %v", c.Timeouts.Default)
	}
	if c.Timeouts.PollInterval <= 0 {
		return fmt.Errorf("invalid configuration: timeouts.poll_interval must be positive, got %v", c.Timeouts.PollInterval)
	}
	return nil
}
