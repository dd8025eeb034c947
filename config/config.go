package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"tvbridge/models"
)

const (
	DefaultPort            = 8080
	DefaultListenAddress   = "0.0.0.0"
	DefaultPreferredDevice = "emulator-5556" // Android TV emulator slot
	DefaultCommandTimeout  = 10 * time.Second
	DefaultProbeTimeout    = 5 * time.Second
	DefaultLogDir          = "log"
	DefaultHistorySize     = 200
)

// Config holds the bridge settings
type Config struct {
	ListenAddress   string               `json:"listenAddress"`
	Port            int                  `json:"port"`
	ADBPath         string               `json:"adbPath"` // tried before the built-in candidates
	PreferredDevice string               `json:"preferredDevice"`
	CommandTimeout  Duration             `json:"commandTimeout"`
	ProbeTimeout    Duration             `json:"probeTimeout"`
	LogDir          string               `json:"logDir"`
	HistorySize     int                  `json:"historySize"`
	Profile         models.DeviceProfile `json:"profile"`
}

// Duration accepts "10s" style strings in the JSON file
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ListenAddress:   DefaultListenAddress,
		Port:            DefaultPort,
		PreferredDevice: DefaultPreferredDevice,
		CommandTimeout:  Duration{DefaultCommandTimeout},
		ProbeTimeout:    Duration{DefaultProbeTimeout},
		LogDir:          DefaultLogDir,
		HistorySize:     DefaultHistorySize,
		Profile: models.DeviceProfile{
			Name:         "Android TV Emulator",
			Model:        "AOSP TV x86",
			Manufacturer: "Google",
			Version:      "Android TV",
		},
	}
}

// Load builds the configuration from defaults, an optional JSON file and
// TVBRIDGE_* environment variables, in that order.
// An empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.ListenAddress = getEnv("TVBRIDGE_LISTEN_ADDRESS", c.ListenAddress)
	c.ADBPath = getEnv("TVBRIDGE_ADB_PATH", c.ADBPath)
	c.PreferredDevice = getEnv("TVBRIDGE_PREFERRED_DEVICE", c.PreferredDevice)
	c.LogDir = getEnv("TVBRIDGE_LOG_DIR", c.LogDir)

	if v := os.Getenv("TVBRIDGE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TVBRIDGE_PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("TVBRIDGE_HISTORY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TVBRIDGE_HISTORY_SIZE %q: %w", v, err)
		}
		c.HistorySize = n
	}
	if v := os.Getenv("TVBRIDGE_COMMAND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TVBRIDGE_COMMAND_TIMEOUT %q: %w", v, err)
		}
		c.CommandTimeout = Duration{d}
	}
	if v := os.Getenv("TVBRIDGE_PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TVBRIDGE_PROBE_TIMEOUT %q: %w", v, err)
		}
		c.ProbeTimeout = Duration{d}
	}
	return nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.CommandTimeout.Duration <= 0 || c.ProbeTimeout.Duration <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.HistorySize < 0 {
		return fmt.Errorf("historySize must not be negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ListenAddress, c.Port)
}

// getEnv gets environment variable with fallback default
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
