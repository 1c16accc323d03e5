// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file when no --config
// flag is given.
const EnvironmentVariable = "GRIDCAST_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for a designer's own machine.
	Development Environment = "development"
	// Production is for an installed wall.
	Production Environment = "production"
)

// Config is the master configuration for Gridcast.
type Config struct {
	// Environment selects which override section applies.
	Environment Environment `yaml:"environment"`

	Bridge      BridgeConfig      `yaml:"bridge"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Scratch     ScratchConfig     `yaml:"scratch"`
	IPC         IPCConfig         `yaml:"ipc"`
	Display     DisplayConfig     `yaml:"display"`
	Presets     PresetsConfig     `yaml:"presets"`
	Lock        LockConfig        `yaml:"lock"`
	Relay       RelayConfig       `yaml:"relay"`
	Wall        WallConfig        `yaml:"wall"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Bridge      *BridgeConfig      `yaml:"bridge,omitempty"`
	Calibration *CalibrationConfig `yaml:"calibration,omitempty"`
	Scratch     *ScratchConfig     `yaml:"scratch,omitempty"`
	IPC         *IPCConfig         `yaml:"ipc,omitempty"`
	Display     *DisplayConfig     `yaml:"display,omitempty"`
}

// BridgeConfig configures the daemon's WebSocket bridge.
type BridgeConfig struct {
	// ListenAddress is the TCP address to bind.
	// Default: 127.0.0.1:8080
	ListenAddress string `yaml:"listen_address"`

	// MaxMessageBytes caps one inbound WebSocket message. Exported
	// frames arrive whole, so this bounds the largest PNG.
	// Default: 64 MiB
	MaxMessageBytes int `yaml:"max_message_bytes"`
}

// CalibrationConfig configures the calibration store.
type CalibrationConfig struct {
	// BroadcastDelay is the coalescing window for screen-info broadcasts.
	// Default: 100ms
	BroadcastDelay time.Duration `yaml:"broadcast_delay"`
}

// ScratchConfig configures where received frames are written.
type ScratchConfig struct {
	// Directory holds one <name>.png per received frame.
	// Default: <os.TempDir()>/figma-frames
	Directory string `yaml:"directory"`

	// Retention prunes frames older than this at daemon start-up.
	// Zero keeps everything.
	Retention time.Duration `yaml:"retention"`
}

// IPCConfig configures the daemon-renderer channel.
type IPCConfig struct {
	// SocketPath is the Unix socket the daemon listens on.
	// Default: ${XDG_RUNTIME_DIR:-${TMPDIR}}/gridcast/renderer.sock
	SocketPath string `yaml:"socket_path"`
}

// DisplayConfig describes the screen the renderer runs on.
type DisplayConfig struct {
	// ScaleFactor is the display's device pixel ratio. The renderer's
	// DPI query answers ScaleFactor × 96.
	// Default: 1
	ScaleFactor float64 `yaml:"scale_factor"`
}

// PresetsConfig locates the monitor preset catalogue.
type PresetsConfig struct {
	// File is a JSONC catalogue. Empty means the built-in catalogue.
	File string `yaml:"file"`
}

// LockConfig configures the single-instance lock.
type LockConfig struct {
	// Path is the lock file.
	// Default: ${XDG_RUNTIME_DIR:-${TMPDIR}}/gridcast/daemon.lock
	Path string `yaml:"path"`
}

// RelayConfig configures the UI host's connection to the bridge.
type RelayConfig struct {
	// URL is the bridge's WebSocket endpoint.
	// Default: ws://127.0.0.1:8080/
	URL string `yaml:"url"`

	// Origin is sent in the WebSocket handshake.
	// Default: http://localhost/
	Origin string `yaml:"origin"`

	// MinBackoff and MaxBackoff bound the reconnect delay.
	// Default: 250ms and 5s
	MinBackoff time.Duration `yaml:"min_backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// WallConfig describes the physical wall the console renders.
type WallConfig struct {
	// Preset names a monitor in the preset catalogue. When set it
	// supplies MonitorWidth and MonitorHeight.
	Preset string `yaml:"preset"`

	// MonitorWidth and MonitorHeight are the physical surface size in
	// inches.
	MonitorWidth  float64 `yaml:"monitor_width"`
	MonitorHeight float64 `yaml:"monitor_height"`
}

// Default returns the default configuration.
func Default() *Config {
	runtimeDirectory := filepath.Join(runtimeRoot(), "gridcast")

	return &Config{
		Environment: Development,
		Bridge: BridgeConfig{
			ListenAddress:   "127.0.0.1:8080",
			MaxMessageBytes: 64 << 20,
		},
		Calibration: CalibrationConfig{
			BroadcastDelay: 100 * time.Millisecond,
		},
		Scratch: ScratchConfig{
			Directory: filepath.Join(os.TempDir(), "figma-frames"),
		},
		IPC: IPCConfig{
			SocketPath: filepath.Join(runtimeDirectory, "renderer.sock"),
		},
		Display: DisplayConfig{
			ScaleFactor: 1,
		},
		Lock: LockConfig{
			Path: filepath.Join(runtimeDirectory, "daemon.lock"),
		},
		Relay: RelayConfig{
			URL:        "ws://127.0.0.1:8080/",
			Origin:     "http://localhost/",
			MinBackoff: 250 * time.Millisecond,
			MaxBackoff: 5 * time.Second,
		},
	}
}

func runtimeRoot() string {
	if directory := os.Getenv("XDG_RUNTIME_DIR"); directory != "" {
		return directory
	}
	return os.TempDir()
}

// Load loads configuration from the GRIDCAST_CONFIG environment
// variable. It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your gridcast.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// Resolve returns the configuration the binaries run with: flagPath
// when non-empty, else GRIDCAST_CONFIG when set, else Default(). The
// result is validated.
func Resolve(flagPath string) (*Config, error) {
	var cfg *Config
	var err error
	switch {
	case flagPath != "":
		cfg, err = LoadFile(flagPath)
	case os.Getenv(EnvironmentVariable) != "":
		cfg, err = Load()
	default:
		cfg = Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a specific file path over the
// defaults, applies the environment's override section, and expands
// variables in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Bridge != nil {
		if overrides.Bridge.ListenAddress != "" {
			c.Bridge.ListenAddress = overrides.Bridge.ListenAddress
		}
		if overrides.Bridge.MaxMessageBytes != 0 {
			c.Bridge.MaxMessageBytes = overrides.Bridge.MaxMessageBytes
		}
	}

	if overrides.Calibration != nil && overrides.Calibration.BroadcastDelay != 0 {
		c.Calibration.BroadcastDelay = overrides.Calibration.BroadcastDelay
	}

	if overrides.Scratch != nil {
		if overrides.Scratch.Directory != "" {
			c.Scratch.Directory = overrides.Scratch.Directory
		}
		if overrides.Scratch.Retention != 0 {
			c.Scratch.Retention = overrides.Scratch.Retention
		}
	}

	if overrides.IPC != nil && overrides.IPC.SocketPath != "" {
		c.IPC.SocketPath = overrides.IPC.SocketPath
	}

	if overrides.Display != nil && overrides.Display.ScaleFactor != 0 {
		c.Display.ScaleFactor = overrides.Display.ScaleFactor
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":            os.Getenv("HOME"),
		"TMPDIR":          os.TempDir(),
		"XDG_RUNTIME_DIR": runtimeRoot(),
	}

	c.Scratch.Directory = expandVars(c.Scratch.Directory, vars)
	c.IPC.SocketPath = expandVars(c.IPC.SocketPath, vars)
	c.Lock.Path = expandVars(c.Lock.Path, vars)
	c.Presets.File = expandVars(c.Presets.File, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, consulting
// vars before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Bridge.ListenAddress == "" {
		errs = append(errs, errors.New("bridge.listen_address is required"))
	} else if _, _, err := net.SplitHostPort(c.Bridge.ListenAddress); err != nil {
		errs = append(errs, fmt.Errorf("bridge.listen_address: %w", err))
	}
	if c.Bridge.MaxMessageBytes <= 0 {
		errs = append(errs, errors.New("bridge.max_message_bytes must be positive"))
	}

	if c.Calibration.BroadcastDelay <= 0 {
		errs = append(errs, errors.New("calibration.broadcast_delay must be positive"))
	}

	if c.Scratch.Directory == "" {
		errs = append(errs, errors.New("scratch.directory is required"))
	}
	if c.Scratch.Retention < 0 {
		errs = append(errs, errors.New("scratch.retention must not be negative"))
	}

	if c.IPC.SocketPath == "" {
		errs = append(errs, errors.New("ipc.socket_path is required"))
	}
	if c.Lock.Path == "" {
		errs = append(errs, errors.New("lock.path is required"))
	}

	if c.Display.ScaleFactor <= 0 {
		errs = append(errs, errors.New("display.scale_factor must be positive"))
	}

	if relayURL, err := url.Parse(c.Relay.URL); err != nil {
		errs = append(errs, fmt.Errorf("relay.url: %w", err))
	} else if relayURL.Scheme != "ws" && relayURL.Scheme != "wss" {
		errs = append(errs, fmt.Errorf("relay.url must use ws or wss, got %q", c.Relay.URL))
	}
	if c.Relay.MinBackoff <= 0 || c.Relay.MaxBackoff < c.Relay.MinBackoff {
		errs = append(errs, errors.New("relay backoff must satisfy 0 < min_backoff <= max_backoff"))
	}

	if c.Wall.MonitorWidth < 0 || c.Wall.MonitorHeight < 0 {
		errs = append(errs, errors.New("wall monitor dimensions must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// EnsureRuntimeDirectories creates the parent directories of the IPC
// socket and lock file, and the scratch directory.
func (c *Config) EnsureRuntimeDirectories() error {
	directories := []string{
		filepath.Dir(c.IPC.SocketPath),
		filepath.Dir(c.Lock.Path),
		c.Scratch.Directory,
	}
	for _, directory := range directories {
		if err := os.MkdirAll(directory, 0o700); err != nil {
			return fmt.Errorf("config: creating %s: %w", directory, err)
		}
	}
	return nil
}
