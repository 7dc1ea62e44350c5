package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// ErrInvalid is returned for configuration values outside their allowed set.
var ErrInvalid = errors.New("invalid config value")

const (
	defaultNetwork          = "local"
	defaultMode             = "mainnet"
	defaultAlgorithm        = "fastest"
	defaultScanWindow       = 100
	defaultProgressInterval = 1000
	defaultRequestTimeout   = 30
	defaultLogLevel         = "info"
	defaultOutput           = "text"

	configFile = "config.json"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.txscan.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".txscan")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Validate checks every enum-like field against its allowed values.
func (c *Config) Validate() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{"network_mode", c.NetworkMode, NetworkModes},
		{"rpc_algorithm", c.RPCAlgorithm, RPCAlgorithms},
		{"output", c.Output, OutputFormats},
		{"log_level", c.LogLevel, LogLevels},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.allowed, ch.value) {
			return fmt.Errorf("%w: %s = %q (want one of %v)", ErrInvalid, ch.key, ch.value, ch.allowed)
		}
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalid)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%w: request_timeout must not be negative", ErrInvalid)
	}
	if c.ProgressInterval == 0 {
		return fmt.Errorf("%w: progress_interval must be positive", ErrInvalid)
	}
	return nil
}

// Set assigns a single setting by its JSON key and validates the result.
// The config is left unchanged when the new value is rejected.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "default_network":
		next.DefaultNetwork = value
	case "network_mode":
		next.NetworkMode = value
	case "rpc_algorithm":
		next.RPCAlgorithm = value
	case "log_level":
		next.LogLevel = value
	case "output":
		next.Output = value
	case "scan_window", "progress_interval":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalid, key)
		}
		if key == "scan_window" {
			next.ScanWindow = n
		} else {
			next.ProgressInterval = n
		}
	case "requests_per_second":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: requests_per_second must be a number", ErrInvalid)
		}
		next.RequestsPerSecond = f
	case "request_timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: request_timeout must be an integer", ErrInvalid)
		}
		next.RequestTimeout = n
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalid, key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// CallTimeout returns the per-call RPC timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork:   defaultNetwork,
		NetworkMode:      defaultMode,
		RPCAlgorithm:     defaultAlgorithm,
		CustomRPCs:       make(map[string][]string),
		ScanWindow:       defaultScanWindow,
		ProgressInterval: defaultProgressInterval,
		RequestTimeout:   defaultRequestTimeout,
		LogLevel:         defaultLogLevel,
		Output:           defaultOutput,
		configDir:        dir,
	}
}
