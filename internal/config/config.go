// Package config loads and validates the admin client's own tunables:
// connection pool bounds, socket timeouts, and the bootstrap URLs used to
// discover a cluster descriptor when one isn't supplied directly.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PoolConfig bounds how the connection pool dials and sizes sockets.
type PoolConfig struct {
	MaxConnectionsPerNode int           `yaml:"max_connections_per_node"`
	ConnectTimeout        time.Duration `yaml:"connect_timeout"`
	SocketTimeout         time.Duration `yaml:"socket_timeout"`
	SocketBufferSize      int           `yaml:"socket_buffer_size"`
	SocketKeepAlive       bool          `yaml:"socket_keep_alive"`
}

// AsyncConfig controls the backoff schedule waitForCompletion uses while
// polling a background operation.
type AsyncConfig struct {
	InitialDelay  time.Duration `yaml:"initial_delay"`
	BackoffFactor float64       `yaml:"backoff_factor"`
	MaxDelay      time.Duration `yaml:"max_delay"`
}

// BootstrapConfig controls how the client resolves a cluster descriptor
// when constructed from a bootstrap URL rather than a pre-fetched one.
type BootstrapConfig struct {
	URLs    []string      `yaml:"urls"`
	Timeout time.Duration `yaml:"timeout"`
}

// Config is the complete admin client configuration.
type Config struct {
	Pool      PoolConfig      `yaml:"pool"`
	Async     AsyncConfig     `yaml:"async"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// rawPoolConfig mirrors PoolConfig for YAML decoding, except
// SocketKeepAlive is a pointer so LoadConfig can tell "absent from the
// file" apart from "explicitly set to false" before defaulting it.
type rawPoolConfig struct {
	MaxConnectionsPerNode int           `yaml:"max_connections_per_node"`
	ConnectTimeout        time.Duration `yaml:"connect_timeout"`
	SocketTimeout         time.Duration `yaml:"socket_timeout"`
	SocketBufferSize      int           `yaml:"socket_buffer_size"`
	SocketKeepAlive       *bool         `yaml:"socket_keep_alive"`
}

type rawConfig struct {
	Pool      rawPoolConfig   `yaml:"pool"`
	Async     AsyncConfig     `yaml:"async"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// Default returns a Config with the same defaults LoadConfig fills in for
// an empty or partial file, for callers constructing a Config in code.
func Default() Config {
	var cfg Config
	setDefaults(&cfg, false)
	return cfg
}

// LoadConfig reads and parses a YAML config file, filling in defaults for
// anything left unspecified and validating the result.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	cfg := Config{
		Pool: PoolConfig{
			MaxConnectionsPerNode: raw.Pool.MaxConnectionsPerNode,
			ConnectTimeout:        raw.Pool.ConnectTimeout,
			SocketTimeout:         raw.Pool.SocketTimeout,
			SocketBufferSize:      raw.Pool.SocketBufferSize,
		},
		Async:     raw.Async,
		Bootstrap: raw.Bootstrap,
	}
	keepAliveSet := raw.Pool.SocketKeepAlive != nil
	if keepAliveSet {
		cfg.Pool.SocketKeepAlive = *raw.Pool.SocketKeepAlive
	}

	setDefaults(&cfg, keepAliveSet)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults fills in every field left at its Go zero value. keepAliveSet
// distinguishes an explicit `socket_keep_alive: false` in a loaded file
// from the field being absent, since both parse to the same bool zero
// value; only the latter gets defaulted.
func setDefaults(cfg *Config, keepAliveSet bool) {
	if cfg.Pool.MaxConnectionsPerNode == 0 {
		cfg.Pool.MaxConnectionsPerNode = 4
	}
	if cfg.Pool.ConnectTimeout == 0 {
		cfg.Pool.ConnectTimeout = 3 * time.Second
	}
	if cfg.Pool.SocketTimeout == 0 {
		cfg.Pool.SocketTimeout = 6 * time.Second
	}
	if cfg.Pool.SocketBufferSize == 0 {
		cfg.Pool.SocketBufferSize = 64 * 1024
	}
	if !keepAliveSet {
		cfg.Pool.SocketKeepAlive = true
	}

	if cfg.Async.InitialDelay == 0 {
		cfg.Async.InitialDelay = 250 * time.Millisecond
	}
	if cfg.Async.BackoffFactor == 0 {
		cfg.Async.BackoffFactor = 4
	}
	if cfg.Async.MaxDelay == 0 {
		cfg.Async.MaxDelay = 60 * time.Second
	}

	if cfg.Bootstrap.Timeout == 0 {
		cfg.Bootstrap.Timeout = 5 * time.Second
	}
}

// Validate checks the configuration for values that would make the
// client misbehave rather than simply fail fast on first use.
func (c *Config) Validate() error {
	if c.Pool.MaxConnectionsPerNode < 1 {
		return fmt.Errorf("pool.max_connections_per_node must be at least 1")
	}
	if c.Pool.ConnectTimeout <= 0 {
		return fmt.Errorf("pool.connect_timeout must be positive")
	}
	if c.Pool.SocketTimeout <= 0 {
		return fmt.Errorf("pool.socket_timeout must be positive")
	}
	if c.Async.BackoffFactor < 1 {
		return fmt.Errorf("async.backoff_factor must be at least 1")
	}
	if c.Async.InitialDelay <= 0 {
		return fmt.Errorf("async.initial_delay must be positive")
	}
	if c.Async.MaxDelay < c.Async.InitialDelay {
		return fmt.Errorf("async.max_delay must be at least async.initial_delay")
	}
	return nil
}
