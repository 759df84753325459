package config

import "time"

// SeedChannel describes one channel created at server start.
type SeedChannel struct {
	Name string `mapstructure:"name" yaml:"name"`
	Kind string `mapstructure:"kind" yaml:"kind"`
}

// Config holds server configuration values.
type Config struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	AdminAddr       string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	Channels        []SeedChannel `mapstructure:"channels" yaml:"channels"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:            "127.0.0.1:7878",
		AdminAddr:       "127.0.0.1:7880",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		Channels: []SeedChannel{
			{Name: "First", Kind: "broadcast"},
			{Name: "Second", Kind: "broadcast"},
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if len(other.Channels) != 0 {
		c.Channels = other.Channels
	}
}
