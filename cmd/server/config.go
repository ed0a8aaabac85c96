// Package main provides the ObraGuard server CLI.
package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Verbose  bool           `yaml:"-"` // set via CLI flag
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address           string  `yaml:"address"`             // HTTP listen address (default: :8080)
	DispatchWorkers   int     `yaml:"dispatch_workers"`    // Concurrent channel sends (default: 4)
	DispatchRateLimit float64 `yaml:"dispatch_rate_limit"` // Outbound sends per second, 0 disables
}

// DatabaseConfig contains storage settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite database path
}

// SMTPConfig contains mail delivery settings. Email notifications are
// disabled when no host is configured.
type SMTPConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"` // 465 for implicit TLS, 587 for STARTTLS
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"` // prefer OBRAGUARD_SMTP_PASSWORD
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// setDefaults sets default values for missing config fields.
func (c *Config) setDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.DispatchWorkers == 0 {
		c.Server.DispatchWorkers = 4
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/obraguard.db"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.DispatchWorkers < 1 {
		return fmt.Errorf("server.dispatch_workers must be at least 1")
	}
	if c.Server.DispatchRateLimit < 0 {
		return fmt.Errorf("server.dispatch_rate_limit must not be negative")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.SMTP.Host != "" {
		if c.SMTP.From == "" {
			return fmt.Errorf("smtp.from is required when SMTP is configured")
		}
		if len(c.SMTP.Recipients) == 0 {
			return fmt.Errorf("smtp.recipients is required when SMTP is configured")
		}
	}
	return nil
}
