// Package config loads the cmsinfo YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/remiblancher/cmsinfo/pkg/describe"
)

// Environment variables that override file values.
const (
	EnvHost     = "CMSINFO_HOST"
	EnvPort     = "CMSINFO_PORT"
	EnvTLSCert  = "CMSINFO_TLS_CERT"
	EnvTLSKey   = "CMSINFO_TLS_KEY"
	EnvMode     = "CMSINFO_MODE"
	EnvAuditLog = "CMSINFO_AUDIT_LOG"
)

// Config is the top-level configuration file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Interpret InterpretConfig `yaml:"interpret"`

	// AuditLog is the path of the hash-chained audit log. Empty disables auditing.
	AuditLog string `yaml:"audit_log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes bounds the size of a submitted CMS object.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// InterpretConfig holds the defaults applied when a request does not choose.
type InterpretConfig struct {
	Mode     string `yaml:"mode"`     // cms | cades
	Language string `yaml:"language"` // es | en
	Format   string `yaml:"format"`   // text | json | yaml | cbor
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8443,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
		Interpret: InterpretConfig{
			Mode:     "cms",
			Language: "es",
			Format:   "text",
		},
	}
}

// Load reads a YAML file on top of Default, applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from CMSINFO_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHost); ok {
		c.Server.Host = v
	}
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		c.Server.Port = port
	}
	if v, ok := lookup(EnvTLSCert); ok {
		c.Server.TLSCert = v
	}
	if v, ok := lookup(EnvTLSKey); ok {
		c.Server.TLSKey = v
	}
	if v, ok := lookup(EnvMode); ok {
		c.Interpret.Mode = v
	}
	if v, ok := lookup(EnvAuditLog); ok {
		c.AuditLog = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return fmt.Errorf("server.tls_cert and server.tls_key must be set together")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}

	if _, err := describe.ParseMode(c.Interpret.Mode); err != nil {
		return fmt.Errorf("interpret.mode: %w", err)
	}
	if _, err := describe.ParseLanguage(c.Interpret.Language); err != nil {
		return fmt.Errorf("interpret.language: %w", err)
	}
	if _, err := describe.ParseFormat(c.Interpret.Format); err != nil {
		return fmt.Errorf("interpret.format: %w", err)
	}
	return nil
}

// Mode returns the parsed interpretation mode.
func (c *Config) Mode() describe.Mode {
	m, _ := describe.ParseMode(c.Interpret.Mode)
	return m
}

// Language returns the parsed label language.
func (c *Config) Language() describe.Language {
	l, _ := describe.ParseLanguage(c.Interpret.Language)
	return l
}

// Format returns the parsed output format.
func (c *Config) Format() describe.Format {
	f, _ := describe.ParseFormat(c.Interpret.Format)
	return f
}
