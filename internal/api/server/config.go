// Package server provides HTTP server configuration and lifecycle management.
package server

import (
	"fmt"
	"time"

	"github.com/remiblancher/cmsinfo/internal/config"
	"github.com/remiblancher/cmsinfo/pkg/describe"
)

// Config holds the server configuration.
type Config struct {
	// Host is the address to bind to (default: "").
	Host string

	// Port is the HTTP port.
	Port int

	// TLS configuration (optional)
	TLSCert string
	TLSKey  string

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64

	// Language is the default report language.
	Language describe.Language
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return FromConfig(config.Default())
}

// FromConfig builds a server Config from a loaded application config.
func FromConfig(c *config.Config) *Config {
	return &Config{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		TLSCert:         c.Server.TLSCert,
		TLSKey:          c.Server.TLSKey,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		IdleTimeout:     c.Server.IdleTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		MaxBodyBytes:    c.Server.MaxBodyBytes,
		Language:        c.Language(),
	}
}

// Address returns the full listen address.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TLSEnabled reports whether both a certificate and a key are configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
