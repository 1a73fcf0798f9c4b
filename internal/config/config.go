// Package config provides centralized configuration for SnackDeals.
// Values are layered: built-in defaults, then an optional YAML file, then
// SNACKDEALS_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Bluesky  BlueskyConfig  `mapstructure:"bluesky" yaml:"bluesky"`
	Sweep    SweepConfig    `mapstructure:"sweep" yaml:"sweep"`
	Throttle ThrottleConfig `mapstructure:"throttle" yaml:"throttle"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// StoreConfig contains database configuration for libsql/Turso.
type StoreConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver"`
	Path      string `mapstructure:"path" yaml:"path"`
	URL       string `mapstructure:"url" yaml:"url,omitempty"`
	AuthToken string `mapstructure:"auth_token" yaml:"auth_token,omitempty"`
}

// CatalogConfig contains product catalog API credentials and addressing.
// Credentials are opaque; they are only ever validated for presence.
type CatalogConfig struct {
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey   string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey   string `mapstructure:"secret_key" yaml:"secret_key"`
	PartnerTag  string `mapstructure:"partner_tag" yaml:"partner_tag"`
	Marketplace string `mapstructure:"marketplace" yaml:"marketplace"`
}

// BlueskyConfig contains AT Protocol posting credentials and cadence.
type BlueskyConfig struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Handle       string        `mapstructure:"handle" yaml:"handle"`
	AppPassword  string        `mapstructure:"app_password" yaml:"app_password"`
	PostInterval time.Duration `mapstructure:"post_interval" yaml:"post_interval"`
}

// SweepConfig tunes the keyword sweep. The keyword list and cooldowns are
// domain tuning, not structure, so they live here rather than in code.
type SweepConfig struct {
	Keywords        []string      `mapstructure:"keywords" yaml:"keywords"`
	ItemCount       int           `mapstructure:"item_count" yaml:"item_count"`
	MinPrice        string        `mapstructure:"min_price" yaml:"min_price"`
	MinDiscount     int           `mapstructure:"min_discount" yaml:"min_discount"`
	TopDeals        int           `mapstructure:"top_deals" yaml:"top_deals"`
	KeywordCooldown time.Duration `mapstructure:"keyword_cooldown" yaml:"keyword_cooldown"`
	ErrorCooldown   time.Duration `mapstructure:"error_cooldown" yaml:"error_cooldown"`
}

// ThrottleConfig tunes the shared request throttler.
type ThrottleConfig struct {
	MinInterval    time.Duration `mapstructure:"min_interval" yaml:"min_interval"`
	MaxRetries     int           `mapstructure:"max_retries" yaml:"max_retries"`
	BaseBackoff    time.Duration `mapstructure:"base_backoff" yaml:"base_backoff"`
	FloorIncrement time.Duration `mapstructure:"floor_increment" yaml:"floor_increment"`
}

// ServerConfig contains the status HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level controls the minimum log level: trace, debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`
}

// CredentialsError reports required credential keys that are unset.
// It is fatal at startup: commands must not proceed without credentials.
type CredentialsError struct {
	Missing []string
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// ValidateCatalog checks that the catalog API credentials are present.
func (c *Config) ValidateCatalog() error {
	var missing []string
	if strings.TrimSpace(c.Catalog.AccessKey) == "" {
		missing = append(missing, "catalog.access_key")
	}
	if strings.TrimSpace(c.Catalog.SecretKey) == "" {
		missing = append(missing, "catalog.secret_key")
	}
	if strings.TrimSpace(c.Catalog.PartnerTag) == "" {
		missing = append(missing, "catalog.partner_tag")
	}
	if len(missing) > 0 {
		return &CredentialsError{Missing: missing}
	}
	return nil
}

// ValidateBluesky checks that the posting credentials are present.
func (c *Config) ValidateBluesky() error {
	var missing []string
	if strings.TrimSpace(c.Bluesky.Handle) == "" {
		missing = append(missing, "bluesky.handle")
	}
	if strings.TrimSpace(c.Bluesky.AppPassword) == "" {
		missing = append(missing, "bluesky.app_password")
	}
	if len(missing) > 0 {
		return &CredentialsError{Missing: missing}
	}
	return nil
}
