// Run configuration and its validation.
package types

import (
	"errors"
	"time"
)

// SourceConfig holds connection parameters for the legacy EAV store.
// TablePrefix is prepended to every legacy table name when set.
type SourceConfig struct {
	Driver      string `json:"driver" yaml:"driver"`
	DSN         string `json:"dsn" yaml:"dsn"`
	TablePrefix string `json:"table_prefix" yaml:"table_prefix"`
}

// TargetConfig holds connection parameters for the target catalog API.
type TargetConfig struct {
	BaseURL  string        `json:"base_url" yaml:"base_url"`
	Token    string        `json:"token" yaml:"token"`
	PageSize int           `json:"page_size" yaml:"page_size"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// Config holds everything a migration run needs: source and target
// connections, the preferred store view for attribute resolution, and the
// optional media URL prefix. Callers validate once before a run starts;
// components treat the config as already validated.
type Config struct {
	Source       SourceConfig `json:"source" yaml:"source"`
	Target       TargetConfig `json:"target" yaml:"target"`
	StoreID      int64        `json:"store_id" yaml:"store_id"`
	MediaBaseURL string       `json:"media_base_url" yaml:"media_base_url"`
}

// Supported source drivers.
const (
	DriverSQLite = "sqlite"
)

// Defaults applied by Normalize.
const (
	DefaultPageSize = 50
	DefaultTimeout  = 30 * time.Second
)

// Config validation errors.
var (
	ErrSourceDriverEmpty   = errors.New("source driver must not be empty")
	ErrSourceDriverUnknown = errors.New("unknown source driver")
	ErrSourceDSNEmpty      = errors.New("source DSN must not be empty")
	ErrTargetURLEmpty      = errors.New("target base URL must not be empty")
	ErrPageSizeInvalid     = errors.New("target page size must be positive")
	ErrTimeoutInvalid      = errors.New("target timeout must be positive")
)

// knownDrivers lists the source drivers that Validate accepts.
var knownDrivers = map[string]bool{
	DriverSQLite: true,
}

// Normalize fills zero-valued optional fields with their defaults and
// returns the result. The receiver is not modified.
func (c Config) Normalize() Config {
	if c.Source.Driver == "" {
		c.Source.Driver = DriverSQLite
	}
	if c.Target.PageSize == 0 {
		c.Target.PageSize = DefaultPageSize
	}
	if c.Target.Timeout == 0 {
		c.Target.Timeout = DefaultTimeout
	}
	return c
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Source.Driver == "" {
		return ErrSourceDriverEmpty
	}
	if !knownDrivers[c.Source.Driver] {
		return ErrSourceDriverUnknown
	}
	if c.Source.DSN == "" {
		return ErrSourceDSNEmpty
	}
	if c.Target.BaseURL == "" {
		return ErrTargetURLEmpty
	}
	if c.Target.PageSize <= 0 {
		return ErrPageSizeInvalid
	}
	if c.Target.Timeout <= 0 {
		return ErrTimeoutInvalid
	}
	return nil
}
