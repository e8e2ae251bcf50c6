// Package config provides configuration management for StayFlow.
package config

import (
	"time"
)

// Config is the root configuration for StayFlow.
type Config struct {
	// Storage configures guest record persistence.
	Storage StorageConfig `mapstructure:"storage" json:"storage"`
	// Journey configures journey tracking behavior.
	Journey JourneyConfig `mapstructure:"journey" json:"journey"`
	// Events configures domain event publishing.
	Events EventsConfig `mapstructure:"events" json:"events"`
	// Retry configures optimistic-concurrency retries.
	Retry RetryConfig `mapstructure:"retry" json:"retry"`
	// Output configures output settings.
	Output OutputConfig `mapstructure:"output" json:"output"`
}

// StorageConfig configures guest record persistence.
type StorageConfig struct {
	// Backend is the storage backend (file, memory).
	Backend string `mapstructure:"backend" json:"backend"`
	// Dir is the directory for guest record files (file backend only).
	Dir string `mapstructure:"dir" json:"dir"`
}

// JourneyConfig configures journey tracking behavior.
type JourneyConfig struct {
	// DefaultSource is the source kind stamped on events tracked without
	// an explicit source (user, system, staff, mobile_app, web_app, api,
	// third_party).
	DefaultSource string `mapstructure:"default_source" json:"default_source"`
	// DefaultActor names the operator recorded on transitions when none
	// is given.
	DefaultActor string `mapstructure:"default_actor" json:"default_actor,omitempty"`
}

// EventsConfig configures domain event publishing.
type EventsConfig struct {
	// Publisher is the event publisher backend (memory, noop).
	Publisher string `mapstructure:"publisher" json:"publisher"`
}

// RetryConfig configures retries of mutating operations on version
// conflicts.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts (1 disables retries).
	MaxAttempts int `mapstructure:"max_attempts" json:"max_attempts"`
	// InitialWait is the delay before the first retry.
	InitialWait time.Duration `mapstructure:"initial_wait" json:"initial_wait"`
	// MaxWait caps the backoff delay.
	MaxWait time.Duration `mapstructure:"max_wait" json:"max_wait"`
}

// OutputConfig configures output settings.
type OutputConfig struct {
	// Format is the output format (text, json).
	Format string `mapstructure:"format" json:"format"`
	// Color enables colored output.
	Color bool `mapstructure:"color" json:"color"`
	// Verbose enables verbose output.
	Verbose bool `mapstructure:"verbose" json:"verbose"`
	// Quiet suppresses non-essential output.
	Quiet bool `mapstructure:"quiet" json:"quiet"`
	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	// LogFile is an optional file to write logs to.
	LogFile string `mapstructure:"log_file" json:"log_file,omitempty"`
}

// ConfigFileNames are the config file base names searched for, in order.
var ConfigFileNames = []string{".stayflow", "stayflow"}

// ConfigFileExtensions are the recognized config file extensions.
var ConfigFileExtensions = []string{"yaml", "yml", "json", "toml"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Dir:     ".stayflow/guests",
		},
		Journey: JourneyConfig{
			DefaultSource: "system",
		},
		Events: EventsConfig{
			Publisher: "memory",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 25 * time.Millisecond,
			MaxWait:     500 * time.Millisecond,
		},
		Output: OutputConfig{
			Format:   "text",
			Color:    true,
			LogLevel: "info",
		},
	}
}
