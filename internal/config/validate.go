// Package config provides configuration management for StayFlow.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	sferrors "github.com/stayflow-tech/stayflow/internal/errors"
)

// ValidationError contains all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("Errors:\n  - %s", strings.Join(e.Errors, "\n  - ")))
	}

	if len(e.Warnings) > 0 {
		parts = append(parts, fmt.Sprintf("Warnings:\n  - %s", strings.Join(e.Warnings, "\n  - ")))
	}

	return fmt.Sprintf("configuration validation failed:\n%s", strings.Join(parts, "\n"))
}

// HasErrors returns true if there are validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (e *ValidationError) HasWarnings() bool {
	return len(e.Warnings) > 0
}

// Addf adds a formatted error to the validation error.
func (e *ValidationError) Addf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// Warnf adds a formatted warning to the validation error.
func (e *ValidationError) Warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// Validator validates configuration.
type Validator struct {
	errors *ValidationError
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{
		errors: &ValidationError{},
	}
}

// Validate validates the configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateStorage(cfg.Storage)
	v.validateJourney(cfg.Journey)
	v.validateEvents(cfg.Events)
	v.validateRetry(cfg.Retry)
	v.validateOutput(cfg.Output)

	// Print warnings to stderr even if there are no errors
	if v.errors.HasWarnings() {
		fmt.Fprintf(os.Stderr, "\nConfiguration Warnings:\n")
		for _, warning := range v.errors.Warnings {
			fmt.Fprintf(os.Stderr, "  - %s\n", warning)
		}
		fmt.Fprintf(os.Stderr, "\n")
	}

	if v.errors.HasErrors() {
		return sferrors.Validation("config.Validate", v.errors.Error())
	}

	return nil
}

// validateStorage validates storage configuration.
func (v *Validator) validateStorage(cfg StorageConfig) {
	validBackends := []string{"file", "memory"}
	if !slices.Contains(validBackends, cfg.Backend) {
		v.errors.Addf("storage.backend: must be one of %v, got %q", validBackends, cfg.Backend)
	}

	if cfg.Backend == "file" && cfg.Dir == "" {
		v.errors.Addf("storage.dir: required when backend is 'file'")
	}
	if cfg.Backend == "memory" && cfg.Dir != "" {
		v.errors.Warnf("storage.dir: ignored when backend is 'memory'")
	}
}

// validateJourney validates journey configuration.
func (v *Validator) validateJourney(cfg JourneyConfig) {
	validSources := []string{"user", "system", "staff", "mobile_app", "web_app", "api", "third_party"}
	if !slices.Contains(validSources, cfg.DefaultSource) {
		v.errors.Addf("journey.default_source: must be one of %v, got %q", validSources, cfg.DefaultSource)
	}
}

// validateEvents validates events configuration.
func (v *Validator) validateEvents(cfg EventsConfig) {
	validPublishers := []string{"memory", "noop"}
	if !slices.Contains(validPublishers, cfg.Publisher) {
		v.errors.Addf("events.publisher: must be one of %v, got %q", validPublishers, cfg.Publisher)
	}
}

// validateRetry validates retry configuration.
func (v *Validator) validateRetry(cfg RetryConfig) {
	if cfg.MaxAttempts < 1 {
		v.errors.Addf("retry.max_attempts: must be at least 1, got %d", cfg.MaxAttempts)
	}
	if cfg.MaxAttempts > 10 {
		v.errors.Warnf("retry.max_attempts: %d is high; conflicts usually resolve within a few attempts", cfg.MaxAttempts)
	}
	if cfg.InitialWait < 0 {
		v.errors.Addf("retry.initial_wait: must be non-negative, got %s", cfg.InitialWait)
	}
	if cfg.MaxWait > 0 && cfg.MaxWait < cfg.InitialWait {
		v.errors.Addf("retry.max_wait: must be at least initial_wait (%s), got %s", cfg.InitialWait, cfg.MaxWait)
	}
}

// validateOutput validates output configuration.
func (v *Validator) validateOutput(cfg OutputConfig) {
	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, cfg.Format) {
		v.errors.Addf("output.format: must be one of %v, got %q", validFormats, cfg.Format)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, cfg.LogLevel) {
		v.errors.Addf("output.log_level: must be one of %v, got %q", validLogLevels, cfg.LogLevel)
	}

	if cfg.Verbose && cfg.Quiet {
		v.errors.Addf("output: verbose and quiet are mutually exclusive")
	}
}

// Validate validates a configuration using the default validator.
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
