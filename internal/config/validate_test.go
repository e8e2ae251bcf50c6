package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return DefaultConfig()
}

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate(defaults) error = %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
		errMsg string
	}{
		{
			name:   "unknown storage backend",
			mutate: func(cfg *Config) { cfg.Storage.Backend = "postgres" },
			errMsg: "storage.backend",
		},
		{
			name: "file backend without dir",
			mutate: func(cfg *Config) {
				cfg.Storage.Backend = "file"
				cfg.Storage.Dir = ""
			},
			errMsg: "storage.dir",
		},
		{
			name:   "unknown default source",
			mutate: func(cfg *Config) { cfg.Journey.DefaultSource = "telepathy" },
			errMsg: "journey.default_source",
		},
		{
			name:   "unknown publisher",
			mutate: func(cfg *Config) { cfg.Events.Publisher = "kafka" },
			errMsg: "events.publisher",
		},
		{
			name:   "zero retry attempts",
			mutate: func(cfg *Config) { cfg.Retry.MaxAttempts = 0 },
			errMsg: "retry.max_attempts",
		},
		{
			name: "max wait below initial wait",
			mutate: func(cfg *Config) {
				cfg.Retry.InitialWait = time.Second
				cfg.Retry.MaxWait = 100 * time.Millisecond
			},
			errMsg: "retry.max_wait",
		},
		{
			name:   "unknown output format",
			mutate: func(cfg *Config) { cfg.Output.Format = "xml" },
			errMsg: "output.format",
		},
		{
			name:   "unknown log level",
			mutate: func(cfg *Config) { cfg.Output.LogLevel = "trace" },
			errMsg: "output.log_level",
		},
		{
			name: "verbose and quiet",
			mutate: func(cfg *Config) {
				cfg.Output.Verbose = true
				cfg.Output.Quiet = true
			},
			errMsg: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidate_MemoryBackendIgnoresDir(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "memory"
	cfg.Storage.Dir = "/unused"

	// Dir with memory backend is a warning, not an error.
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestValidationError_Format(t *testing.T) {
	e := &ValidationError{}
	e.Addf("first problem")
	e.Addf("second %s", "problem")
	e.Warnf("a warning")

	if !e.HasErrors() || !e.HasWarnings() {
		t.Fatal("HasErrors()/HasWarnings() = false")
	}
	msg := e.Error()
	for _, want := range []string{"first problem", "second problem", "a warning"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() missing %q:\n%s", want, msg)
		}
	}
}
