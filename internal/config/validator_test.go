package config

import (
	"strings"
	"testing"
)

// hasFieldError reports whether errs contains an error for the given field path.
func hasFieldError(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateWorker(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero workers", func(c *Config) { c.Worker.Count = 0 }, "worker.count"},
		{"too many workers", func(c *Config) { c.Worker.Count = 100 }, "worker.count"},
		{"poll interval too small", func(c *Config) { c.Worker.PollIntervalMs = 5 }, "worker.poll_interval_ms"},
		{"poll interval too large", func(c *Config) { c.Worker.PollIntervalMs = 60000 }, "worker.poll_interval_ms"},
		{"zero generation timeout", func(c *Config) { c.Worker.GenerationTimeoutSeconds = 0 }, "worker.generation_timeout_seconds"},
		{"generation timeout too large", func(c *Config) { c.Worker.GenerationTimeoutSeconds = 3600 }, "worker.generation_timeout_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if errs := cfg.Validate(); !hasFieldError(errs, tt.field) {
				t.Errorf("expected error for %s, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidateQueue(t *testing.T) {
	t.Run("zero visibility timeout", func(t *testing.T) {
		cfg := Default()
		cfg.Queue.VisibilityTimeoutSeconds = 0
		if errs := cfg.Validate(); !hasFieldError(errs, "queue.visibility_timeout_seconds") {
			t.Errorf("expected error, got %v", errs)
		}
	})

	t.Run("visibility below generation timeout", func(t *testing.T) {
		cfg := Default()
		cfg.Worker.GenerationTimeoutSeconds = 120
		cfg.Queue.VisibilityTimeoutSeconds = 90
		errs := cfg.Validate()
		if !hasFieldError(errs, "queue.visibility_timeout_seconds") {
			t.Fatalf("expected error, got %v", errs)
		}
		// The message names the conflicting setting.
		for _, e := range errs {
			if e.Field == "queue.visibility_timeout_seconds" &&
				!strings.Contains(e.Message, "generation_timeout_seconds") {
				t.Errorf("message = %q", e.Message)
			}
		}
	})

	t.Run("visibility equal to generation timeout is allowed", func(t *testing.T) {
		cfg := Default()
		cfg.Worker.GenerationTimeoutSeconds = 90
		cfg.Queue.VisibilityTimeoutSeconds = 90
		if errs := cfg.Validate(); hasFieldError(errs, "queue.visibility_timeout_seconds") {
			t.Errorf("unexpected error: %v", errs)
		}
	})

	t.Run("reap interval bounds", func(t *testing.T) {
		cfg := Default()
		cfg.Queue.ReapIntervalSeconds = 0
		if errs := cfg.Validate(); !hasFieldError(errs, "queue.reap_interval_seconds") {
			t.Errorf("expected error, got %v", errs)
		}

		cfg = Default()
		cfg.Queue.ReapIntervalSeconds = 600
		if errs := cfg.Validate(); !hasFieldError(errs, "queue.reap_interval_seconds") {
			t.Errorf("expected error, got %v", errs)
		}
	})
}

func TestValidateLogging(t *testing.T) {
	t.Run("unknown level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "verbose"
		if errs := cfg.Validate(); !hasFieldError(errs, "logging.level") {
			t.Errorf("expected error, got %v", errs)
		}
	})

	t.Run("level is case-insensitive", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "DEBUG"
		if errs := cfg.Validate(); hasFieldError(errs, "logging.level") {
			t.Errorf("unexpected error: %v", errs)
		}
	})

	t.Run("empty level is allowed", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = ""
		if errs := cfg.Validate(); hasFieldError(errs, "logging.level") {
			t.Errorf("unexpected error: %v", errs)
		}
	})

	t.Run("size and backup bounds", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.MaxSizeMB = 0
		if errs := cfg.Validate(); !hasFieldError(errs, "logging.max_size_mb") {
			t.Errorf("expected error, got %v", errs)
		}

		cfg = Default()
		cfg.Logging.MaxBackups = -1
		if errs := cfg.Validate(); !hasFieldError(errs, "logging.max_backups") {
			t.Errorf("expected error, got %v", errs)
		}
	})
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "worker.count", Value: 0, Message: "must be at least 1"},
	}
	if got := errs.Error(); got != "worker.count: must be at least 1 (got: 0)" {
		t.Errorf("single error message = %q", got)
	}

	errs = append(errs, ValidationError{Field: "logging.level", Value: "verbose", Message: "must be one of: debug, info, warn, error"})
	got := errs.Error()
	if !strings.HasPrefix(got, "2 validation errors:") {
		t.Errorf("multi error message = %q", got)
	}
	if !strings.Contains(got, "worker.count") || !strings.Contains(got, "logging.level") {
		t.Errorf("multi error message missing fields: %q", got)
	}

	if got := (ValidationErrors{}).Error(); got != "" {
		t.Errorf("empty errors message = %q", got)
	}
}
