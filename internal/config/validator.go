package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "worker.count")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateWorker()...)
	errors = append(errors, c.validateQueue()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateWorker validates the WorkerConfig
func (c *Config) validateWorker() []ValidationError {
	var errors []ValidationError

	const maxWorkers = 64
	if c.Worker.Count < 1 {
		errors = append(errors, ValidationError{
			Field:   "worker.count",
			Value:   c.Worker.Count,
			Message: "must be at least 1",
		})
	}
	if c.Worker.Count > maxWorkers {
		errors = append(errors, ValidationError{
			Field:   "worker.count",
			Value:   c.Worker.Count,
			Message: fmt.Sprintf("exceeds maximum of %d", maxWorkers),
		})
	}

	const minPollInterval = 10    // 10ms minimum
	const maxPollInterval = 10000 // 10 seconds maximum
	if c.Worker.PollIntervalMs < minPollInterval {
		errors = append(errors, ValidationError{
			Field:   "worker.poll_interval_ms",
			Value:   c.Worker.PollIntervalMs,
			Message: fmt.Sprintf("must be at least %dms", minPollInterval),
		})
	}
	if c.Worker.PollIntervalMs > maxPollInterval {
		errors = append(errors, ValidationError{
			Field:   "worker.poll_interval_ms",
			Value:   c.Worker.PollIntervalMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxPollInterval),
		})
	}

	const maxGenerationTimeout = 600 // 10 minutes maximum
	if c.Worker.GenerationTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "worker.generation_timeout_seconds",
			Value:   c.Worker.GenerationTimeoutSeconds,
			Message: "must be at least 1 second",
		})
	}
	if c.Worker.GenerationTimeoutSeconds > maxGenerationTimeout {
		errors = append(errors, ValidationError{
			Field:   "worker.generation_timeout_seconds",
			Value:   c.Worker.GenerationTimeoutSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxGenerationTimeout),
		})
	}

	return errors
}

// validateQueue validates the QueueConfig
func (c *Config) validateQueue() []ValidationError {
	var errors []ValidationError

	if c.Queue.VisibilityTimeoutSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "queue.visibility_timeout_seconds",
			Value:   c.Queue.VisibilityTimeoutSeconds,
			Message: "must be at least 1 second",
		})
	}

	// A visibility timeout shorter than the generation timeout lets the
	// reaper steal deliveries from workers that are still healthy.
	if c.Queue.VisibilityTimeoutSeconds >= 1 &&
		c.Queue.VisibilityTimeoutSeconds < c.Worker.GenerationTimeoutSeconds {
		errors = append(errors, ValidationError{
			Field:   "queue.visibility_timeout_seconds",
			Value:   c.Queue.VisibilityTimeoutSeconds,
			Message: fmt.Sprintf("must be at least worker.generation_timeout_seconds (%d)", c.Worker.GenerationTimeoutSeconds),
		})
	}

	const maxReapInterval = 300 // 5 minutes maximum
	if c.Queue.ReapIntervalSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "queue.reap_interval_seconds",
			Value:   c.Queue.ReapIntervalSeconds,
			Message: "must be at least 1 second",
		})
	}
	if c.Queue.ReapIntervalSeconds > maxReapInterval {
		errors = append(errors, ValidationError{
			Field:   "queue.reap_interval_seconds",
			Value:   c.Queue.ReapIntervalSeconds,
			Message: fmt.Sprintf("exceeds maximum of %d seconds", maxReapInterval),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB < 1 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be at least 1",
		})
	}
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %d", maxLogSizeMB),
		})
	}

	const maxLogBackups = 50
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}
	if c.Logging.MaxBackups > maxLogBackups {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: fmt.Sprintf("exceeds maximum of %d", maxLogBackups),
		})
	}

	return errors
}
