// Package errors provides centralized error definitions and error handling
// utilities for the Mealwise codebase. It defines the pipeline's error
// taxonomy, error constructors with context wrapping, and classification
// helpers.
//
// # Error Types
//
// The package provides two categories of errors:
//
// Semantic errors represent common error conditions:
//   - NotFoundError: record not found (also returned, indistinguishably, for
//     records owned by a different principal)
//   - ValidationError: invalid submission parameters
//   - TimeoutError: operation exceeded its execution budget
//
// Domain-specific errors represent failures inside the pipeline:
//   - GenerationError: a generation attempt failed; carries a Kind
//     distinguishing transient, terminal, timeout, and cancelled failures
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewValidationError("calorie target must be positive").WithField("calorie_target")
//	err := errors.NewNotFoundError("plan", token)
//	err := errors.NewGenerationError(errors.KindTransient, "catalog unavailable", cause)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrPlanNotFound) { ... }
//
//	var genErr *errors.GenerationError
//	if errors.As(err, &genErr) && genErr.Kind == errors.KindTransient { ... }
//
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Plan record sentinel errors
var (
	// ErrPlanNotFound indicates that a plan record could not be found.
	// Foreign-owned records produce this same error so that callers cannot
	// probe for the existence of other users' records.
	ErrPlanNotFound = New("plan not found")
	// ErrRecordTerminal indicates a mutation was attempted on a record that
	// already reached a terminal state.
	ErrRecordTerminal = New("record is in a terminal state")
	// ErrInvalidTransition indicates a state transition the lifecycle does not permit.
	ErrInvalidTransition = New("invalid state transition")
	// ErrProgressRegression indicates a progress update lower than the recorded value.
	ErrProgressRegression = New("progress must not decrease")
)

// Queue sentinel errors
var (
	// ErrTaskNotFound indicates that a queued task could not be found.
	ErrTaskNotFound = New("task not found")
	// ErrQueueClosed indicates the queue has been shut down.
	ErrQueueClosed = New("queue closed")
	// ErrNotDelivered indicates an ack or requeue for a task that is not
	// currently delivered to any worker.
	ErrNotDelivered = New("task not delivered")
	// ErrDuplicateTask indicates an enqueue for a record that is already queued.
	ErrDuplicateTask = New("task already enqueued")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrCancelled indicates that an operation was cancelled by the owner.
	ErrCancelled = New("operation cancelled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrNotCancellable indicates a cancellation request against a record
	// that is already being processed.
	ErrNotCancellable = New("record is not cancellable")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// PipelineError is the base interface for all Mealwise errors.
// It extends the standard error interface with additional methods for
// error handling and classification.
type PipelineError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Is reports whether this error matches the target error.
	Is(target error) bool

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsRetryable returns true if the error is transient and the operation
	// may succeed on retry.
	IsRetryable() bool

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// Kind classifies a generation failure. It is persisted on the record's
// error field so callers can branch on it without parsing messages.
type Kind string

const (
	// KindTransient marks a recoverable failure; the worker retries once.
	KindTransient Kind = "transient"
	// KindTerminal marks an unrecoverable failure, including a transient
	// failure whose retry also failed.
	KindTerminal Kind = "terminal"
	// KindTimeout marks an attempt that exceeded the generation budget.
	KindTimeout Kind = "timeout"
	// KindCancelled marks a record cancelled by its owner while pending.
	KindCancelled Kind = "cancelled"
)

// GenerationError represents a failure inside the generator or in the worker
// machinery surrounding it.
//
// Example:
//
//	err := errors.NewGenerationError(errors.KindTransient, "catalog unavailable", cause)
//	err = err.WithRecordID("rec-1").WithAttempt(2)
type GenerationError struct {
	baseError
	Kind     Kind
	RecordID string
	Attempt  int
}

// NewGenerationError creates a new GenerationError of the given kind.
// Transient errors are marked retryable; all other kinds are not.
func NewGenerationError(kind Kind, message string, cause error) *GenerationError {
	return &GenerationError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  kind == KindTransient,
			userFacing: true,
		},
		Kind: kind,
	}
}

// WithRecordID adds the plan record ID to the error context.
func (e *GenerationError) WithRecordID(id string) *GenerationError {
	e.RecordID = id
	return e
}

// WithAttempt adds the attempt number to the error context.
func (e *GenerationError) WithAttempt(n int) *GenerationError {
	e.Attempt = n
	return e
}

// WithSeverity sets the error severity.
func (e *GenerationError) WithSeverity(s Severity) *GenerationError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *GenerationError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("kind=%s", e.Kind))
	if e.RecordID != "" {
		parts = append(parts, fmt.Sprintf("record=%s", e.RecordID))
	}
	if e.Attempt > 0 {
		parts = append(parts, fmt.Sprintf("attempt=%d", e.Attempt))
	}

	prefix := fmt.Sprintf("generation error [%s]", strings.Join(parts, ", "))
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *GenerationError) Is(target error) bool {
	if _, ok := target.(*GenerationError); ok {
		return true
	}
	switch e.Kind {
	case KindTimeout:
		if errors.Is(target, ErrTimeout) {
			return true
		}
	case KindCancelled:
		if errors.Is(target, ErrCancelled) {
			return true
		}
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("plan", "abc123")
//	fmt.Println(err) // "plan 'abc123' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if errors.Is(target, ErrPlanNotFound) {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid submission parameters.
//
// Example:
//
//	err := errors.NewValidationError("calorie target out of range")
//	err = err.WithField("calorie_target").WithValue(-100)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			severity:   SeverityWarning,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// TimeoutError represents an operation that timed out.
//
// Example:
//
//	err := errors.NewTimeoutError("generating plan", 60*time.Second)
//	fmt.Println(err) // "timeout error: generating plan (timeout: 1m0s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{
			message:    operation,
			severity:   SeverityWarning,
			retryable:  true, // Timeouts are generally retryable
			userFacing: true,
		},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause adds a cause to the error.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

// WithRetryable sets whether the error is retryable (default true for timeouts).
func (e *TimeoutError) WithRetryable(r bool) *TimeoutError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", base, e.cause)
	}
	return base
}

// Is checks if this error matches the target.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	if errors.Is(target, ErrTimeout) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. This checks for:
//   - Errors implementing PipelineError with IsRetryable() returning true
//   - Errors wrapping ErrTimeout
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    return retry(operation)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var pipeErr PipelineError
	if As(err, &pipeErr) {
		return pipeErr.IsRetryable()
	}

	if Is(err, ErrTimeout) {
		return true
	}

	return false
}

// IsUserFacing returns true if the error message is safe to display to end
// users. Semantic errors are always user-facing; everything else depends on
// the PipelineError implementation.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var pipeErr PipelineError
	if As(err, &pipeErr) {
		return pipeErr.IsUserFacing()
	}

	var notFound *NotFoundError
	var validation *ValidationError
	var timeout *TimeoutError

	if As(err, &notFound) || As(err, &validation) || As(err, &timeout) {
		return true
	}

	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement PipelineError.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDebug
	}

	var pipeErr PipelineError
	if As(err, &pipeErr) {
		return pipeErr.Severity()
	}

	return SeverityError
}

// KindOf returns the generation failure kind carried by err, or KindTerminal
// for errors that are not GenerationErrors. Timeouts map to KindTimeout and
// cancellations to KindCancelled so that worker code can classify raw
// context errors uniformly.
func KindOf(err error) Kind {
	var genErr *GenerationError
	if As(err, &genErr) {
		return genErr.Kind
	}
	if Is(err, ErrTimeout) {
		return KindTimeout
	}
	if Is(err, ErrCancelled) {
		return KindCancelled
	}
	if IsRetryable(err) {
		return KindTransient
	}
	return KindTerminal
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to enqueue task")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to load record %s", recordID)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
