package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestGenerationError(t *testing.T) {
	cause := New("connection refused")
	err := NewGenerationError(KindTransient, "catalog unavailable", cause)

	if !IsRetryable(err) {
		t.Error("transient generation error should be retryable")
	}
	if err.Kind != KindTransient {
		t.Errorf("Kind = %q, want %q", err.Kind, KindTransient)
	}
	if !Is(err, cause) {
		t.Error("should match wrapped cause via errors.Is")
	}

	err = err.WithRecordID("rec-1").WithAttempt(2)
	msg := err.Error()
	if want := "generation error [kind=transient, record=rec-1, attempt=2]: catalog unavailable: connection refused"; msg != want {
		t.Errorf("Error() = %q, want %q", msg, want)
	}
}

func TestGenerationErrorKinds(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
		sentinel  error
	}{
		{KindTransient, true, nil},
		{KindTerminal, false, nil},
		{KindTimeout, false, ErrTimeout},
		{KindCancelled, false, ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := NewGenerationError(tt.kind, "boom", nil)
			if got := IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
			if tt.sentinel != nil && !Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", err, tt.sentinel)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"generation transient", NewGenerationError(KindTransient, "x", nil), KindTransient},
		{"generation terminal", NewGenerationError(KindTerminal, "x", nil), KindTerminal},
		{"wrapped generation error", fmt.Errorf("outer: %w", NewGenerationError(KindTimeout, "x", nil)), KindTimeout},
		{"timeout sentinel", fmt.Errorf("op: %w", ErrTimeout), KindTimeout},
		{"cancelled sentinel", fmt.Errorf("op: %w", ErrCancelled), KindCancelled},
		{"plain error", New("boom"), KindTerminal},
		{"timeout error type", NewTimeoutError("gen", time.Second), KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("plan", "tok-123")

	if got, want := err.Error(), "plan 'tok-123' not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrPlanNotFound) {
		t.Error("NotFoundError should match ErrPlanNotFound")
	}
	if IsRetryable(err) {
		t.Error("not-found is not retryable")
	}
	if !IsUserFacing(err) {
		t.Error("not-found is user-facing")
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("calorie target out of range").
		WithField("calorie_target").
		WithValue(-100)

	want := "validation error [field=calorie_target, value=-100]: calorie target out of range"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should match ErrInvalidInput")
	}

	var target *ValidationError
	if !As(fmt.Errorf("submit: %w", err), &target) {
		t.Error("errors.As should find ValidationError through wrapping")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("generating plan", 60*time.Second)

	if got, want := err.Error(), "timeout error: generating plan (timeout: 1m0s)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrTimeout) {
		t.Error("TimeoutError should match ErrTimeout")
	}
	if !IsRetryable(err) {
		t.Error("timeouts default to retryable")
	}
	if IsRetryable(err.WithRetryable(false)) {
		t.Error("WithRetryable(false) should stick")
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(nil); got != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want debug", got)
	}
	if got := GetSeverity(New("plain")); got != SeverityError {
		t.Errorf("GetSeverity(plain) = %v, want error", got)
	}
	if got := GetSeverity(NewValidationError("x")); got != SeverityWarning {
		t.Errorf("GetSeverity(validation) = %v, want warning", got)
	}
	if got := GetSeverity(NewGenerationError(KindTerminal, "x", nil).WithSeverity(SeverityCritical)); got != SeverityCritical {
		t.Errorf("GetSeverity(critical) = %v, want critical", got)
	}
}

func TestSeverityString(t *testing.T) {
	pairs := map[Severity]string{
		SeverityDebug:    "debug",
		SeverityInfo:     "info",
		SeverityWarning:  "warning",
		SeverityError:    "error",
		SeverityCritical: "critical",
		Severity(99):     "unknown",
	}
	for s, want := range pairs {
		if got := s.String(); got != want {
			t.Errorf("Severity(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	base := New("boom")
	wrapped := Wrapf(base, "record %s", "rec-1")
	if !Is(wrapped, base) {
		t.Error("wrapped error should match base via errors.Is")
	}
	if got, want := wrapped.Error(), "record rec-1: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
