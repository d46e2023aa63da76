package engine

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(ErrCodeNetworkError, "fetch listing", cause)

	if !errors.Is(err, ErrNetworkError) {
		t.Error("expected network error to match its sentinel")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to unwrap to its cause")
	}
	if errors.Is(err, ErrStartup) {
		t.Error("network error must not match startup sentinel")
	}

	wrapped := fmt.Errorf("run: %w", err)
	if !errors.Is(wrapped, &Error{Code: ErrCodeNetworkError}) {
		t.Error("expected code comparison through wrapping")
	}
}

func TestError_Message(t *testing.T) {
	err := NewError(ErrCodeStartupError, "listing page unreachable", nil).WithDetail("status", 503)

	if got := err.Error(); got != "STARTUP_ERROR: listing page unreachable" {
		t.Errorf("unexpected message %q", got)
	}
	if err.Details["status"] != 503 {
		t.Error("detail not recorded")
	}
}
