package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestClassifyPlatformError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"fs permission", fmt.Errorf("open: %w", fs.ErrPermission), CausePermission},
		{"fs not exist", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, CauseNotFound},
		{"cancelled", context.Canceled, CauseCancelled},
		{"deadline", context.DeadlineExceeded, CauseCancelled},
		{"access denied text", errors.New("Access is denied."), CausePermission},
		{"busy text", errors.New("resource busy"), CauseBusy},
		{"other", errors.New("invalid variant"), CauseRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPlatformError(tt.err); got != tt.want {
				t.Errorf("ClassifyPlatformError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapPlatformError(t *testing.T) {
	if WrapPlatformError("op", nil) != nil {
		t.Fatal("nil error should wrap to nil")
	}

	rejected := WrapPlatformError("set_icon", errors.New("invalid variant"))
	if rejected.Code != ErrCodeSetFailed {
		t.Errorf("code = %v, want SET_FAILED", rejected.Code)
	}
	if rejected.Message != "invalid variant" {
		t.Errorf("message = %q, want OS text", rejected.Message)
	}
	if !rejected.Retryable {
		t.Error("rejected change should stay retryable")
	}
	if rejected.Context["cause"] != CauseRejected {
		t.Errorf("cause = %q", rejected.Context["cause"])
	}

	denied := WrapPlatformError("set_icon", fs.ErrPermission)
	if denied.Retryable {
		t.Error("permission errors should not be retryable")
	}

	existing := NewUnsupported("set_icon")
	if WrapPlatformError("other", existing) != existing {
		t.Error("bridge errors should pass through unchanged")
	}
}
