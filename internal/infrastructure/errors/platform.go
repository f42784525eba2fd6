package errors

import (
	"context"
	"errors"
	"io/fs"
	"strings"
)

// Cause classes attached to SET_FAILED errors as the "cause" context key
const (
	CausePermission = "permission"
	CauseNotFound   = "not_found"
	CauseBusy       = "busy"
	CauseCancelled  = "cancelled"
	CauseRejected   = "rejected"
)

// ClassifyPlatformError sorts an OS-reported error into a cause class
func ClassifyPlatformError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, fs.ErrPermission):
		return CausePermission
	case errors.Is(err, fs.ErrNotExist):
		return CauseNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CauseCancelled
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "permission denied"),
		strings.Contains(errStr, "access is denied"),
		strings.Contains(errStr, "access denied"):
		return CausePermission
	case strings.Contains(errStr, "no such file"),
		strings.Contains(errStr, "cannot find"):
		return CauseNotFound
	case strings.Contains(errStr, "busy"),
		strings.Contains(errStr, "temporar"),
		strings.Contains(errStr, "locked"):
		return CauseBusy
	default:
		return CauseRejected
	}
}

// WrapPlatformError turns an OS-reported icon change error into a SET_FAILED
// bridge error. The message stays the OS description; permission and
// missing-file causes are marked non-retryable since they need outside help.
func WrapPlatformError(op string, err error) *BridgeError {
	if err == nil {
		return nil
	}

	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr
	}

	cause := ClassifyPlatformError(err)
	wrapped := NewBridgeErrorWithContext(op, ErrCodeSetFailed, err.Error(), err,
		map[string]string{"cause": cause})
	if cause == CausePermission || cause == CauseNotFound {
		wrapped.Retryable = false
	}
	return wrapped
}
