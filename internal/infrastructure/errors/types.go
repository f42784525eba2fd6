package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorCode is the closed set of failure codes carried by the icon bridge
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeUnsupported
	ErrCodeSetFailed
	ErrCodeNotImplemented
)

// UnsupportedMessage is the fixed message sent when the host lacks alternate icon support
const UnsupportedMessage = "Alternate icons not supported"

// String returns the wire representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeUnsupported:
		return "UNSUPPORTED"
	case ErrCodeSetFailed:
		return "SET_FAILED"
	case ErrCodeNotImplemented:
		return "NOT_IMPLEMENTED"
	default:
		return "UNKNOWN"
	}
}

// ParseErrorCode maps a wire code back to an ErrorCode.
// The second return value is false for anything outside the closed set.
func ParseErrorCode(s string) (ErrorCode, bool) {
	switch s {
	case "UNSUPPORTED":
		return ErrCodeUnsupported, true
	case "SET_FAILED":
		return ErrCodeSetFailed, true
	case "NOT_IMPLEMENTED":
		return ErrCodeNotImplemented, true
	default:
		return ErrCodeUnknown, false
	}
}

// BridgeError is a typed bridge failure with context and retry information
type BridgeError struct {
	Op        string            // operation name
	Code      ErrorCode         // error classification
	Message   string            // human-readable message sent across the bridge
	Err       error             // underlying error, if any
	Retryable bool              // whether the caller may retry
	Context   map[string]string // additional context information
	Timestamp time.Time         // when the error occurred
}

func (e *BridgeError) Error() string {
	if e == nil {
		return "bridge error"
	}

	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	if e.Code != ErrCodeUnknown {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code.String()))
	}

	if e.Retryable {
		parts = append(parts, "retryable=true")
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Context[k]))
		}
	}

	contextStr := ""
	if len(parts) > 0 {
		contextStr = fmt.Sprintf(" [%s]", strings.Join(parts, " "))
	}

	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "bridge error"
	}
	return msg + contextStr
}

func (e *BridgeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *BridgeError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*BridgeError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// IsRetryable returns whether the error is retryable
func (e *BridgeError) IsRetryable() bool {
	if e == nil {
		return false
	}
	return e.Retryable
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *BridgeError) GetCode() string {
	if e == nil {
		return ErrCodeUnknown.String()
	}
	return e.Code.String()
}

// GetContext returns the error context (for logging interface compatibility)
func (e *BridgeError) GetContext() map[string]string {
	if e == nil || e.Context == nil {
		return make(map[string]string)
	}
	return e.Context
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *BridgeError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// WithContext adds context information to the error by mutating the receiver.
// Not safe once the error has been shared with other goroutines.
func (e *BridgeError) WithContext(key, value string) *BridgeError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// NewBridgeError creates a new bridge error with the given parameters
func NewBridgeError(op string, code ErrorCode, message string, err error) *BridgeError {
	return &BridgeError{
		Op:        op,
		Code:      code,
		Message:   message,
		Err:       err,
		Retryable: isRetryableCode(code),
		Context:   make(map[string]string),
		Timestamp: time.Now(),
	}
}

// NewBridgeErrorWithContext creates a new bridge error with additional context
func NewBridgeErrorWithContext(op string, code ErrorCode, message string, err error, context map[string]string) *BridgeError {
	bridgeErr := NewBridgeError(op, code, message, err)
	if context != nil {
		bridgeErr.Context = make(map[string]string, len(context))
		for k, v := range context {
			bridgeErr.Context[k] = v
		}
	}
	return bridgeErr
}

// NewUnsupported reports that the host cannot switch icons at all
func NewUnsupported(op string) *BridgeError {
	return NewBridgeError(op, ErrCodeUnsupported, UnsupportedMessage, nil)
}

// NewSetFailed reports that the icon change was attempted and failed.
// The message is the cause's text so it can be shown to the user verbatim.
func NewSetFailed(op string, err error) *BridgeError {
	msg := "icon change failed"
	if err != nil {
		msg = err.Error()
	}
	return NewBridgeError(op, ErrCodeSetFailed, msg, err)
}

// NewNotImplemented reports a method the receiver does not recognize
func NewNotImplemented(op, method string) *BridgeError {
	return NewBridgeErrorWithContext(op, ErrCodeNotImplemented,
		fmt.Sprintf("method %q not implemented", method), nil,
		map[string]string{"method": method})
}

// isRetryableCode mirrors the bridge's error taxonomy: only SET_FAILED is
// an operation-level failure a caller may retry.
func isRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeSetFailed:
		return true
	case ErrCodeUnsupported, ErrCodeNotImplemented:
		return false
	default:
		return false
	}
}

// Error classification functions

// CodeOf returns the bridge error code carried by err, or ErrCodeUnknown
func CodeOf(err error) ErrorCode {
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Code
	}
	return ErrCodeUnknown
}

// IsUnsupported checks if the error reports missing alternate icon support
func IsUnsupported(err error) bool {
	return CodeOf(err) == ErrCodeUnsupported
}

// IsSetFailed checks if the error reports a failed icon change
func IsSetFailed(err error) bool {
	return CodeOf(err) == ErrCodeSetFailed
}

// IsNotImplemented checks if the error reports an unrecognized method
func IsNotImplemented(err error) bool {
	return CodeOf(err) == ErrCodeNotImplemented
}

// IsRetryable checks if the error is retryable
func IsRetryable(err error) bool {
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Retryable
	}
	return false
}
