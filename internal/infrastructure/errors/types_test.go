package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeUnsupported, "UNSUPPORTED"},
		{ErrCodeSetFailed, "SET_FAILED"},
		{ErrCodeNotImplemented, "NOT_IMPLEMENTED"},
		{ErrCodeUnknown, "UNKNOWN"},
		{ErrorCode(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.code.String(); got != tt.expected {
				t.Errorf("ErrorCode.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseErrorCode(t *testing.T) {
	for _, code := range []ErrorCode{ErrCodeUnsupported, ErrCodeSetFailed, ErrCodeNotImplemented} {
		got, ok := ParseErrorCode(code.String())
		if !ok || got != code {
			t.Errorf("ParseErrorCode(%q) = %v, %v; want %v, true", code.String(), got, ok, code)
		}
	}

	for _, s := range []string{"", "UNKNOWN", "unsupported", "TIMEOUT"} {
		if got, ok := ParseErrorCode(s); ok {
			t.Errorf("ParseErrorCode(%q) = %v, true; want false", s, got)
		}
	}
}

func TestBridgeError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *BridgeError
		contains []string
	}{
		{
			name: "message with op and code",
			err: &BridgeError{
				Op:      "set_icon",
				Code:    ErrCodeSetFailed,
				Message: "invalid variant",
			},
			contains: []string{"invalid variant", "op=set_icon", "code=SET_FAILED"},
		},
		{
			name: "falls back to wrapped error",
			err: &BridgeError{
				Err:  errors.New("disk on fire"),
				Code: ErrCodeSetFailed,
			},
			contains: []string{"disk on fire", "code=SET_FAILED"},
		},
		{
			name: "context keys are sorted",
			err: &BridgeError{
				Message: "nope",
				Context: map[string]string{"zeta": "1", "alpha": "2"},
			},
			contains: []string{"alpha=2 zeta=1"},
		},
		{
			name:     "empty error",
			err:      &BridgeError{},
			contains: []string{"bridge error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Error() = %q, expected to contain %q", got, want)
				}
			}
		})
	}
}

func TestBridgeError_NilReceiver(t *testing.T) {
	var e *BridgeError

	if e.Error() != "bridge error" {
		t.Errorf("nil Error() = %q", e.Error())
	}
	if e.Unwrap() != nil {
		t.Error("nil Unwrap() should be nil")
	}
	if e.IsRetryable() {
		t.Error("nil IsRetryable() should be false")
	}
	if e.GetCode() != "UNKNOWN" {
		t.Errorf("nil GetCode() = %q", e.GetCode())
	}
	if e.GetContext() == nil {
		t.Error("nil GetContext() should return an empty map")
	}
	if !e.GetTimestamp().IsZero() {
		t.Error("nil GetTimestamp() should be zero")
	}
}

func TestConstructors(t *testing.T) {
	unsupported := NewUnsupported("set_icon")
	if unsupported.Code != ErrCodeUnsupported || unsupported.Message != UnsupportedMessage {
		t.Errorf("NewUnsupported() = %+v", unsupported)
	}
	if unsupported.Retryable {
		t.Error("UNSUPPORTED must not be retryable")
	}

	setFailed := NewSetFailed("set_icon", errors.New("invalid variant"))
	if setFailed.Code != ErrCodeSetFailed || setFailed.Message != "invalid variant" {
		t.Errorf("NewSetFailed() = %+v", setFailed)
	}
	if !setFailed.Retryable {
		t.Error("SET_FAILED should be retryable")
	}
	if setFailed.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	notImpl := NewNotImplemented("dispatch", "unknownOp")
	if notImpl.Code != ErrCodeNotImplemented || notImpl.Retryable {
		t.Errorf("NewNotImplemented() = %+v", notImpl)
	}
	if notImpl.Context["method"] != "unknownOp" {
		t.Errorf("expected method in context, got %v", notImpl.Context)
	}
}

func TestNewBridgeErrorWithContext_Clones(t *testing.T) {
	ctx := map[string]string{"name": "Dark"}
	e := NewBridgeErrorWithContext("set_icon", ErrCodeSetFailed, "x", nil, ctx)
	ctx["name"] = "Light"

	if e.Context["name"] != "Dark" {
		t.Errorf("context was not cloned, got %q", e.Context["name"])
	}
}

func TestClassificationHelpers(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), NewUnsupported("op"))

	if !IsUnsupported(wrapped) {
		t.Error("IsUnsupported should see through wrapping")
	}
	if IsSetFailed(wrapped) || IsNotImplemented(wrapped) {
		t.Error("unexpected classification")
	}
	if CodeOf(errors.New("plain")) != ErrCodeUnknown {
		t.Error("plain errors should classify as unknown")
	}
	if !IsRetryable(NewSetFailed("op", nil)) {
		t.Error("SET_FAILED should be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestBridgeError_Is(t *testing.T) {
	base := errors.New("base")
	e := NewSetFailed("op", base)

	if !errors.Is(e, &BridgeError{Code: ErrCodeSetFailed}) {
		t.Error("expected code match")
	}
	if errors.Is(e, &BridgeError{Code: ErrCodeUnsupported}) {
		t.Error("unexpected code match")
	}
	if !errors.Is(e, base) {
		t.Error("expected wrapped error match")
	}
}
