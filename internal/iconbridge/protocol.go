// Package iconbridge implements the app-icon request/response bridge: a
// Client that asks for an icon change and a Host that performs it on the
// platform and answers with exactly one Outcome.
package iconbridge

import (
	"fmt"

	bridgeerrors "iconswitch/internal/infrastructure/errors"
)

const (
	// ChannelName is the channel the host registers on
	ChannelName = "app_icon"
	// SetIconMethod is the only method the host recognizes
	SetIconMethod = "setIcon"
	// NameArgument carries the requested variant; absent or null restores the primary icon
	NameArgument = "name"
)

// Method is the closed set of operations the host knows about
type Method int

const (
	MethodUnknown Method = iota
	MethodSetIcon
)

// ParseMethod maps a wire method name to a Method. Matching is exact.
func ParseMethod(name string) Method {
	switch name {
	case SetIconMethod:
		return MethodSetIcon
	default:
		return MethodUnknown
	}
}

func (m Method) String() string {
	switch m {
	case MethodSetIcon:
		return SetIconMethod
	default:
		return "unknown"
	}
}

// MethodCall is one invocation as it crosses the bridge
type MethodCall struct {
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// IconChangeRequest asks for an alternate icon; a nil IconIdentifier
// restores the primary icon. The identifier is not validated here.
type IconChangeRequest struct {
	IconIdentifier *string
}

// Call encodes the request as a setIcon method call
func (r IconChangeRequest) Call() MethodCall {
	args := map[string]any{NameArgument: nil}
	if r.IconIdentifier != nil {
		args[NameArgument] = *r.IconIdentifier
	}
	return MethodCall{Method: SetIconMethod, Arguments: args}
}

// RequestFromCall extracts the icon request from a call's arguments.
// A missing, null or non-string name means "restore default".
func RequestFromCall(call MethodCall) IconChangeRequest {
	name, ok := call.Arguments[NameArgument].(string)
	if !ok {
		return IconChangeRequest{}
	}
	return IconChangeRequest{IconIdentifier: &name}
}

// Outcome is the single result of an icon change: success, or a typed failure
type Outcome struct {
	failure *bridgeerrors.BridgeError
}

// Success is the outcome of a completed icon change
func Success() Outcome {
	return Outcome{}
}

// FailureOf wraps a bridge error as a failed outcome. A nil error yields Success.
func FailureOf(err *bridgeerrors.BridgeError) Outcome {
	return Outcome{failure: err}
}

// Fail builds a failed outcome from a code and message
func Fail(code bridgeerrors.ErrorCode, message string) Outcome {
	return FailureOf(bridgeerrors.NewBridgeError("", code, message, nil))
}

// OK reports whether the icon change succeeded
func (o Outcome) OK() bool {
	return o.failure == nil
}

// Code returns the failure code, ErrCodeUnknown on success
func (o Outcome) Code() bridgeerrors.ErrorCode {
	if o.failure == nil {
		return bridgeerrors.ErrCodeUnknown
	}
	return o.failure.Code
}

// Message returns the human-readable failure message, empty on success
func (o Outcome) Message() string {
	if o.failure == nil {
		return ""
	}
	return o.failure.Message
}

// Err returns the failure as an error, nil on success
func (o Outcome) Err() error {
	if o.failure == nil {
		return nil
	}
	return o.failure
}

func (o Outcome) String() string {
	if o.OK() {
		return "Success"
	}
	return fmt.Sprintf("Failure{%s: %s}", o.Code(), o.Message())
}
