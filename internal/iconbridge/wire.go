package iconbridge

import (
	"encoding/json"
	"fmt"

	bridgeerrors "iconswitch/internal/infrastructure/errors"
)

// Envelope is a method call framed for a transport
type Envelope struct {
	ID        string         `json:"id"`
	Channel   string         `json:"channel"`
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Call returns the method call carried by the envelope
func (e Envelope) Call() MethodCall {
	return MethodCall{Method: e.Method, Arguments: e.Arguments}
}

// UnmarshalJSON decodes an envelope. Arguments that are not a JSON object
// are treated as absent, the same way a non-string name is.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Channel   string          `json:"channel"`
		Method    string          `json:"method"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var args map[string]any
	if len(raw.Arguments) > 0 && json.Unmarshal(raw.Arguments, &args) != nil {
		args = nil
	}

	*e = Envelope{ID: raw.ID, Channel: raw.Channel, Method: raw.Method, Arguments: args}
	return nil
}

// RequestID recovers the id of a request that failed to decode as an
// Envelope, so the sender can still be answered
func RequestID(payload []byte) (string, bool) {
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.ID == "" {
		return "", false
	}
	return head.ID, true
}

// NewEnvelope frames a call for the given channel
func NewEnvelope(id, channel string, call MethodCall) Envelope {
	return Envelope{ID: id, Channel: channel, Method: call.Method, Arguments: call.Arguments}
}

// Reply answers an Envelope. A reply without Error is a success.
type Reply struct {
	ID    string     `json:"id"`
	Error *WireError `json:"error,omitempty"`
}

// WireError is a failure as it travels over the bridge
type WireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ReplyFor encodes an outcome as the reply to request id
func ReplyFor(id string, o Outcome) Reply {
	if o.OK() {
		return Reply{ID: id}
	}
	return Reply{ID: id, Error: &WireError{Code: o.Code().String(), Message: o.Message()}}
}

// Outcome decodes the reply. A code outside the closed set is surfaced as
// SET_FAILED so the caller still gets a usable message.
func (r Reply) Outcome() Outcome {
	if r.Error == nil {
		return Success()
	}

	code, ok := bridgeerrors.ParseErrorCode(r.Error.Code)
	if !ok {
		return FailureOf(bridgeerrors.NewBridgeErrorWithContext("decode_reply",
			bridgeerrors.ErrCodeSetFailed,
			fmt.Sprintf("unrecognized error code %q: %s", r.Error.Code, r.Error.Message),
			nil,
			map[string]string{"wire_code": r.Error.Code}))
	}
	return FailureOf(bridgeerrors.NewBridgeError("decode_reply", code, r.Error.Message, nil))
}
