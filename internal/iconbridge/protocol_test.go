package iconbridge

import (
	"encoding/json"
	"testing"

	bridgeerrors "iconswitch/internal/infrastructure/errors"
)

func TestParseMethod(t *testing.T) {
	if ParseMethod("setIcon") != MethodSetIcon {
		t.Error("setIcon should parse")
	}
	for _, name := range []string{"", "seticon", "setIcon2", "unknownOp"} {
		if ParseMethod(name) != MethodUnknown {
			t.Errorf("ParseMethod(%q) should be unknown", name)
		}
	}
	if MethodSetIcon.String() != "setIcon" || MethodUnknown.String() != "unknown" {
		t.Error("unexpected Method.String()")
	}
}

func TestIconChangeRequest_WireShape(t *testing.T) {
	tests := []struct {
		name string
		req  IconChangeRequest
		want string
	}{
		{"named", IconChangeRequest{IconIdentifier: strPtr("Dark")}, `{"id":"1","channel":"app_icon","method":"setIcon","arguments":{"name":"Dark"}}`},
		{"default", IconChangeRequest{}, `{"id":"1","channel":"app_icon","method":"setIcon","arguments":{"name":null}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(NewEnvelope("1", ChannelName, tt.req.Call()))
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s\nwant %s", data, tt.want)
			}
		})
	}
}

func TestEnvelope_DecodeToRequest(t *testing.T) {
	var env Envelope
	if err := json.Unmarshal([]byte(`{"id":"9","channel":"app_icon","method":"setIcon","arguments":{"name":"Alt1"}}`), &env); err != nil {
		t.Fatal(err)
	}

	req := RequestFromCall(env.Call())
	if req.IconIdentifier == nil || *req.IconIdentifier != "Alt1" {
		t.Errorf("decoded request = %v", req.IconIdentifier)
	}
}

func TestEnvelope_NonObjectArgumentsAreAbsent(t *testing.T) {
	for _, args := range []string{`"Dark"`, `["Dark"]`, `42`, `null`} {
		t.Run(args, func(t *testing.T) {
			var env Envelope
			frame := `{"id":"4","channel":"app_icon","method":"setIcon","arguments":` + args + `}`
			if err := json.Unmarshal([]byte(frame), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.ID != "4" || env.Method != "setIcon" || env.Channel != ChannelName {
				t.Errorf("unexpected envelope %+v", env)
			}
			if req := RequestFromCall(env.Call()); req.IconIdentifier != nil {
				t.Errorf("expected the default icon, got %q", *req.IconIdentifier)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		payload string
		want    string
		ok      bool
	}{
		{`{"id":"5","method":7}`, "5", true},
		{`{"method":"setIcon"}`, "", false},
		{`{"id":5}`, "", false},
		{`{not json`, "", false},
	}

	for _, tt := range tests {
		id, ok := RequestID([]byte(tt.payload))
		if id != tt.want || ok != tt.ok {
			t.Errorf("RequestID(%s) = %q, %v; want %q, %v", tt.payload, id, ok, tt.want, tt.ok)
		}
	}
}

func TestReply_WireShape(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    string
	}{
		{"success", Success(), `{"id":"3"}`},
		{"set failed", Fail(bridgeerrors.ErrCodeSetFailed, "invalid variant"), `{"id":"3","error":{"code":"SET_FAILED","message":"invalid variant"}}`},
		{"unsupported", Fail(bridgeerrors.ErrCodeUnsupported, "Alternate icons not supported"), `{"id":"3","error":{"code":"UNSUPPORTED","message":"Alternate icons not supported"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(ReplyFor("3", tt.outcome))
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("got %s\nwant %s", data, tt.want)
			}

			var back Reply
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatal(err)
			}
			if got := back.Outcome(); got.Code() != tt.outcome.Code() || got.Message() != tt.outcome.Message() {
				t.Errorf("decoded %v, want %v", got, tt.outcome)
			}
		})
	}
}

func TestReply_UnknownCode(t *testing.T) {
	o := Reply{ID: "1", Error: &WireError{Code: "EXPLODED", Message: "boom"}}.Outcome()

	if o.Code() != bridgeerrors.ErrCodeSetFailed {
		t.Errorf("code = %v, want SET_FAILED", o.Code())
	}
	if o.Message() != `unrecognized error code "EXPLODED": boom` {
		t.Errorf("message = %q", o.Message())
	}
}

func TestOutcome_Accessors(t *testing.T) {
	s := Success()
	if !s.OK() || s.Err() != nil || s.Message() != "" || s.Code() != bridgeerrors.ErrCodeUnknown {
		t.Error("unexpected success accessors")
	}
	if s.String() != "Success" {
		t.Errorf("String() = %q", s.String())
	}

	f := Fail(bridgeerrors.ErrCodeNotImplemented, `method "x" not implemented`)
	if f.OK() || f.Err() == nil {
		t.Error("unexpected failure accessors")
	}
	if f.String() != `Failure{NOT_IMPLEMENTED: method "x" not implemented}` {
		t.Errorf("String() = %q", f.String())
	}

	if !FailureOf(nil).OK() {
		t.Error("FailureOf(nil) should be a success")
	}
}
