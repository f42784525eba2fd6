package iconbridge

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"iconswitch/internal/infrastructure/logging"
)

// fakeIconAPI records how the host drives the platform
type fakeIconAPI struct {
	supported bool
	err       error
	twice     bool // call completion twice
	silent    bool // never call completion

	capabilityChecks atomic.Int32
	calls            atomic.Int32

	mu    sync.Mutex
	names []*string
}

func (f *fakeIconAPI) SupportsAlternateIcons() bool {
	f.capabilityChecks.Add(1)
	return f.supported
}

func (f *fakeIconAPI) SetAlternateIconName(_ context.Context, name *string, completion func(error)) {
	f.calls.Add(1)
	f.mu.Lock()
	f.names = append(f.names, name)
	f.mu.Unlock()

	if f.silent {
		return
	}
	go func() {
		completion(f.err)
		if f.twice {
			completion(nil)
		}
	}()
}

func strPtr(s string) *string { return &s }

func newTestHost(api *fakeIconAPI) *Host {
	return NewHost(api, logging.NewNopLogger())
}

// awaitOutcome reads the single outcome and checks the channel is closed after it
func awaitOutcome(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()

	var o Outcome
	select {
	case got, ok := <-ch:
		if !ok {
			t.Fatal("outcome channel closed without a value")
		}
		o = got
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome produced")
	}

	select {
	case extra, ok := <-ch:
		if ok {
			t.Fatalf("second outcome produced: %v", extra)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("outcome channel was not closed after the response")
	}
	return o
}
