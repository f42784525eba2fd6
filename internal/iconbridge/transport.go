package iconbridge

import (
	"context"
	"errors"
)

// ErrNoResponse is returned when a handler closes its outcome channel without answering
var ErrNoResponse = errors.New("handler closed without responding")

// Transport carries a call to a host and waits for its outcome.
// The error return is reserved for delivery problems; host failures
// come back as a failed Outcome.
type Transport interface {
	Invoke(ctx context.Context, channel string, call MethodCall) (Outcome, error)
}

// LocalTransport reaches a host registered in the same process
type LocalTransport struct {
	mux *Mux
}

// NewLocalTransport creates a transport that dispatches straight into mux
func NewLocalTransport(mux *Mux) *LocalTransport {
	return &LocalTransport{mux: mux}
}

func (t *LocalTransport) Invoke(ctx context.Context, channel string, call MethodCall) (Outcome, error) {
	return Await(ctx, t.mux.Dispatch(ctx, channel, call))
}

// Await blocks until the outcome channel delivers or ctx is done
func Await(ctx context.Context, ch <-chan Outcome) (Outcome, error) {
	select {
	case o, ok := <-ch:
		if !ok {
			return Outcome{}, ErrNoResponse
		}
		return o, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
