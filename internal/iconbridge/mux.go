package iconbridge

import (
	"context"
	"sync"

	bridgeerrors "iconswitch/internal/infrastructure/errors"
	"iconswitch/internal/infrastructure/logging"
)

// Handler answers method calls on a channel. The returned channel yields
// exactly one Outcome and is then closed.
type Handler interface {
	Handle(ctx context.Context, call MethodCall) <-chan Outcome
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, call MethodCall) <-chan Outcome

func (f HandlerFunc) Handle(ctx context.Context, call MethodCall) <-chan Outcome {
	return f(ctx, call)
}

// Mux routes calls to the handler registered for their channel
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   logging.Logger
}

// NewMux creates an empty mux
func NewMux(logger logging.Logger) *Mux {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Mux{
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register installs h for channel, replacing any previous handler.
// A nil handler removes the registration.
func (m *Mux) Register(channel string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h == nil {
		delete(m.handlers, channel)
		m.logger.Info("Channel handler removed", "channel", channel)
		return
	}
	m.handlers[channel] = h
	m.logger.Info("Channel handler registered", "channel", channel)
}

// Registered reports whether channel has a handler
func (m *Mux) Registered(channel string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handlers[channel]
	return ok
}

// Dispatch hands call to the channel's handler. Calls on a channel nobody
// registered are answered with NOT_IMPLEMENTED.
func (m *Mux) Dispatch(ctx context.Context, channel string, call MethodCall) <-chan Outcome {
	m.mu.RLock()
	h, ok := m.handlers[channel]
	m.mu.RUnlock()

	if !ok {
		m.logger.Warn("No handler for channel", "channel", channel, "method", call.Method)
		return resolved(FailureOf(bridgeerrors.NewBridgeErrorWithContext("dispatch",
			bridgeerrors.ErrCodeNotImplemented,
			"no handler registered for channel "+channel, nil,
			map[string]string{"channel": channel, "method": call.Method})))
	}
	return h.Handle(ctx, call)
}

// resolved returns an already-completed outcome channel
func resolved(o Outcome) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- o
	close(ch)
	return ch
}
