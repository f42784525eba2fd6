package iconbridge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	bridgeerrors "iconswitch/internal/infrastructure/errors"
	"iconswitch/internal/infrastructure/logging"
	"iconswitch/internal/platform"
)

const setIconOp = "set_icon"

type hostState int32

const (
	stateIdle hostState = iota
	stateAwaitingCapabilityCheck
	stateAwaitingOSCallback
	stateResponded
)

func (s hostState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitingCapabilityCheck:
		return "awaiting_capability_check"
	case stateAwaitingOSCallback:
		return "awaiting_os_callback"
	case stateResponded:
		return "responded"
	default:
		return "invalid"
	}
}

// Host serves icon change calls against the platform icon API
type Host struct {
	api    platform.IconAPI
	logger logging.Logger
}

// NewHost creates a host for the given platform API
func NewHost(api platform.IconAPI, logger logging.Logger) *Host {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Host{api: api, logger: logger}
}

// Register installs the host on its channel. Must run during startup,
// before the transport accepts calls.
func (h *Host) Register(mux *Mux) {
	mux.Register(ChannelName, h)
}

// Handle processes one call. The returned channel yields exactly one
// Outcome and is then closed; every path through the host responds.
func (h *Host) Handle(ctx context.Context, call MethodCall) <-chan Outcome {
	r := newResponder(h.logger, call.Method)

	switch ParseMethod(call.Method) {
	case MethodSetIcon:
		h.setIcon(ctx, call, r)
	default:
		r.respond(FailureOf(bridgeerrors.NewNotImplemented("handle", call.Method)))
	}

	return r.ch
}

func (h *Host) setIcon(ctx context.Context, call MethodCall, r *responder) {
	r.transition(stateAwaitingCapabilityCheck)
	if !h.api.SupportsAlternateIcons() {
		r.respond(FailureOf(bridgeerrors.NewUnsupported(setIconOp)))
		return
	}

	req := RequestFromCall(call)
	r.transition(stateAwaitingOSCallback)

	start := time.Now()
	// Once issued the change runs to completion even if the caller stops waiting
	osCtx := context.WithoutCancel(ctx)
	h.api.SetAlternateIconName(osCtx, req.IconIdentifier, func(err error) {
		fields := map[string]interface{}{"icon": describeIcon(req.IconIdentifier)}
		if err != nil {
			failure := bridgeerrors.WrapPlatformError(setIconOp, err)
			logging.LogError(h.logger, failure, setIconOp, fields)
			r.respond(FailureOf(failure))
			return
		}
		logging.LogOperation(h.logger, setIconOp, time.Since(start), fields)
		r.respond(Success())
	})
}

func describeIcon(name *string) string {
	if name == nil {
		return "<default>"
	}
	return *name
}

// responder delivers a single outcome and drops any later ones
type responder struct {
	once   sync.Once
	ch     chan Outcome
	state  atomic.Int32
	method string
	logger logging.Logger
}

func newResponder(logger logging.Logger, method string) *responder {
	return &responder{
		ch:     make(chan Outcome, 1),
		method: method,
		logger: logger,
	}
}

func (r *responder) transition(to hostState) {
	from := hostState(r.state.Swap(int32(to)))
	r.logger.Debug("Host state changed", "method", r.method, "from", from.String(), "to", to.String())
}

func (r *responder) respond(o Outcome) {
	delivered := false
	r.once.Do(func() {
		r.transition(stateResponded)
		r.ch <- o
		close(r.ch)
		delivered = true
	})
	if !delivered {
		r.logger.Warn("Dropping duplicate response", "method", r.method, "outcome", o.String())
	}
}
