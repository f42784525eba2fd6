package iconbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"

	bridgeerrors "iconswitch/internal/infrastructure/errors"
	"iconswitch/internal/infrastructure/logging"
)

const requestOp = "request_icon_change"

// Client asks a host to change the app icon
type Client struct {
	transport Transport
	channel   string
	timeout   time.Duration
	guard     *semaphore.Weighted
	logger    logging.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTimeout bounds each request. Zero, the default, waits for the host
// indefinitely.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the client's logger
func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithChannel overrides the channel the client calls on
func WithChannel(channel string) ClientOption {
	return func(c *Client) {
		c.channel = channel
	}
}

// NewClient creates a client on top of transport
func NewClient(transport Transport, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		channel:   ChannelName,
		guard:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewDefaultLogger()
	}
	return c
}

// RequestIconChange switches to the named alternate icon, or back to the
// primary icon when iconIdentifier is nil. It never retries and never
// returns an error: delivery problems come back as SET_FAILED outcomes.
// Overlapping calls on one client run one at a time.
func (c *Client) RequestIconChange(ctx context.Context, iconIdentifier *string) Outcome {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.guard.Acquire(ctx, 1); err != nil {
		return c.deliveryFailure(err, "acquire")
	}
	defer c.guard.Release(1)

	start := time.Now()
	outcome, err := c.transport.Invoke(ctx, c.channel, IconChangeRequest{IconIdentifier: iconIdentifier}.Call())
	if err != nil {
		return c.deliveryFailure(err, "invoke")
	}

	c.logger.Debug("Icon change answered",
		"icon", describeIcon(iconIdentifier),
		"outcome", outcome.String(),
		"duration_ms", time.Since(start).Milliseconds())
	return outcome
}

// SetIcon switches to the named alternate icon
func (c *Client) SetIcon(ctx context.Context, name string) Outcome {
	return c.RequestIconChange(ctx, &name)
}

// ResetIcon restores the primary icon
func (c *Client) ResetIcon(ctx context.Context) Outcome {
	return c.RequestIconChange(ctx, nil)
}

func (c *Client) deliveryFailure(err error, stage string) Outcome {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) && c.timeout > 0 {
		msg = fmt.Sprintf("icon change timed out after %v", c.timeout)
	}

	failure := bridgeerrors.NewBridgeErrorWithContext(requestOp, bridgeerrors.ErrCodeSetFailed, msg, err,
		map[string]string{"stage": stage, "channel": c.channel})
	logging.LogError(c.logger, failure, requestOp, nil)
	return FailureOf(failure)
}
