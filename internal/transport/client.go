package transport

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"iconswitch/internal/iconbridge"
	bridgeerrors "iconswitch/internal/infrastructure/errors"
	"iconswitch/internal/infrastructure/logging"
)

// ErrConnectionClosed is returned for calls pending when the connection drops
var ErrConnectionClosed = errors.New("bridge connection closed")

var _ iconbridge.Transport = (*Client)(nil)

// Client is an iconbridge.Transport talking to a remote Server
type Client struct {
	conn   *websocket.Conn
	logger logging.Logger

	writeMu   sync.Mutex
	pendingMu sync.Mutex
	pending   map[string]chan iconbridge.Reply
	counter   atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
	readDone  chan struct{}
}

// Dial connects to a bridge server, retrying refused connections with backoff
func Dial(ctx context.Context, url string, retry *bridgeerrors.RetryConfig, logger logging.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	var conn *websocket.Conn
	err := bridgeerrors.WithRetry(ctx, retry, "dial", func(ctx context.Context) error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return bridgeerrors.NewBridgeErrorWithContext("dial", bridgeerrors.ErrCodeSetFailed,
				err.Error(), err, map[string]string{"url": url})
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Connected to bridge host", "url", url)
	return NewClient(conn, logger), nil
}

// NewClient wraps an established connection and starts reading replies
func NewClient(conn *websocket.Conn, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	c := &Client{
		conn:     conn,
		logger:   logger,
		pending:  make(map[string]chan iconbridge.Reply),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Invoke sends call and waits for its reply, ctx, or connection loss
func (c *Client) Invoke(ctx context.Context, channel string, call iconbridge.MethodCall) (iconbridge.Outcome, error) {
	id := strconv.FormatUint(c.counter.Add(1), 10)
	data, err := json.Marshal(iconbridge.NewEnvelope(id, channel, call))
	if err != nil {
		return iconbridge.Outcome{}, err
	}

	replyCh := make(chan iconbridge.Reply, 1)
	c.pendingMu.Lock()
	c.pending[id] = replyCh
	c.pendingMu.Unlock()
	defer c.forget(id)

	select {
	case <-c.done:
		return iconbridge.Outcome{}, ErrConnectionClosed
	default:
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return iconbridge.Outcome{}, err
	}

	select {
	case reply := <-replyCh:
		return reply.Outcome(), nil
	case <-c.done:
		return iconbridge.Outcome{}, ErrConnectionClosed
	case <-ctx.Done():
		return iconbridge.Outcome{}, ctx.Err()
	}
}

func (c *Client) forget(id string) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

func (c *Client) readLoop() {
	defer close(c.readDone)
	defer c.shutdown()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var reply iconbridge.Reply
		if err := json.Unmarshal(payload, &reply); err != nil {
			c.logger.Warn("Invalid bridge reply", "error", err)
			continue
		}

		c.pendingMu.Lock()
		ch := c.pending[reply.ID]
		delete(c.pending, reply.ID)
		c.pendingMu.Unlock()

		if ch == nil {
			c.logger.Debug("Reply for unknown request", "id", reply.ID)
			continue
		}
		ch <- reply
	}
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Done is closed once the connection is gone
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection and fails pending calls
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.shutdown()
	<-c.readDone
	return err
}
