// Package transport carries the icon bridge across a process boundary over
// WebSocket text frames holding JSON envelopes.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"iconswitch/internal/iconbridge"
	bridgeerrors "iconswitch/internal/infrastructure/errors"
	"iconswitch/internal/infrastructure/logging"
)

// BridgePath is the HTTP path the WebSocket endpoint is served on
const BridgePath = "/bridge"

// Server exposes a mux's channels to remote clients
type Server struct {
	addr     string
	mux      *iconbridge.Mux
	upgrader websocket.Upgrader
	logger   logging.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	conns    map[*websocket.Conn]context.CancelFunc
	closing  bool
	wg       sync.WaitGroup
}

// NewServer creates a server for mux listening on addr
func NewServer(addr string, mux *iconbridge.Mux, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Server{
		addr: addr,
		mux:  mux,
		upgrader: websocket.Upgrader{
			// Only local processes are expected; the listener binds to loopback by default
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]context.CancelFunc),
	}
}

// Handler returns the HTTP handler serving the bridge endpoint
func (s *Server) Handler() http.Handler {
	m := http.NewServeMux()
	m.HandleFunc(BridgePath, s.handleWebSocket)
	return m
}

// Start begins listening and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.logger.Info("Bridge listening", "addr", ln.Addr().String(), "path", BridgePath)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Bridge server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, useful when listening on port 0
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and drops open bridge connections
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	srv := s.server
	for conn, cancel := range s.conns {
		cancel()
		_ = conn.Close()
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.wg.Wait()
	return err
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
			time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.conns[conn] = cancel
	// Added under mu so Stop's Wait never races a late upgrade
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Bridge client connected", "remote", r.RemoteAddr)
	go func() {
		defer s.wg.Done()
		s.serveConn(ctx, conn)
	}()
}

func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn) {
	var (
		writeMu  sync.Mutex
		inflight sync.WaitGroup
	)

	defer func() {
		s.mu.Lock()
		if cancel, ok := s.conns[conn]; ok {
			cancel()
			delete(s.conns, conn)
		}
		s.mu.Unlock()
		_ = conn.Close()
		inflight.Wait()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				s.logger.Debug("Bridge connection closed", "error", err)
			}
			return
		}

		var env iconbridge.Envelope
		if err := json.Unmarshal(payload, &env); err != nil {
			id, ok := iconbridge.RequestID(payload)
			if !ok {
				s.logger.Warn("Invalid bridge request", "error", err)
				continue
			}
			s.logger.Warn("Invalid bridge request", "id", id, "error", err)
			s.writeReply(conn, &writeMu, id, iconbridge.Fail(bridgeerrors.ErrCodeNotImplemented,
				fmt.Sprintf("invalid request: %v", err)))
			continue
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()

			outcome, err := iconbridge.Await(ctx, s.mux.Dispatch(ctx, env.Channel, env.Call()))
			if err != nil {
				// connection gone; nobody is left to answer
				return
			}
			s.writeReply(conn, &writeMu, env.ID, outcome)
		}()
	}
}

// writeReply sends the outcome for request id; writes on one connection are serialized by mu
func (s *Server) writeReply(conn *websocket.Conn, mu *sync.Mutex, id string, o iconbridge.Outcome) {
	data, err := json.Marshal(iconbridge.ReplyFor(id, o))
	if err != nil {
		s.logger.Error("Failed to encode reply", "id", id, "error", err)
		return
	}

	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warn("Failed to send reply", "id", id, "error", err)
	}
}
