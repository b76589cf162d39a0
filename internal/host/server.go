package host

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler processes one inbound message and returns the reply to send, or
// nil for none.
type Handler func(ctx context.Context, data []byte) []byte

// Server accepts bridge connections over WebSocket. Each connection reads
// messages continuously; every message is handled on its own goroutine so a
// slow command never blocks receipt of the next one.
type Server struct {
	addr     string
	path     string
	handler  Handler
	log      *zap.Logger
	upgrader websocket.Upgrader

	listener net.Listener
	http     *http.Server
	wg       sync.WaitGroup

	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// NewServer creates a server that will listen on addr and upgrade requests
// for path.
func NewServer(addr, path string, handler Handler, log *zap.Logger) *Server {
	if path == "" {
		path = "/"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		addr:    addr,
		path:    path,
		handler: handler,
		log:     log.With(zap.String("component", "host_server")),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Start begins listening for connections.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.Handle(s.path, s)
	s.http = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve failed", zap.Error(err))
		}
	}()
	s.log.Info("listening", zap.String("addr", ln.Addr().String()), zap.String("path", s.path))
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop closes the listener and every connection, then waits for in-flight
// handlers.
func (s *Server) Stop() {
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.http.Shutdown(ctx)
		cancel()
	}

	s.mu.Lock()
	s.closed = true
	for ws := range s.conns {
		ws.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ws.Close()
		return
	}
	s.conns[ws] = struct{}{}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, ws)
		s.mu.Unlock()
		ws.Close()
	}()

	s.handleConn(ws, r.RemoteAddr, r.UserAgent())
}

func (s *Server) handleConn(ws *websocket.Conn, remote, agent string) {
	log := s.log.With(zap.String("remote", remote))
	log.Info("bridge connected", zap.String("user_agent", agent))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		writeMu  sync.Mutex
		inflight sync.WaitGroup
	)
	defer inflight.Wait()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("bridge connection lost", zap.Error(err))
			} else {
				log.Info("bridge disconnected")
			}
			cancel()
			return
		}

		inflight.Add(1)
		go func() {
			defer inflight.Done()
			reply := s.handler(ctx, data)
			if reply == nil {
				return
			}
			writeMu.Lock()
			defer writeMu.Unlock()
			if err := ws.WriteMessage(websocket.TextMessage, reply); err != nil {
				log.Debug("dropping reply", zap.Error(err))
			}
		}()
	}
}
