package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// Server runs client connections: greeting, heartbeat and, for WebSocket,
// the echo loop. Every exit path closes the Conn and stops its heartbeat.
type Server struct {
	hub            *Hub
	heartbeat      *Heartbeat
	logger         *slog.Logger
	allowedOrigins []string
	now            func() time.Time
}

func NewServer(hub *Hub, heartbeat *Heartbeat, logger *slog.Logger, allowedOrigins []string) *Server {
	return &Server{
		hub:            hub,
		heartbeat:      heartbeat,
		logger:         logger.With("component", "realtime"),
		allowedOrigins: allowedOrigins,
		now:            time.Now,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// ServeSSE blocks until the client goes away, ctx ends or the hub shuts down.
func (s *Server) ServeSSE(ctx context.Context, w http.ResponseWriter) {
	conn := NewConn(uuid.NewString(), NewSSETransport(w))
	if !s.attach(conn) {
		return
	}
	defer s.detach(conn)

	if err := conn.Open(SSEGreeting); err != nil {
		s.logger.Debug("sse greeting failed", "conn_id", conn.ID, "error", err)
		return
	}
	s.heartbeat.Run(ctx, conn)
}

// WebSocketHandler upgrades requests and serves them until the socket closes.
func (s *Server) WebSocketHandler() http.Handler {
	return websocket.Server{
		Handshake: s.checkOrigin,
		Handler:   s.serveWS,
	}
}

func (s *Server) serveWS(ws *websocket.Conn) {
	conn := NewConn(uuid.NewString(), NewWSTransport(ws))
	if !s.attach(conn) {
		ws.Close()
		return
	}
	defer s.detach(conn)

	if err := conn.Open(WSGreeting); err != nil {
		s.logger.Debug("websocket greeting failed", "conn_id", conn.ID, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(ws.Request().Context())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.heartbeat.Run(ctx, conn)
	}()

	s.readLoop(ws, conn)

	conn.Close()
	cancel()
	wg.Wait()
}

func (s *Server) readLoop(ws *websocket.Conn, conn *Conn) {
	for {
		var frame string
		if err := websocket.Message.Receive(ws, &frame); err != nil {
			return
		}
		if err := conn.Send(EchoMessage(EchoPayload(frame), s.now())); err != nil {
			return
		}
	}
}

func (s *Server) attach(conn *Conn) bool {
	if !s.hub.Register(conn) {
		s.logger.Debug("refusing realtime connection during shutdown", "transport", conn.Kind())
		return false
	}
	s.logger.Info("realtime client connected", "conn_id", conn.ID, "transport", conn.Kind())
	return true
}

func (s *Server) detach(conn *Conn) {
	conn.Close()
	s.hub.Unregister(conn)
	s.logger.Info("realtime client disconnected", "conn_id", conn.ID, "transport", conn.Kind())
}

// checkOrigin accepts clients without an Origin header (non-browser tools)
// and browsers whose origin is allowed.
func (s *Server) checkOrigin(config *websocket.Config, r *http.Request) error {
	raw := r.Header.Get("Origin")
	if raw == "" {
		return nil
	}
	origin, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	config.Origin = origin
	if len(s.allowedOrigins) == 0 {
		return nil
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == raw {
			return nil
		}
	}
	// same host as the server
	if origin.Host == r.Host {
		return nil
	}
	return websocket.ErrBadWebSocketOrigin
}
