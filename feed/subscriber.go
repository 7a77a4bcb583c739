package feed

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"portfolio/api/logs"
	"portfolio/api/models"
)

const (
	TransportWebSocket = "ws"
	TransportSSE       = "sse"

	// DefaultBackoff is the fixed delay before every reconnect.
	DefaultBackoff = 3 * time.Second
)

// ErrNotConnected is returned by Send while no WebSocket is open.
var ErrNotConnected = errors.New("feed: not connected")

type stream interface {
	Next() (models.RealtimeMessage, error)
	Close() error
}

type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8080.
	BaseURL   string
	Transport string
	Backoff   time.Duration
	Window    *Window
	// OnMessage is called for every message that entered the window.
	OnMessage func(msg models.RealtimeMessage)
	// OnState is called on every connect and disconnect.
	OnState func(connected bool, err error)
	Logger  *slog.Logger
}

// Subscriber holds one feed connection open, reconnecting after a fixed
// backoff for as long as its context lives.
type Subscriber struct {
	opts   Options
	client *http.Client

	mu sync.Mutex
	ws *websocket.Conn
}

func NewSubscriber(opts Options) (*Subscriber, error) {
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}
	switch opts.Transport {
	case "":
		opts.Transport = TransportWebSocket
	case TransportWebSocket, TransportSSE:
	default:
		return nil, fmt.Errorf("unknown transport %q", opts.Transport)
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Window == nil {
		opts.Window = NewWindow(3)
	}
	if opts.Logger == nil {
		opts.Logger = logs.Discard()
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Subscriber{opts: opts, client: &http.Client{}}, nil
}

func (s *Subscriber) Window() *Window { return s.opts.Window }

// Run blocks until ctx is done and always returns ctx.Err().
func (s *Subscriber) Run(ctx context.Context) error {
	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.notify(false, err)
		s.opts.Logger.Debug("feed disconnected, reconnecting", "backoff", s.opts.Backoff, "error", err)

		timer := time.NewTimer(s.opts.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Subscriber) session(ctx context.Context) error {
	st, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	// unblock Next when ctx ends
	stop := context.AfterFunc(ctx, func() { st.Close() })
	defer stop()

	s.notify(true, nil)
	for {
		msg, err := st.Next()
		if err != nil {
			return err
		}
		if s.opts.Window.Add(msg) && s.opts.OnMessage != nil {
			s.opts.OnMessage(msg)
		}
	}
}

func (s *Subscriber) open(ctx context.Context) (stream, error) {
	if s.opts.Transport == TransportSSE {
		return s.openSSE(ctx)
	}
	return s.openWS()
}

// Send asks the server to echo text back over the WebSocket.
func (s *Subscriber) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ws == nil {
		return ErrNotConnected
	}
	return websocket.JSON.Send(s.ws, map[string]string{"message": text})
}

func (s *Subscriber) notify(connected bool, err error) {
	if s.opts.OnState != nil {
		s.opts.OnState(connected, err)
	}
}

type wsStream struct {
	s  *Subscriber
	ws *websocket.Conn
}

func (s *Subscriber) openWS() (stream, error) {
	target := "ws" + strings.TrimPrefix(s.opts.BaseURL, "http") + "/ws"
	config, err := websocket.NewConfig(target, s.opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	ws, err := websocket.DialConfig(config)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	s.mu.Lock()
	s.ws = ws
	s.mu.Unlock()
	return &wsStream{s: s, ws: ws}, nil
}

func (w *wsStream) Next() (models.RealtimeMessage, error) {
	var msg models.RealtimeMessage
	err := websocket.JSON.Receive(w.ws, &msg)
	return msg, err
}

func (w *wsStream) Close() error {
	w.s.mu.Lock()
	if w.s.ws == w.ws {
		w.s.ws = nil
	}
	w.s.mu.Unlock()
	return w.ws.Close()
}

type sseStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
}

func (s *Subscriber) openSSE(ctx context.Context) (stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.BaseURL+"/api/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream answered %s", resp.Status)
	}
	return &sseStream{body: resp.Body, reader: bufio.NewReader(resp.Body)}, nil
}

// Next returns the next data event; other fields and comments are skipped.
func (s *sseStream) Next() (models.RealtimeMessage, error) {
	var data strings.Builder
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return models.RealtimeMessage{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if data.Len() == 0 {
				continue
			}
			var msg models.RealtimeMessage
			if err := json.Unmarshal([]byte(data.String()), &msg); err != nil {
				return models.RealtimeMessage{}, fmt.Errorf("decode event: %w", err)
			}
			return msg, nil
		}
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(payload, " "))
		}
	}
}

func (s *sseStream) Close() error {
	return s.body.Close()
}
