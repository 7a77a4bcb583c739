package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"portfolio/api/models"
)

func msg(ts, text string) models.RealtimeMessage {
	return models.RealtimeMessage{Type: models.MessageSystemActivity, Message: text, Timestamp: ts}
}

func TestWindow_DeduplicatesByTimestampAndMessage(t *testing.T) {
	w := NewWindow(3)

	assert.True(t, w.Add(msg("2024-01-01T00:00:00.000Z", "CPU utilization: 32%")))
	assert.False(t, w.Add(msg("2024-01-01T00:00:00.000Z", "CPU utilization: 32%")))
	assert.True(t, w.Add(msg("2024-01-01T00:00:03.000Z", "CPU utilization: 32%")))
	assert.True(t, w.Add(msg("2024-01-01T00:00:00.000Z", "Active sessions: 12")))

	assert.Equal(t, 3, w.Len())
}

func TestWindow_KeepsNewest(t *testing.T) {
	w := NewWindow(3)
	for i := 1; i <= 5; i++ {
		w.Add(msg(fmt.Sprintf("t%d", i), "m"))
	}

	got := w.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"t5", "t4", "t3"}, []string{got[0].Timestamp, got[1].Timestamp, got[2].Timestamp})
}

func TestNewSubscriber_Validates(t *testing.T) {
	_, err := NewSubscriber(Options{BaseURL: "not a url"})
	assert.Error(t, err)

	_, err = NewSubscriber(Options{BaseURL: "http://localhost:8080", Transport: "carrier-pigeon"})
	assert.Error(t, err)

	s, err := NewSubscriber(Options{BaseURL: "http://localhost:8080/"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBackoff, s.opts.Backoff)
	assert.Equal(t, TransportWebSocket, s.opts.Transport)
}

// flakyServer sends the same message on every connection and then hangs up.
func flakyServer(t *testing.T, connections *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Handler(func(ws *websocket.Conn) {
		n := connections.Add(1)
		websocket.JSON.Send(ws, models.RealtimeMessage{
			Type:      models.MessageConnection,
			Message:   "Connected to portfolio terminal",
			Timestamp: "2024-01-01T00:00:00.000Z",
		})
		websocket.JSON.Send(ws, msg(fmt.Sprintf("2024-01-01T00:00:0%d.000Z", n), "Cache hit ratio: 94.2%"))
		ws.Close()
	}))
	mux.HandleFunc("/api/events", func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data:{\"type\":\"connection\",\"message\":\"hello\",\"timestamp\":\"2024-01-01T00:00:00.000Z\"}\n\n")
		fmt.Fprintf(w, ": comment\n\ndata: {\"type\":\"system_activity\",\"message\":\"CPU utilization: 32%%\",\"timestamp\":\"t%d\"}\n\n", n)
	})
	return httptest.NewServer(mux)
}

func runSubscriber(t *testing.T, transport string) {
	var connections atomic.Int32
	srv := flakyServer(t, &connections)
	defer srv.Close()

	var mu sync.Mutex
	var received []models.RealtimeMessage
	var disconnects atomic.Int32

	sub, err := NewSubscriber(Options{
		BaseURL:   srv.URL,
		Transport: transport,
		Backoff:   10 * time.Millisecond,
		Window:    NewWindow(50),
		OnMessage: func(m models.RealtimeMessage) {
			mu.Lock()
			received = append(received, m)
			mu.Unlock()
		},
		OnState: func(connected bool, _ error) {
			if !connected {
				disconnects.Add(1)
			}
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()

	require.Eventually(t, func() bool { return connections.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
	assert.GreaterOrEqual(t, disconnects.Load(), int32(2))

	mu.Lock()
	defer mu.Unlock()
	// the greeting repeats on every connection but enters the window once
	greetings := 0
	for _, m := range received {
		if m.Type == models.MessageConnection {
			greetings++
		}
	}
	assert.Equal(t, 1, greetings)
	assert.LessOrEqual(t, sub.Window().Len(), 50)
}

func TestSubscriber_ReconnectsOverWebSocket(t *testing.T) {
	runSubscriber(t, TransportWebSocket)
}

func TestSubscriber_ReconnectsOverSSE(t *testing.T) {
	runSubscriber(t, TransportSSE)
}

func TestSubscriber_SendWithoutConnection(t *testing.T) {
	sub, err := NewSubscriber(Options{BaseURL: "http://localhost:1"})
	require.NoError(t, err)
	assert.ErrorIs(t, sub.Send("hi"), ErrNotConnected)
}
