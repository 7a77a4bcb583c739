package realtime

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"

	"portfolio/api/models"
)

// SSETransport writes each message as one `data:` event and flushes it.
// Every write carries a deadline so a client that stops reading cannot
// hold the stream open; Close expires the deadline to unblock a stalled write.
type SSETransport struct {
	w          http.ResponseWriter
	controller *http.ResponseController
	flusher    http.Flusher
}

func NewSSETransport(w http.ResponseWriter) *SSETransport {
	t := &SSETransport{w: w, controller: http.NewResponseController(w)}
	if f, ok := w.(http.Flusher); ok {
		t.flusher = f
	}
	return t
}

func (t *SSETransport) Kind() string { return "sse" }

func (t *SSETransport) Send(msg models.RealtimeMessage) error {
	if err := t.setWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := sse.Encode(t.w, sse.Event{Data: msg}); err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if t.flusher != nil {
		t.flusher.Flush()
	}
	return nil
}

// Close does not end the response; the handler returning does that.
func (t *SSETransport) Close() error {
	return t.setWriteDeadline(time.Now())
}

func (t *SSETransport) setWriteDeadline(deadline time.Time) error {
	err := t.controller.SetWriteDeadline(deadline)
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("set write deadline: %w", err)
	}
	return nil
}
