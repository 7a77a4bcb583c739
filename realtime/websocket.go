package realtime

import (
	"encoding/json"
	"time"

	"golang.org/x/net/websocket"

	"portfolio/api/models"
)

const writeTimeout = 10 * time.Second

// WSTransport sends JSON text frames over a WebSocket.
type WSTransport struct {
	ws *websocket.Conn
}

func NewWSTransport(ws *websocket.Conn) *WSTransport {
	return &WSTransport{ws: ws}
}

func (t *WSTransport) Kind() string { return "websocket" }

func (t *WSTransport) Send(msg models.RealtimeMessage) error {
	if err := t.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return websocket.JSON.Send(t.ws, msg)
}

func (t *WSTransport) Close() error {
	return t.ws.Close()
}

// EchoPayload extracts the text to echo from an inbound frame: the message
// field of a JSON object, otherwise the frame unchanged.
func EchoPayload(frame string) string {
	var in struct {
		Message *string `json:"message"`
	}
	if err := json.Unmarshal([]byte(frame), &in); err == nil && in.Message != nil {
		return *in.Message
	}
	return frame
}
