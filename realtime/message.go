// Package realtime pushes live activity to browsers over Server-Sent Events
// or WebSocket. Both transports carry the same models.RealtimeMessage.
package realtime

import (
	"time"

	"portfolio/api/models"
)

// TimestampLayout renders message timestamps as ISO-8601 UTC with milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

const (
	SSEGreeting = "Connected to portfolio activity stream"
	WSGreeting  = "Connected to portfolio terminal"
)

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func NewMessage(kind models.RealtimeMessageType, text string, at time.Time) models.RealtimeMessage {
	return models.RealtimeMessage{Type: kind, Message: text, Timestamp: FormatTimestamp(at)}
}

func ConnectionMessage(text string, at time.Time) models.RealtimeMessage {
	return NewMessage(models.MessageConnection, text, at)
}

// SystemActivityMessage derives the pushed message from a stored system entry.
func SystemActivityMessage(entry models.ActivityLogEntry) models.RealtimeMessage {
	return NewMessage(models.MessageSystemActivity, entry.Activity, entry.Timestamp)
}

func EchoMessage(payload string, at time.Time) models.RealtimeMessage {
	return NewMessage(models.MessageEcho, "Received: "+payload, at)
}
