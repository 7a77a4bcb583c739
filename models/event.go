package models

import (
	"time"
)

// ActivityType classifies an ActivityLogEntry.
type ActivityType string

const (
	ActivityAPI     ActivityType = "api"
	ActivitySystem  ActivityType = "system"
	ActivityVisitor ActivityType = "visitor"
	ActivityUser    ActivityType = "user"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityAPI, ActivitySystem, ActivityVisitor, ActivityUser:
		return true
	default:
		return false
	}
}

// ActivityLogEntry is a single immutable record in the activity log.
// ID and Timestamp are assigned by the log on append.
type ActivityLogEntry struct {
	ID              int64        `json:"id"`
	Timestamp       time.Time    `json:"timestamp"`
	Activity        string       `json:"activity"`
	Type            ActivityType `json:"type"`
	VisitorID       *string      `json:"visitorId"`
	IPAddress       *string      `json:"ipAddress"`
	UserAgent       *string      `json:"userAgent"`
	Page            *string      `json:"page"`
	SessionDuration *int64       `json:"sessionDuration"`
}

// RealtimeMessageType is the discriminator of messages pushed over the live feed.
type RealtimeMessageType string

const (
	MessageConnection     RealtimeMessageType = "connection"
	MessageSystemActivity RealtimeMessageType = "system_activity"
	MessageEcho           RealtimeMessageType = "echo"
)

// RealtimeMessage is the wire shape shared by the SSE and WebSocket transports.
type RealtimeMessage struct {
	Type      RealtimeMessageType `json:"type"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp"`
}

// StringPtr returns nil for the empty string, otherwise a pointer to a copy of s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
