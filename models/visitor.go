package models

import "time"

// Visitor is an anonymous browser session identified by the visitorId cookie.
// IsActive is kept as "true"/"false" to match the stored representation.
type Visitor struct {
	ID           int64     `json:"id"`
	VisitorID    string    `json:"visitorId"`
	IPAddress    *string   `json:"ipAddress"`
	UserAgent    *string   `json:"userAgent"`
	FirstVisit   time.Time `json:"firstVisit"`
	LastVisit    time.Time `json:"lastVisit"`
	VisitCount   int64     `json:"visitCount"`
	PagesVisited []string  `json:"pagesVisited"`
	IsActive     string    `json:"isActive"`
}

// Clone returns a deep copy so callers never share PagesVisited with the registry.
func (v *Visitor) Clone() *Visitor {
	if v == nil {
		return nil
	}
	out := *v
	out.PagesVisited = append([]string(nil), v.PagesVisited...)
	return &out
}

// VisitRequest describes one tracked request.
type VisitRequest struct {
	VisitorID string
	IPAddress string
	UserAgent string
	Page      string
}

// VisitorStats is the aggregate view returned by /api/visitors/stats.
type VisitorStats struct {
	TotalVisitors  int64 `json:"totalVisitors"`
	ActiveVisitors int64 `json:"activeVisitors"`
	TotalVisits    int64 `json:"totalVisits"`
}

type VisitorActivityRequest struct {
	VisitorID string `json:"visitorId"`
	Page      string `json:"page"`
}

type EndSessionRequest struct {
	VisitorID string `json:"visitorId"`
}
