// Package db provides read-only SQLite access to a steno recording database,
// the source of live-captured transcripts.
package db

import "time"

// Session represents a recording session.
type Session struct {
	ID        string
	Locale    string
	StartedAt time.Time
	EndedAt   *time.Time
	Title     string
	Status    string
	CreatedAt time.Time
}

// Label is a short human name for the session.
func (s Session) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.StartedAt.Format("2006-01-02 15:04")
}

// Segment represents a finalized transcript segment.
type Segment struct {
	ID             string
	SessionID      string
	Text           string
	StartedAt      time.Time
	EndedAt        time.Time
	Confidence     *float64
	SequenceNumber int
	CreatedAt      time.Time
	Source         string
}
