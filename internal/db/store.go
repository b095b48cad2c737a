package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwulff/scrub/internal/timecode"
	"github.com/jwulff/scrub/internal/transcript"
)

// Store provides read-only access to the steno SQLite database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "Steno", "steno.sqlite")
}

// Open opens the database in read-only mode with WAL.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const sessionColumns = `id, locale, startedAt, endedAt, title, status, createdAt`

// LatestSession returns the most recent session regardless of status, or nil
// if there are none.
func (s *Store) LatestSession() (*Session, error) {
	return scanSession(s.db.QueryRow(`
		SELECT ` + sessionColumns + `
		FROM sessions
		ORDER BY startedAt DESC
		LIMIT 1
	`))
}

// SessionByID returns the session with the given ID, or nil if it does not
// exist.
func (s *Store) SessionByID(id string) (*Session, error) {
	return scanSession(s.db.QueryRow(`
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE id = ?
	`, id))
}

func scanSession(row *sql.Row) (*Session, error) {
	var sess Session
	var startedAt, createdAt float64
	var endedAt sql.NullFloat64
	var title sql.NullString

	if err := row.Scan(&sess.ID, &sess.Locale, &startedAt, &endedAt,
		&title, &sess.Status, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.StartedAt = timeFromUnix(startedAt)
	sess.CreatedAt = timeFromUnix(createdAt)
	if endedAt.Valid {
		t := timeFromUnix(endedAt.Float64)
		sess.EndedAt = &t
	}
	if title.Valid {
		sess.Title = title.String
	}

	return &sess, nil
}

// SegmentsForSession returns all segments of a session in sequence order.
func (s *Store) SegmentsForSession(sessionID string) ([]Segment, error) {
	rows, err := s.db.Query(`
		SELECT id, sessionId, text, startedAt, endedAt, confidence, sequenceNumber, createdAt, source
		FROM segments
		WHERE sessionId = ?
		ORDER BY sequenceNumber ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segs []Segment
	for rows.Next() {
		var seg Segment
		var startedAt, endedAt, createdAt float64
		var confidence sql.NullFloat64
		if err := rows.Scan(&seg.ID, &seg.SessionID, &seg.Text, &startedAt, &endedAt,
			&confidence, &seg.SequenceNumber, &createdAt, &seg.Source); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		seg.StartedAt = timeFromUnix(startedAt)
		seg.EndedAt = timeFromUnix(endedAt)
		seg.CreatedAt = timeFromUnix(createdAt)
		if confidence.Valid {
			c := confidence.Float64
			seg.Confidence = &c
		}
		segs = append(segs, seg)
	}
	return segs, rows.Err()
}

// Lines converts recorded segments into transcript lines whose times are
// offsets from the session start. Offsets are truncated to whole seconds and
// clamped to the clock range; blank segments are skipped.
func Lines(sess *Session, segs []Segment) []transcript.Line {
	lines := make([]transcript.Line, 0, len(segs))
	for _, seg := range segs {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start := offset(sess.StartedAt, seg.StartedAt)
		end := offset(sess.StartedAt, seg.EndedAt)
		if end < start {
			end = start
		}
		lines = append(lines, transcript.Line{
			Start: timecode.FormatClock(start),
			End:   timecode.FormatClock(end),
			Text:  text,
		})
	}
	return lines
}

func offset(origin, t time.Time) int {
	sec := int(t.Sub(origin) / time.Second)
	switch {
	case sec < 0:
		return 0
	case sec > timecode.MaxSeconds:
		return timecode.MaxSeconds
	}
	return sec
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// ErrNoSession is returned by Transcript when no matching session exists.
var ErrNoSession = errors.New("no session found")

// Transcript loads the lines of the session with the given ID, or of the
// latest session when id is empty.
func (s *Store) Transcript(id string) (*Session, []transcript.Line, error) {
	var sess *Session
	var err error
	if id == "" {
		sess, err = s.LatestSession()
	} else {
		sess, err = s.SessionByID(id)
	}
	if err != nil {
		return nil, nil, err
	}
	if sess == nil {
		return nil, nil, ErrNoSession
	}

	segs, err := s.SegmentsForSession(sess.ID)
	if err != nil {
		return nil, nil, err
	}
	return sess, Lines(sess, segs), nil
}
