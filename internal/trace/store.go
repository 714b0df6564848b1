// Package trace records pointer sessions to sqlite so captured gestures
// can be replayed and analysed offline.
package trace

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/touchbridge/internal/bridge"
	"github.com/banshee-data/touchbridge/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Session identifies one recorded pointer capture.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// SampleRecord is one stored pointer event row. Events with multiple
// contacts span multiple rows sharing an event sequence number; an up
// event that clears the surface stores a single row with no contact.
type SampleRecord struct {
	EventSeq    int64
	Kind        string
	TimestampMs float64
	Contact     *bridge.Contact
}

// FrameRecord is one stored visual frame snapshot.
type FrameRecord struct {
	TickMs     float64  `json:"tick_ms"`
	TranslateX float64  `json:"translate_x"`
	TranslateY float64  `json:"translate_y"`
	Scale      float64  `json:"scale"`
	Rotation   float64  `json:"rotation"`
	Opacity    float64  `json:"opacity"`
	LatencyMs  *float64 `json:"latency_ms,omitempty"`
}

// Store persists sessions, samples and frames to a sqlite database.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the trace database at path and applies any
// pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace db: %w", err)
	}
	s := &Store{db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrateUp() error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Not closed: closing the migrate instance would close the
	// underlying DB connection.
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// BeginSession creates a new session row and returns it.
func (s *Store) BeginSession(name string, startedAt time.Time) (Session, error) {
	sess := Session{
		ID:        uuid.New(),
		Name:      name,
		StartedAt: startedAt.UTC(),
	}
	_, err := s.Exec(
		"INSERT INTO sessions (id, name, started_at) VALUES (?, ?, ?)",
		sess.ID.String(), sess.Name, sess.StartedAt,
	)
	if err != nil {
		return Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

// EndSession marks a session finished.
func (s *Store) EndSession(id uuid.UUID, endedAt time.Time) error {
	res, err := s.Exec(
		"UPDATE sessions SET ended_at = ? WHERE id = ?",
		endedAt.UTC(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// RecordEvent stores one pointer event under the session. eventSeq must
// increase monotonically per session so events can be reassembled in
// order on replay.
func (s *Store) RecordEvent(sessionID uuid.UUID, eventSeq int64, kind string, ev bridge.PointerEvent) error {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO samples
		(session_id, event_seq, kind, timestamp_ms, contact_id, x, y, pressure)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	sid := sessionID.String()
	if len(ev.Contacts) == 0 {
		if _, err := stmt.Exec(sid, eventSeq, kind, ev.Timestamp, nil, nil, nil, nil); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}
	for _, c := range ev.Contacts {
		if _, err := stmt.Exec(sid, eventSeq, kind, ev.Timestamp, c.ID, c.X, c.Y, c.Pressure); err != nil {
			return fmt.Errorf("failed to insert sample: %w", err)
		}
	}
	return tx.Commit()
}

// RecordFrame stores one visual frame snapshot under the session.
func (s *Store) RecordFrame(sessionID uuid.UUID, f FrameRecord) error {
	_, err := s.Exec(`INSERT INTO frames
		(session_id, tick_ms, translate_x, translate_y, scale, rotation, opacity, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID.String(), f.TickMs, f.TranslateX, f.TranslateY,
		f.Scale, f.Rotation, f.Opacity, f.LatencyMs)
	if err != nil {
		return fmt.Errorf("failed to insert frame: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.Query(
		"SELECT id, name, started_at, ended_at FROM sessions ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			sess  Session
			rawID string
			ended sql.NullTime
		)
		if err := rows.Scan(&rawID, &sess.Name, &sess.StartedAt, &ended); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", rawID, err)
		}
		if ended.Valid {
			t := ended.Time
			sess.EndedAt = &t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionEvents reassembles the stored pointer events for a session in
// capture order.
func (s *Store) SessionEvents(sessionID uuid.UUID) (kinds []string, events []bridge.PointerEvent, err error) {
	rows, err := s.Query(`SELECT event_seq, kind, timestamp_ms, contact_id, x, y, pressure
		FROM samples WHERE session_id = ? ORDER BY event_seq`, sessionID.String())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	lastSeq := int64(-1)
	for rows.Next() {
		var (
			rec       SampleRecord
			contactID sql.NullInt64
			x, y, p   sql.NullFloat64
		)
		if err := rows.Scan(&rec.EventSeq, &rec.Kind, &rec.TimestampMs,
			&contactID, &x, &y, &p); err != nil {
			return nil, nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if rec.EventSeq != lastSeq {
			kinds = append(kinds, rec.Kind)
			events = append(events, bridge.PointerEvent{Timestamp: rec.TimestampMs})
			lastSeq = rec.EventSeq
		}
		if contactID.Valid {
			ev := &events[len(events)-1]
			ev.Contacts = append(ev.Contacts, bridge.Contact{
				ID:       int(contactID.Int64),
				X:        x.Float64,
				Y:        y.Float64,
				Pressure: p.Float64,
			})
		}
	}
	return kinds, events, rows.Err()
}

// SessionFrames returns the stored frames for a session in tick order.
func (s *Store) SessionFrames(sessionID uuid.UUID) ([]FrameRecord, error) {
	rows, err := s.Query(`SELECT tick_ms, translate_x, translate_y, scale, rotation, opacity, latency_ms
		FROM frames WHERE session_id = ? ORDER BY tick_ms`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameRecord
	for rows.Next() {
		var (
			f       FrameRecord
			latency sql.NullFloat64
		)
		if err := rows.Scan(&f.TickMs, &f.TranslateX, &f.TranslateY,
			&f.Scale, &f.Rotation, &f.Opacity, &latency); err != nil {
			return nil, fmt.Errorf("failed to scan frame: %w", err)
		}
		if latency.Valid {
			v := latency.Float64
			f.LatencyMs = &v
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}
