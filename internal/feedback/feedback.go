// Package feedback keeps the user feedback log in a small SQLite database.
package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tartampluch/go-manse/internal/config"
)

// Status is the triage state of a feedback entry.
type Status string

// Feedback states.
const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusResolved
}

// ParseStatus accepts "open" and "resolved" in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

var (
	// ErrEmptyFeedback means the submitted text is blank.
	ErrEmptyFeedback = errors.New(config.ErrFeedbackEmpty)
	// ErrNotFound means no entry has the given ID.
	ErrNotFound = errors.New(config.ErrFeedbackNone)
	// ErrUnknownStatus means a status other than open or resolved.
	ErrUnknownStatus = errors.New(config.ErrFeedbackStatus)
)

// Entry is one feedback message.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Status    Status    `json:"status"`
}

// Preview shortens the text for list views.
func (e Entry) Preview() string {
	r := []rune(strings.ReplaceAll(e.Text, "\n", " "))
	if len(r) <= config.FeedbackPreview {
		return string(r)
	}
	return string(r[:config.FeedbackPreview]) + "…"
}

const schema = `
CREATE TABLE IF NOT EXISTS feedback (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	text       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'open'
);
CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(created_at DESC);
`

// Store is a feedback log backed by SQLite. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the feedback database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermUserRWX); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFeedbackOpen, err)
	}

	db, err := sql.Open(config.SQLiteDriver, path+config.SQLiteFeedbackQ)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFeedbackOpen, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrFeedbackOpen, err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Submit stores a new open entry with the trimmed text.
func (s *Store) Submit(ctx context.Context, text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Entry{}, ErrEmptyFeedback
	}

	e := Entry{
		ID:        uuid.New(),
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
		Text:      text,
		Status:    StatusOpen,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (id, created_at, text, status) VALUES (?, ?, ?, ?)`,
		e.ID.String(), e.CreatedAt.UnixMicro(), e.Text, string(e.Status),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", config.ErrFeedbackWrite, err)
	}

	slog.Info(config.MsgFeedbackSaved,
		config.LogKeyComponent, config.CompFeedback,
		config.LogKeyID, e.ID.String(),
		config.LogKeyLength, len(e.Text),
	)
	return e, nil
}

// List returns every entry, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, text, status FROM feedback ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFeedbackRead, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id      string
			created int64
			e       Entry
			status  string
		)
		if err := rows.Scan(&id, &created, &e.Text, &status); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrFeedbackRead, err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrFeedbackRead, err)
		}
		e.ID = parsed
		e.CreatedAt = time.UnixMicro(created).UTC()
		e.Status = Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFeedbackRead, err)
	}
	return entries, nil
}

// SetStatus changes the status of the entry with the given ID.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, string(status))
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE feedback SET status = ? WHERE id = ?`, string(status), id.String())
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedbackWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrFeedbackWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	slog.Info(config.MsgFeedbackStatus,
		config.LogKeyComponent, config.CompFeedback,
		config.LogKeyID, id.String(),
		config.LogKeyState, string(status),
	)
	return nil
}
