package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one journaled simplification. Input and Output hold the
// canonical JSON tree encoding.
type Entry struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Fingerprint string    `json:"fingerprint"`
	Mode        string    `json:"mode"`
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Rendered    string    `json:"rendered"`
	Passes      int       `json:"passes"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewID returns a UUIDv7 entry id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Record stores e. An existing row for the same fingerprint and mode is
// kept and the write is silently ignored. Missing ID and CreatedAt are
// filled in.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Fingerprint == "" || e.Mode == "" {
		return fmt.Errorf("record: fingerprint and mode are required")
	}
	if e.ID == "" {
		e.ID = NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Passes < 1 {
		e.Passes = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO simplifications
		(id, seq, fingerprint, mode, input, output, rendered, passes, created_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM simplifications), ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint, mode) DO NOTHING
	`,
		e.ID,
		e.Fingerprint,
		e.Mode,
		e.Input,
		e.Output,
		e.Rendered,
		e.Passes,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

// Lookup returns the entry for fingerprint and mode, if any.
func (s *Store) Lookup(ctx context.Context, fingerprint, mode string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, fingerprint, mode, input, output, rendered, passes, created_at
		FROM simplifications
		WHERE fingerprint = ? AND mode = ?
	`, fingerprint, mode)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup: %w", err)
	}
	return e, true, nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, fingerprint, mode, input, output, rendered, passes, created_at
		FROM simplifications
		ORDER BY seq DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("recent: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var created string
	if err := row.Scan(&e.ID, &e.Seq, &e.Fingerprint, &e.Mode, &e.Input, &e.Output, &e.Rendered, &e.Passes, &created); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	return e, nil
}
