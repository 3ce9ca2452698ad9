package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Journal actions.
const (
	ActionUpload = "upload"
	ActionDelete = "delete"
)

// Event is one entry of the upload/delete audit trail.
type Event struct {
	Action   string
	FileID   string
	Name     string
	Type     string
	Size     int64
	Provider string
}

// Journal appends audit events. It is write-only: the registry is never
// rebuilt from it.
type Journal interface {
	Append(ctx context.Context, e Event) error
}

// NopJournal discards events. Used when no database is configured.
type NopJournal struct{}

// Append implements Journal.
func (NopJournal) Append(context.Context, Event) error { return nil }

// execer is the subset of *pgxpool.Pool the journal needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresJournal writes events to the file_events table.
type PostgresJournal struct {
	db execer
}

// NewPostgresJournal creates a journal on the given pool.
func NewPostgresJournal(db execer) *PostgresJournal {
	return &PostgresJournal{db: db}
}

// Append inserts one event row.
func (j *PostgresJournal) Append(ctx context.Context, e Event) error {
	_, err := j.db.Exec(ctx,
		`INSERT INTO file_events (action, file_id, name, mime_type, size, provider)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.Action, e.FileID, e.Name, e.Type, e.Size, e.Provider,
	)
	if err != nil {
		return fmt.Errorf("append %s event for %q: %w", e.Action, e.FileID, err)
	}
	return nil
}
