package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "ishemalink/pkg/domain"
	audit "ishemalink/pkg/platform/audit"
	txcontext "ishemalink/pkg/platform/tx"
)

// Store implements audit.Store over the audit_log table. The table carries a
// trigger that rejects UPDATE and DELETE, so history is immutable even for
// callers holding raw SQL access.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Append inserts an entry, joining the caller's transaction when one is in context.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.UUID(event.ID)
	if eventID == uuid.Nil {
		eventID = uuid.New()
	}

	var actor *uuid.UUID
	if event.ActorID != nil {
		a := uuid.UUID(*event.ActorID)
		actor = &a
	}

	query := `
		INSERT INTO audit_log (id, actor_id, action, category, ip_address, details, request_id, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		eventID,
		actor,
		string(event.Action),
		string(event.Action.Category()),
		event.IP,
		event.Detail,
		event.RequestID,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const selectColumns = `id, actor_id, action, COALESCE(ip_address, ''), COALESCE(details, ''), COALESCE(request_id, ''), created_at`

// ListByActor returns entries for one actor, newest first.
func (s *Store) ListByActor(ctx context.Context, actor id.UserID) ([]audit.Event, error) {
	query := `SELECT ` + selectColumns + ` FROM audit_log WHERE actor_id = $1 ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(actor))
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns the N most recent entries.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `SELECT ` + selectColumns + ` FROM audit_log ORDER BY created_at DESC LIMIT $1`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var (
			e      audit.Event
			eid    uuid.UUID
			actor  uuid.NullUUID
			action string
		)
		if err := rows.Scan(&eid, &actor, &action, &e.IP, &e.Detail, &e.RequestID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID = id.AuditID(eid)
		e.Action = audit.Action(action)
		if actor.Valid {
			a := id.UserID(actor.UUID)
			e.ActorID = &a
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return events, nil
}
