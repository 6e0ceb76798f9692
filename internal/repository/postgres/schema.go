package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"eventhub/internal/domain"
)

// schemaStatements create the four tables. Ids are supplied by callers, never generated.
// Participations restrict deletion of their user and event; notifications cascade
// with their participation.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		login TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_time TIMESTAMPTZ NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		organizer_id UUID NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_organizer_id ON events (organizer_id)`,
	`CREATE TABLE IF NOT EXISTS participations (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE RESTRICT,
		event_id UUID NOT NULL REFERENCES events (id) ON DELETE RESTRICT,
		role TEXT NOT NULL,
		status TEXT NOT NULL,
		CONSTRAINT uq_participations_user_event UNIQUE (user_id, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_participations_event_id ON participations (event_id)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		participation_id UUID NOT NULL REFERENCES participations (id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL,
		type TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_participation_id ON notifications (participation_id)`,
}

// Migrate creates the schema in one transaction. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("migrate", domain.ErrStorageFailure, err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return storeErr("migrate", domain.ErrStorageFailure, fmt.Errorf("statement %d: %w", i, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("migrate", domain.ErrStorageFailure, err)
	}
	return nil
}

// NewScope returns a fresh UnitOfWork with the four repositories bound to it.
func NewScope(db *sql.DB, logger *slog.Logger) *domain.Scope {
	uow := NewUnitOfWork(db, logger)
	return &domain.Scope{
		UnitOfWork:     uow,
		Users:          NewUserRepository(uow),
		Events:         NewEventRepository(uow),
		Participations: NewParticipationRepository(uow),
		Notifications:  NewNotificationRepository(uow),
	}
}
