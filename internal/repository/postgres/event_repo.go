package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type eventRepository struct {
	uow *UnitOfWork
}

func NewEventRepository(uow *UnitOfWork) domain.EventRepository {
	return &eventRepository{
		uow: uow,
	}
}

func (r *eventRepository) Add(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	query := `
		INSERT INTO events (id, title, description, start_time, address, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	row := toEventRow(e)
	_, err := r.uow.conn().ExecContext(ctx, query, row.ID, row.Title, row.Description, row.StartTime, row.Address, row.OrganizerID)
	if err != nil {
		return nil, classify("add event", err, domain.ErrInvalidReference)
	}
	return eventFromRow(row), nil
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, bool, error) {
	query := `
		SELECT id, title, description, start_time, address, organizer_id
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.uow.conn().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, storeErr("get event", domain.ErrStorageFailure, err)
	}
	return e, true, nil
}

func (r *eventRepository) FindByTitle(ctx context.Context, title string) ([]*domain.Event, error) {
	// strpos instead of LIKE so that % and _ in the search text match literally.
	query := `
		SELECT id, title, description, start_time, address, organizer_id
		FROM events
		WHERE strpos(lower(title), lower($1)) > 0
		ORDER BY start_time
	`
	events, err := queryList(ctx, r.uow.conn(), scanEventRows, query, title)
	if err != nil {
		return nil, storeErr("find events by title", domain.ErrStorageFailure, err)
	}
	return events, nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, start_time, address, organizer_id
		FROM events
		WHERE organizer_id = $1
		ORDER BY start_time
	`
	events, err := queryList(ctx, r.uow.conn(), scanEventRows, query, organizerID)
	if err != nil {
		return nil, storeErr("list events by organizer", domain.ErrStorageFailure, err)
	}
	return events, nil
}

func (r *eventRepository) GetAll(ctx context.Context) ([]*domain.Event, error) {
	query := `
		SELECT id, title, description, start_time, address, organizer_id
		FROM events
		ORDER BY start_time
	`
	events, err := queryList(ctx, r.uow.conn(), scanEventRows, query)
	if err != nil {
		return nil, storeErr("list events", domain.ErrStorageFailure, err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	query := `
		UPDATE events
		SET title = $1, description = $2, start_time = $3, address = $4, organizer_id = $5
		WHERE id = $6
	`
	row := toEventRow(e)
	n, err := execAffecting(ctx, r.uow.conn(), query, row.Title, row.Description, row.StartTime, row.Address, row.OrganizerID, row.ID)
	if err != nil {
		return nil, classify("update event", err, domain.ErrInvalidReference)
	}
	if n == 0 {
		return nil, storeErr("update event", domain.ErrNotFound, nil)
	}
	return eventFromRow(row), nil
}

func (r *eventRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM events WHERE id = $1`
	if _, err := r.uow.conn().ExecContext(ctx, query, id); err != nil {
		return classify("remove event", err, domain.ErrRestrictedDeletion)
	}
	return nil
}
