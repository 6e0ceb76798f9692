package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type participationRepository struct {
	uow *UnitOfWork
}

func NewParticipationRepository(uow *UnitOfWork) domain.ParticipationRepository {
	return &participationRepository{
		uow: uow,
	}
}

func (r *participationRepository) Add(ctx context.Context, p *domain.Participation) (*domain.Participation, error) {
	query := `
		INSERT INTO participations (id, user_id, event_id, role, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	row := toParticipationRow(p)
	_, err := r.uow.conn().ExecContext(ctx, query, row.ID, row.UserID, row.EventID, row.Role, row.Status)
	if err != nil {
		return nil, classify("add participation", err, domain.ErrInvalidReference)
	}
	return participationFromRow(row), nil
}

func (r *participationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participation, bool, error) {
	query := `
		SELECT id, user_id, event_id, role, status
		FROM participations
		WHERE id = $1
	`
	return r.getOne(ctx, "get participation", query, id)
}

func (r *participationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*domain.Participation, bool, error) {
	query := `
		SELECT id, user_id, event_id, role, status
		FROM participations
		WHERE user_id = $1 AND event_id = $2
	`
	return r.getOne(ctx, "get participation by user and event", query, userID, eventID)
}

func (r *participationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	query := `
		SELECT id, user_id, event_id, role, status
		FROM participations
		WHERE user_id = $1
		ORDER BY id
	`
	ps, err := queryList(ctx, r.uow.conn(), scanParticipationRows, query, userID)
	if err != nil {
		return nil, storeErr("list participations by user", domain.ErrStorageFailure, err)
	}
	return ps, nil
}

func (r *participationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error) {
	query := `
		SELECT id, user_id, event_id, role, status
		FROM participations
		WHERE event_id = $1
		ORDER BY id
	`
	ps, err := queryList(ctx, r.uow.conn(), scanParticipationRows, query, eventID)
	if err != nil {
		return nil, storeErr("list participations by event", domain.ErrStorageFailure, err)
	}
	return ps, nil
}

func (r *participationRepository) GetAll(ctx context.Context) ([]*domain.Participation, error) {
	query := `
		SELECT id, user_id, event_id, role, status
		FROM participations
		ORDER BY id
	`
	ps, err := queryList(ctx, r.uow.conn(), scanParticipationRows, query)
	if err != nil {
		return nil, storeErr("list participations", domain.ErrStorageFailure, err)
	}
	return ps, nil
}

func (r *participationRepository) Update(ctx context.Context, p *domain.Participation) (*domain.Participation, error) {
	query := `
		UPDATE participations
		SET user_id = $1, event_id = $2, role = $3, status = $4
		WHERE id = $5
	`
	row := toParticipationRow(p)
	n, err := execAffecting(ctx, r.uow.conn(), query, row.UserID, row.EventID, row.Role, row.Status, row.ID)
	if err != nil {
		return nil, classify("update participation", err, domain.ErrInvalidReference)
	}
	if n == 0 {
		return nil, storeErr("update participation", domain.ErrNotFound, nil)
	}
	return participationFromRow(row), nil
}

// Remove relies on ON DELETE CASCADE to drop the participation's notifications.
func (r *participationRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM participations WHERE id = $1`
	if _, err := r.uow.conn().ExecContext(ctx, query, id); err != nil {
		return classify("remove participation", err, domain.ErrRestrictedDeletion)
	}
	return nil
}

func (r *participationRepository) getOne(ctx context.Context, op, query string, args ...any) (*domain.Participation, bool, error) {
	p, err := scanParticipation(r.uow.conn().QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, storeErr(op, domain.ErrStorageFailure, err)
	}
	return p, true, nil
}
