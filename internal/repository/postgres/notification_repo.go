package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type notificationRepository struct {
	uow *UnitOfWork
}

func NewNotificationRepository(uow *UnitOfWork) domain.NotificationRepository {
	return &notificationRepository{
		uow: uow,
	}
}

func (r *notificationRepository) Add(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (id, participation_id, text, sent_at, type)
		VALUES ($1, $2, $3, $4, $5)
	`
	row := toNotificationRow(n)
	_, err := r.uow.conn().ExecContext(ctx, query, row.ID, row.ParticipationID, row.Text, row.SentAt, row.Type)
	if err != nil {
		return nil, classify("add notification", err, domain.ErrInvalidReference)
	}
	return notificationFromRow(row), nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, bool, error) {
	query := `
		SELECT id, participation_id, text, sent_at, type
		FROM notifications
		WHERE id = $1
	`
	n, err := scanNotification(r.uow.conn().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, storeErr("get notification", domain.ErrStorageFailure, err)
	}
	return n, true, nil
}

func (r *notificationRepository) ListByParticipation(ctx context.Context, participationID uuid.UUID) ([]*domain.Notification, error) {
	query := `
		SELECT id, participation_id, text, sent_at, type
		FROM notifications
		WHERE participation_id = $1
		ORDER BY sent_at DESC
	`
	ns, err := queryList(ctx, r.uow.conn(), scanNotificationRows, query, participationID)
	if err != nil {
		return nil, storeErr("list notifications by participation", domain.ErrStorageFailure, err)
	}
	return ns, nil
}

func (r *notificationRepository) GetAll(ctx context.Context) ([]*domain.Notification, error) {
	query := `
		SELECT id, participation_id, text, sent_at, type
		FROM notifications
		ORDER BY sent_at DESC
	`
	ns, err := queryList(ctx, r.uow.conn(), scanNotificationRows, query)
	if err != nil {
		return nil, storeErr("list notifications", domain.ErrStorageFailure, err)
	}
	return ns, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET participation_id = $1, text = $2, sent_at = $3, type = $4
		WHERE id = $5
	`
	row := toNotificationRow(n)
	affected, err := execAffecting(ctx, r.uow.conn(), query, row.ParticipationID, row.Text, row.SentAt, row.Type, row.ID)
	if err != nil {
		return nil, classify("update notification", err, domain.ErrInvalidReference)
	}
	if affected == 0 {
		return nil, storeErr("update notification", domain.ErrNotFound, nil)
	}
	return notificationFromRow(row), nil
}

func (r *notificationRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notifications WHERE id = $1`
	if _, err := r.uow.conn().ExecContext(ctx, query, id); err != nil {
		return classify("remove notification", err, domain.ErrStorageFailure)
	}
	return nil
}
