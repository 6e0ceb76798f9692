package mongodb

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eventhub/internal/domain"
)

var bySentAtDesc = bson.D{{Key: "sentAt", Value: -1}}

type notificationRepository struct {
	notifications  *mongo.Collection
	participations *mongo.Collection
	uow            *UnitOfWork
}

func NewNotificationRepository(db *mongo.Database, uow *UnitOfWork) domain.NotificationRepository {
	return &notificationRepository{
		notifications:  db.Collection(notificationsCollection),
		participations: db.Collection(participationsCollection),
		uow:            uow,
	}
}

func (r *notificationRepository) Add(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	ctx = r.uow.sessionContext(ctx)
	doc := toNotificationDocument(n)
	if err := r.checkParticipation(ctx, "add notification", doc.ParticipationID); err != nil {
		return nil, err
	}
	if _, err := r.notifications.InsertOne(ctx, doc); err != nil {
		return nil, writeErr("add notification", err)
	}
	return notificationFromDocument(doc)
}

func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, bool, error) {
	n, ok, err := findOne(r.uow.sessionContext(ctx), r.notifications, bson.M{"_id": id.String()}, notificationFromDocument)
	if err != nil {
		return nil, false, storeErr("get notification", domain.ErrStorageFailure, err)
	}
	return n, ok, nil
}

func (r *notificationRepository) ListByParticipation(ctx context.Context, participationID uuid.UUID) ([]*domain.Notification, error) {
	filter := bson.M{"participationId": participationID.String()}
	ns, err := findMany(r.uow.sessionContext(ctx), r.notifications, filter, bySentAtDesc, notificationFromDocument)
	if err != nil {
		return nil, storeErr("list notifications by participation", domain.ErrStorageFailure, err)
	}
	return ns, nil
}

func (r *notificationRepository) GetAll(ctx context.Context) ([]*domain.Notification, error) {
	ns, err := findMany(r.uow.sessionContext(ctx), r.notifications, bson.M{}, bySentAtDesc, notificationFromDocument)
	if err != nil {
		return nil, storeErr("list notifications", domain.ErrStorageFailure, err)
	}
	return ns, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	ctx = r.uow.sessionContext(ctx)
	doc := toNotificationDocument(n)
	if err := mustExist(ctx, r.notifications, "update notification", doc.ID); err != nil {
		return nil, err
	}
	if err := r.checkParticipation(ctx, "update notification", doc.ParticipationID); err != nil {
		return nil, err
	}
	found, err := replaceByID(ctx, r.notifications, doc.ID, doc)
	if err != nil {
		return nil, writeErr("update notification", err)
	}
	if !found {
		return nil, storeErr("update notification", domain.ErrNotFound, nil)
	}
	return notificationFromDocument(doc)
}

func (r *notificationRepository) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := r.notifications.DeleteOne(r.uow.sessionContext(ctx), bson.M{"_id": id.String()}); err != nil {
		return storeErr("remove notification", domain.ErrStorageFailure, err)
	}
	return nil
}

func (r *notificationRepository) checkParticipation(ctx context.Context, op, participationID string) error {
	ok, err := exists(ctx, r.participations, bson.M{"_id": participationID})
	if err != nil {
		return storeErr(op, domain.ErrStorageFailure, err)
	}
	if !ok {
		return storeErr(op, domain.ErrInvalidReference, nil)
	}
	return nil
}
