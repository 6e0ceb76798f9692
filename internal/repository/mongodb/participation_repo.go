package mongodb

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eventhub/internal/domain"
)

var byID = bson.D{{Key: "_id", Value: 1}}

type participationRepository struct {
	participations *mongo.Collection
	users          *mongo.Collection
	events         *mongo.Collection
	notifications  *mongo.Collection
	uow            *UnitOfWork
}

func NewParticipationRepository(db *mongo.Database, uow *UnitOfWork) domain.ParticipationRepository {
	return &participationRepository{
		participations: db.Collection(participationsCollection),
		users:          db.Collection(usersCollection),
		events:         db.Collection(eventsCollection),
		notifications:  db.Collection(notificationsCollection),
		uow:            uow,
	}
}

func (r *participationRepository) Add(ctx context.Context, p *domain.Participation) (*domain.Participation, error) {
	ctx = r.uow.sessionContext(ctx)
	doc := toParticipationDocument(p)
	if err := r.checkReferences(ctx, "add participation", doc); err != nil {
		return nil, err
	}
	if _, err := r.participations.InsertOne(ctx, doc); err != nil {
		return nil, writeErr("add participation", err)
	}
	return participationFromDocument(doc)
}

func (r *participationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participation, bool, error) {
	p, ok, err := findOne(r.uow.sessionContext(ctx), r.participations, bson.M{"_id": id.String()}, participationFromDocument)
	if err != nil {
		return nil, false, storeErr("get participation", domain.ErrStorageFailure, err)
	}
	return p, ok, nil
}

func (r *participationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*domain.Participation, bool, error) {
	filter := bson.M{"userId": userID.String(), "eventId": eventID.String()}
	p, ok, err := findOne(r.uow.sessionContext(ctx), r.participations, filter, participationFromDocument)
	if err != nil {
		return nil, false, storeErr("get participation by user and event", domain.ErrStorageFailure, err)
	}
	return p, ok, nil
}

func (r *participationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Participation, error) {
	ps, err := findMany(r.uow.sessionContext(ctx), r.participations, bson.M{"userId": userID.String()}, byID, participationFromDocument)
	if err != nil {
		return nil, storeErr("list participations by user", domain.ErrStorageFailure, err)
	}
	return ps, nil
}

func (r *participationRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.Participation, error) {
	ps, err := findMany(r.uow.sessionContext(ctx), r.participations, bson.M{"eventId": eventID.String()}, byID, participationFromDocument)
	if err != nil {
		return nil, storeErr("list participations by event", domain.ErrStorageFailure, err)
	}
	return ps, nil
}

func (r *participationRepository) GetAll(ctx context.Context) ([]*domain.Participation, error) {
	ps, err := findMany(r.uow.sessionContext(ctx), r.participations, bson.M{}, byID, participationFromDocument)
	if err != nil {
		return nil, storeErr("list participations", domain.ErrStorageFailure, err)
	}
	return ps, nil
}

func (r *participationRepository) Update(ctx context.Context, p *domain.Participation) (*domain.Participation, error) {
	ctx = r.uow.sessionContext(ctx)
	doc := toParticipationDocument(p)
	if err := mustExist(ctx, r.participations, "update participation", doc.ID); err != nil {
		return nil, err
	}
	if err := r.checkReferences(ctx, "update participation", doc); err != nil {
		return nil, err
	}
	found, err := replaceByID(ctx, r.participations, doc.ID, doc)
	if err != nil {
		return nil, writeErr("update participation", err)
	}
	if !found {
		return nil, storeErr("update participation", domain.ErrNotFound, nil)
	}
	return participationFromDocument(doc)
}

// Remove deletes the participation's notifications first. Without a transaction a failure
// between the two deletes leaves the participation in place rather than orphaned notifications.
func (r *participationRepository) Remove(ctx context.Context, id uuid.UUID) error {
	ctx = r.uow.sessionContext(ctx)
	if _, err := r.notifications.DeleteMany(ctx, bson.M{"participationId": id.String()}); err != nil {
		return storeErr("remove participation notifications", domain.ErrStorageFailure, err)
	}
	if _, err := r.participations.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return storeErr("remove participation", domain.ErrStorageFailure, err)
	}
	return nil
}

// checkReferences stands in for the relational foreign keys on user_id and event_id.
func (r *participationRepository) checkReferences(ctx context.Context, op string, doc participationDocument) error {
	refs := []struct {
		coll *mongo.Collection
		id   string
	}{
		{r.users, doc.UserID},
		{r.events, doc.EventID},
	}
	for _, ref := range refs {
		ok, err := exists(ctx, ref.coll, bson.M{"_id": ref.id})
		if err != nil {
			return storeErr(op, domain.ErrStorageFailure, err)
		}
		if !ok {
			return storeErr(op, domain.ErrInvalidReference, nil)
		}
	}
	return nil
}
