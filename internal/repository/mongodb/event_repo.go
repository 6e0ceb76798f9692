package mongodb

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eventhub/internal/domain"
)

var byStartTime = bson.D{{Key: "startTime", Value: 1}}

type eventRepository struct {
	events         *mongo.Collection
	participations *mongo.Collection
	uow            *UnitOfWork
}

func NewEventRepository(db *mongo.Database, uow *UnitOfWork) domain.EventRepository {
	return &eventRepository{
		events:         db.Collection(eventsCollection),
		participations: db.Collection(participationsCollection),
		uow:            uow,
	}
}

func (r *eventRepository) Add(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	doc := toEventDocument(e)
	if _, err := r.events.InsertOne(r.uow.sessionContext(ctx), doc); err != nil {
		return nil, writeErr("add event", err)
	}
	return eventFromDocument(doc)
}

func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, bool, error) {
	e, ok, err := findOne(r.uow.sessionContext(ctx), r.events, bson.M{"_id": id.String()}, eventFromDocument)
	if err != nil {
		return nil, false, storeErr("get event", domain.ErrStorageFailure, err)
	}
	return e, ok, nil
}

func (r *eventRepository) FindByTitle(ctx context.Context, title string) ([]*domain.Event, error) {
	filter := bson.M{"title": primitive.Regex{Pattern: regexp.QuoteMeta(title), Options: "i"}}
	events, err := findMany(r.uow.sessionContext(ctx), r.events, filter, byStartTime, eventFromDocument)
	if err != nil {
		return nil, storeErr("find events by title", domain.ErrStorageFailure, err)
	}
	return events, nil
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID) ([]*domain.Event, error) {
	filter := bson.M{"organizerId": organizerID.String()}
	events, err := findMany(r.uow.sessionContext(ctx), r.events, filter, byStartTime, eventFromDocument)
	if err != nil {
		return nil, storeErr("list events by organizer", domain.ErrStorageFailure, err)
	}
	return events, nil
}

func (r *eventRepository) GetAll(ctx context.Context) ([]*domain.Event, error) {
	events, err := findMany(r.uow.sessionContext(ctx), r.events, bson.M{}, byStartTime, eventFromDocument)
	if err != nil {
		return nil, storeErr("list events", domain.ErrStorageFailure, err)
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	doc := toEventDocument(e)
	found, err := replaceByID(r.uow.sessionContext(ctx), r.events, doc.ID, doc)
	if err != nil {
		return nil, writeErr("update event", err)
	}
	if !found {
		return nil, storeErr("update event", domain.ErrNotFound, nil)
	}
	return eventFromDocument(doc)
}

func (r *eventRepository) Remove(ctx context.Context, id uuid.UUID) error {
	ctx = r.uow.sessionContext(ctx)
	referenced, err := exists(ctx, r.participations, bson.M{"eventId": id.String()})
	if err != nil {
		return storeErr("remove event", domain.ErrStorageFailure, err)
	}
	if referenced {
		return storeErr("remove event", domain.ErrRestrictedDeletion, nil)
	}
	if _, err := r.events.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return storeErr("remove event", domain.ErrStorageFailure, err)
	}
	return nil
}
