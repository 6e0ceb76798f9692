package mongodb

import (
	"context"
	"errors"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventhub/internal/domain"
)

const backendName = "mongodb"

const (
	usersCollection          = "users"
	eventsCollection         = "events"
	participationsCollection = "participations"
	notificationsCollection  = "notifications"
)

func storeErr(op string, kind, err error) error {
	return domain.NewStoreError(backendName, op, kind, err)
}

// writeErr classifies a failed insert or replace.
func writeErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return storeErr(op, domain.ErrDuplicate, err)
	}
	return storeErr(op, domain.ErrStorageFailure, err)
}

// EnsureIndexes creates the collections' secondary and unique indexes.
// Collections have to exist before they are written inside a transaction, which this also covers.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexSets := []struct {
		collection string
		models     []mongo.IndexModel
	}{
		{usersCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "login", Value: 1}}, Options: options.Index().SetUnique(true)},
		}},
		{eventsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "organizerId", Value: 1}}},
		}},
		{participationsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "eventId", Value: 1}}},
		}},
		{notificationsCollection, []mongo.IndexModel{
			{Keys: bson.D{{Key: "participationId", Value: 1}}},
		}},
	}
	for _, set := range indexSets {
		if _, err := db.Collection(set.collection).Indexes().CreateMany(ctx, set.models); err != nil {
			return storeErr("ensure indexes on "+set.collection, domain.ErrStorageFailure, err)
		}
	}
	return nil
}

// NewScope returns a fresh UnitOfWork with the four repositories bound to it.
func NewScope(client *mongo.Client, db *mongo.Database, logger *slog.Logger) *domain.Scope {
	return newScope(db, NewUnitOfWork(client, logger))
}

func newScope(db *mongo.Database, uow *UnitOfWork) *domain.Scope {
	return &domain.Scope{
		UnitOfWork:     uow,
		Users:          NewUserRepository(db, uow),
		Events:         NewEventRepository(db, uow),
		Participations: NewParticipationRepository(db, uow),
		Notifications:  NewNotificationRepository(db, uow),
	}
}

// exists reports whether any document matches filter.
func exists(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	err := coll.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// mustExist fails with ErrNotFound when no document has the given id.
// Updates call it before any reference check.
func mustExist(ctx context.Context, coll *mongo.Collection, op, id string) error {
	ok, err := exists(ctx, coll, bson.M{"_id": id})
	if err != nil {
		return storeErr(op, domain.ErrStorageFailure, err)
	}
	if !ok {
		return storeErr(op, domain.ErrNotFound, nil)
	}
	return nil
}

// findOne decodes the first match into D and converts it. A missing document is not an error.
func findOne[D any, T any](ctx context.Context, coll *mongo.Collection, filter bson.M, convert func(D) (*T, error)) (*T, bool, error) {
	var doc D
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	item, err := convert(doc)
	if err != nil {
		return nil, false, err
	}
	return item, true, nil
}

// findMany decodes every match. It never returns a nil slice.
func findMany[D any, T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, convert func(D) (*T, error)) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx) //nolint:errcheck

	items := make([]*T, 0)
	for cursor.Next(ctx) {
		var doc D
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		item, err := convert(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// replaceByID replaces the document with the given id and reports whether it existed.
func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) (bool, error) {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
