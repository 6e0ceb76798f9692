package mongodb

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"eventhub/internal/domain"
)

type userRepository struct {
	users          *mongo.Collection
	participations *mongo.Collection
	uow            *UnitOfWork
}

func NewUserRepository(db *mongo.Database, uow *UnitOfWork) domain.UserRepository {
	return &userRepository{
		users:          db.Collection(usersCollection),
		participations: db.Collection(participationsCollection),
		uow:            uow,
	}
}

func (r *userRepository) Add(ctx context.Context, u *domain.User) (*domain.User, error) {
	doc := toUserDocument(u)
	if _, err := r.users.InsertOne(r.uow.sessionContext(ctx), doc); err != nil {
		return nil, writeErr("add user", err)
	}
	return userFromDocument(doc)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, bool, error) {
	u, ok, err := findOne(r.uow.sessionContext(ctx), r.users, bson.M{"_id": id.String()}, userFromDocument)
	if err != nil {
		return nil, false, storeErr("get user", domain.ErrStorageFailure, err)
	}
	return u, ok, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, bool, error) {
	u, ok, err := findOne(r.uow.sessionContext(ctx), r.users, bson.M{"login": login}, userFromDocument)
	if err != nil {
		return nil, false, storeErr("get user by login", domain.ErrStorageFailure, err)
	}
	return u, ok, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	users, err := findMany(r.uow.sessionContext(ctx), r.users, bson.M{}, bson.D{{Key: "login", Value: 1}}, userFromDocument)
	if err != nil {
		return nil, storeErr("list users", domain.ErrStorageFailure, err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	doc := toUserDocument(u)
	found, err := replaceByID(r.uow.sessionContext(ctx), r.users, doc.ID, doc)
	if err != nil {
		return nil, writeErr("update user", err)
	}
	if !found {
		return nil, storeErr("update user", domain.ErrNotFound, nil)
	}
	return userFromDocument(doc)
}

// Remove enforces the restrict rule the relational schema gets from its foreign key.
func (r *userRepository) Remove(ctx context.Context, id uuid.UUID) error {
	ctx = r.uow.sessionContext(ctx)
	referenced, err := exists(ctx, r.participations, bson.M{"userId": id.String()})
	if err != nil {
		return storeErr("remove user", domain.ErrStorageFailure, err)
	}
	if referenced {
		return storeErr("remove user", domain.ErrRestrictedDeletion, nil)
	}
	if _, err := r.users.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return storeErr("remove user", domain.ErrStorageFailure, err)
	}
	return nil
}
