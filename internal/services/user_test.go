package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

var farFuture = time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewUserService(store, &fakePasswordHasher{}, time.Second)

	user, err := svc.Register(ctx, domain.RegisterUserInput{
		Name:     " Ada ",
		Email:    "Ada@Example.com",
		Login:    "ada",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, domain.UserRoleMember, user.Role)
	assert.Equal(t, "hash-secret", user.Password)
	assert.NotEqual(t, uuid.Nil, user.ID)

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.True(t, store.allReleased())
}

func TestUserService_Register_Invalid(t *testing.T) {
	valid := domain.RegisterUserInput{Name: "Ada", Email: "ada@example.com", Login: "ada", Password: "secret"}
	tests := []struct {
		name   string
		mutate func(*domain.RegisterUserInput)
	}{
		{"missing name", func(in *domain.RegisterUserInput) { in.Name = "  " }},
		{"missing login", func(in *domain.RegisterUserInput) { in.Login = "" }},
		{"bad email", func(in *domain.RegisterUserInput) { in.Email = "ada" }},
		{"missing password", func(in *domain.RegisterUserInput) { in.Password = "" }},
		{"unknown role", func(in *domain.RegisterUserInput) { in.Role = "root" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			in := valid
			tt.mutate(&in)

			_, err := NewUserService(store, &fakePasswordHasher{}, time.Second).Register(context.Background(), in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, store.scopes)
		})
	}
}

func TestUserService_Register_LoginTaken(t *testing.T) {
	store := newMemoryStore()
	store.seedUser("Ada", "ada")
	svc := NewUserService(store, &fakePasswordHasher{}, time.Second)

	_, err := svc.Register(context.Background(), domain.RegisterUserInput{
		Name: "Other", Email: "other@example.com", Login: "ada", Password: "pw",
	})
	require.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, store.data.users, 1)
}

func TestUserService_Register_HashFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	svc := NewUserService(newMemoryStore(), &fakePasswordHasher{err: boom}, time.Second)

	_, err := svc.Register(context.Background(), domain.RegisterUserInput{
		Name: "Ada", Email: "ada@example.com", Login: "ada", Password: "pw",
	})
	require.ErrorIs(t, err, boom)
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	_, err := NewUserService(newMemoryStore(), &fakePasswordHasher{}, time.Second).GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_Remove(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewUserService(store, &fakePasswordHasher{}, time.Second)
	busy := store.seedUser("Ada", "ada")
	idle := store.seedUser("Grace", "grace")
	event := store.seedEvent("Go Meetup", busy.ID)
	store.seedParticipation(busy.ID, event.ID, domain.ParticipationAccepted)

	require.ErrorIs(t, svc.Remove(ctx, busy.ID), domain.ErrRestrictedDeletion)
	assert.Contains(t, store.data.users, busy.ID)

	require.NoError(t, svc.Remove(ctx, idle.ID))
	require.NoError(t, svc.Remove(ctx, idle.ID))
	assert.NotContains(t, store.data.users, idle.ID)
}
