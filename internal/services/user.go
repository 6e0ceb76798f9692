package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
	"eventhub/internal/storage"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	store          domain.Store
	hasher         domain.PasswordHasher
	contextTimeout time.Duration
}

// NewUserService creates a UserService over the given store and password hasher.
func NewUserService(store domain.Store, hasher domain.PasswordHasher, timeout time.Duration) domain.UserService {
	return &userService{store: store, hasher: hasher, contextTimeout: timeout}
}

func (s *userService) Register(ctx context.Context, in domain.RegisterUserInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Login = strings.TrimSpace(in.Login)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Role == "" {
		in.Role = domain.UserRoleMember
	}
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case in.Login == "":
		return nil, fmt.Errorf("%w: login is required", domain.ErrInvalidInput)
	case !emailRegexp.MatchString(in.Email):
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	case !in.Role.Valid():
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var created *domain.User
	err = storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		_, taken, err := scope.Users.GetByLogin(ctx, in.Login)
		if err != nil {
			return fmt.Errorf("failed to look up login: %w", err)
		}
		if taken {
			return fmt.Errorf("login %q: %w", in.Login, domain.ErrDuplicate)
		}
		created, err = scope.Users.Add(ctx, domain.NewUser(uuid.New(), in.Name, in.Email, in.Login, hash, in.Role))
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user *domain.User
	err := storage.RunInScope(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		u, ok, err := scope.Users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if !ok {
			return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		user = u
		return nil
	})
	return user, err
}

// Remove fails with domain.ErrRestrictedDeletion while the user still participates in an event.
func (s *userService) Remove(ctx context.Context, id uuid.UUID) error {
	return storage.RunInTransaction(ctx, s.store, s.contextTimeout, func(ctx context.Context, scope *domain.Scope) error {
		if err := scope.Users.Remove(ctx, id); err != nil {
			return fmt.Errorf("failed to remove user: %w", err)
		}
		return nil
	})
}
