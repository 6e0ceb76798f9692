package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRole is the application-level role of a user.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleOrganizer UserRole = "organizer"
	UserRoleMember    UserRole = "member"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleOrganizer || r == UserRoleMember
}

// User represents a registered user.
// Password holds the already hashed secret; hashing happens before the record reaches storage.
type User struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Login    string    `json:"login"`
	Password string    `json:"-"`
	Role     UserRole  `json:"role"`
}

// NewUser returns a new User with the given fields. The caller assigns the ID.
func NewUser(id uuid.UUID, name, email, login, password string, role UserRole) *User {
	return &User{
		ID:       id,
		Name:     name,
		Email:    email,
		Login:    login,
		Password: password,
		Role:     role,
	}
}

// PasswordHasher hashes and verifies user passwords.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Add(ctx context.Context, user *User) (*User, error)
	// GetByID reports false with a nil error when no user has the id.
	GetByID(ctx context.Context, id uuid.UUID) (*User, bool, error)
	GetByLogin(ctx context.Context, login string) (*User, bool, error)
	GetAll(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	// Remove fails with ErrRestrictedDeletion while a participation references the user.
	Remove(ctx context.Context, id uuid.UUID) error
}

// RegisterUserInput carries the fields needed to register a user.
type RegisterUserInput struct {
	Name     string
	Email    string
	Login    string
	Password string
	Role     UserRole
}

// UserService defines the business logic for user accounts.
type UserService interface {
	Register(ctx context.Context, in RegisterUserInput) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Remove(ctx context.Context, id uuid.UUID) error
}
