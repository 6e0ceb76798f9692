package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

type userRepository struct {
	uow *UnitOfWork
}

func NewUserRepository(uow *UnitOfWork) domain.UserRepository {
	return &userRepository{uow: uow}
}

func (r *userRepository) Add(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (id, name, email, login, password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	row := toUserRow(u)
	_, err := r.uow.conn().ExecContext(ctx, query, row.ID, row.Name, row.Email, row.Login, row.Password, row.Role)
	if err != nil {
		return nil, classify("add user", err, domain.ErrInvalidReference)
	}
	return userFromRow(row), nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, bool, error) {
	query := `
		SELECT id, name, email, login, password, role
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, "get user", query, id)
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*domain.User, bool, error) {
	query := `
		SELECT id, name, email, login, password, role
		FROM users
		WHERE login = $1
	`
	return r.getOne(ctx, "get user by login", query, login)
}

func (r *userRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, email, login, password, role
		FROM users
		ORDER BY login
	`
	users, err := queryList(ctx, r.uow.conn(), scanUserRows, query)
	if err != nil {
		return nil, storeErr("list users", domain.ErrStorageFailure, err)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `
		UPDATE users
		SET name = $1, email = $2, login = $3, password = $4, role = $5
		WHERE id = $6
	`
	row := toUserRow(u)
	n, err := execAffecting(ctx, r.uow.conn(), query, row.Name, row.Email, row.Login, row.Password, row.Role, row.ID)
	if err != nil {
		return nil, classify("update user", err, domain.ErrInvalidReference)
	}
	if n == 0 {
		return nil, storeErr("update user", domain.ErrNotFound, nil)
	}
	return userFromRow(row), nil
}

func (r *userRepository) Remove(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM users WHERE id = $1`
	if _, err := r.uow.conn().ExecContext(ctx, query, id); err != nil {
		return classify("remove user", err, domain.ErrRestrictedDeletion)
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, op, query string, arg any) (*domain.User, bool, error) {
	u, err := scanUser(r.uow.conn().QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, storeErr(op, domain.ErrStorageFailure, err)
	}
	return u, true, nil
}
