package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

func TestUserRepository_AddThenGetByID(t *testing.T) {
	ctx := context.Background()
	scope, mock := newMockScope(t)
	u := domain.NewUser(uuid.MustParse("8d1f6f0e-2b5c-4f4e-9a52-0c3b1d0f1a01"), "Alice", "alice@example.com", "alice", "hash", domain.UserRoleOrganizer)

	mock.ExpectExec(`INSERT INTO users \(id, name, email, login, password, role\)`).
		WithArgs(u.ID, "Alice", "alice@example.com", "alice", "hash", "organizer").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
		WithArgs(u.ID).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(u.ID.String(), "Alice", "alice@example.com", "alice", "hash", "organizer"))

	added, err := scope.Users.Add(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u, added)

	got, ok, err := scope.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Add(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "unique violation returns ErrDuplicate",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})
			},
			errIs: domain.ErrDuplicate,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).WillReturnError(sql.ErrConnDone)
			},
			errIs: domain.ErrStorageFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, mock := newMockScope(t)
			tt.mock(mock)

			got, err := scope.Users.Add(ctx, domain.NewUser(uuid.New(), "A", "a@b.com", "a", "h", domain.UserRoleMember))
			require.Error(t, err)
			require.ErrorIs(t, err, tt.errIs)
			require.Nil(t, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByLogin(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantOK  bool
		wantErr bool
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE login = \$1`).
					WithArgs("alice").
					WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "Alice", "a@b.com", "alice", "h", "member"))
			},
			wantOK: true,
		},
		{
			name: "absent is not an error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE login = \$1`).
					WithArgs("alice").
					WillReturnError(sql.ErrNoRows)
			},
			wantOK: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE login = \$1`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, mock := newMockScope(t)
			tt.mock(mock)

			got, ok, err := scope.Users.GetByLogin(ctx, "alice")
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrStorageFailure)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, id, got.ID)
			} else {
				assert.Nil(t, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	u := domain.NewUser(uuid.New(), "Alice", "alice@example.com", "alice", "hash", domain.UserRoleMember)

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WithArgs("Alice", "alice@example.com", "alice", "hash", "member", u.ID).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "never added returns ErrNotFound",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			errIs: domain.ErrNotFound,
		},
		{
			name: "login taken returns ErrDuplicate",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE users`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			errIs: domain.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, mock := newMockScope(t)
			tt.mock(mock)

			got, err := scope.Users.Update(ctx, u)
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
				require.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, u, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Remove(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("second remove is a no-op", func(t *testing.T) {
		scope, mock := newMockScope(t)
		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, scope.Users.Remove(ctx, id))
		require.NoError(t, scope.Users.Remove(ctx, id))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("referenced by a participation", func(t *testing.T) {
		scope, mock := newMockScope(t)
		mock.ExpectExec(`DELETE FROM users`).WillReturnError(&pq.Error{Code: "23503"})

		err := scope.Users.Remove(ctx, id)
		require.ErrorIs(t, err, domain.ErrRestrictedDeletion)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetAll(t *testing.T) {
	ctx := context.Background()
	scope, mock := newMockScope(t)

	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY login`).
		WillReturnRows(sqlmock.NewRows(userColumns))

	users, err := scope.Users.GetAll(ctx)
	require.NoError(t, err)
	require.NotNil(t, users)
	assert.Empty(t, users)
	require.NoError(t, mock.ExpectationsWereMet())
}
