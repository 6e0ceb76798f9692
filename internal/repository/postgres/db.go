package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

const backendName = "postgresql"

// PostgreSQL error codes mapped to storage error kinds.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// dbtx is the subset of *sql.DB and *sql.Tx the repositories need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func storeErr(op string, kind, err error) error {
	return domain.NewStoreError(backendName, op, kind, err)
}

// classify maps a driver error to a storage error. Foreign key violations
// become fkKind: ErrInvalidReference on writes, ErrRestrictedDeletion on deletes.
func classify(op string, err error, fkKind error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			return storeErr(op, domain.ErrDuplicate, err)
		case pgForeignKeyViolation:
			return storeErr(op, fkKind, err)
		}
	}
	return storeErr(op, domain.ErrStorageFailure, err)
}

// execAffecting runs a write and returns the number of affected rows.
func execAffecting(ctx context.Context, q dbtx, query string, args ...any) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// queryList runs query and scans every row with scan. It never returns a nil slice.
func queryList[T any](ctx context.Context, q dbtx, scan func(*sql.Rows) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
