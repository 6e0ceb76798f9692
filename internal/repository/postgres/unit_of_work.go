package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"eventhub/internal/domain"
)

// UnitOfWork runs the statements of one logical operation inside a single *sql.Tx.
// Outside a transaction the repositories use the pool directly.
type UnitOfWork struct {
	db  *sql.DB
	tx  *sql.Tx
	log *slog.Logger
}

// NewUnitOfWork returns an idle UnitOfWork over db.
func NewUnitOfWork(db *sql.DB, logger *slog.Logger) *UnitOfWork {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWork{db: db, log: logger.With("unit_of_work", backendName)}
}

func (u *UnitOfWork) BeginTransaction(ctx context.Context) (domain.BeginOutcome, error) {
	if u.tx != nil {
		return domain.BeginReused, nil
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, storeErr("begin transaction", domain.ErrStorageFailure, err)
	}
	u.tx = tx
	u.log.Debug("transaction started")
	return domain.BeginStarted, nil
}

// SaveChanges is a flush point. database/sql sends every statement when it is
// issued, so there is nothing buffered; it only reports a dead context.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return storeErr("save changes", domain.ErrStorageFailure, err)
	}
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Commit(); err != nil {
		u.log.Error("commit failed, rolling back", "error", err)
		u.abort(tx)
		return storeErr("commit", domain.ErrStorageFailure, err)
	}
	u.log.Debug("transaction committed")
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return storeErr("rollback", domain.ErrStorageFailure, err)
	}
	u.log.Debug("transaction rolled back")
	return nil
}

func (u *UnitOfWork) State() domain.TxState {
	if u.tx != nil {
		return domain.TxInTransaction
	}
	return domain.TxIdle
}

func (u *UnitOfWork) Release(ctx context.Context) {
	if u.tx == nil {
		return
	}
	tx := u.tx
	u.tx = nil
	u.log.Warn("releasing open transaction, rolling back")
	u.abort(tx)
}

// abort rolls tx back and only logs failures. A failed Commit already ends
// the transaction, in which case database/sql reports ErrTxDone.
func (u *UnitOfWork) abort(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		u.log.Warn("rollback during cleanup failed", "error", err)
	}
}

// conn returns the open transaction, or the pool when idle.
func (u *UnitOfWork) conn() dbtx {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}
