package storage

import (
	"context"
	"errors"
	"time"

	"eventhub/internal/domain"
)

// RunInTransaction runs fn against a fresh scope inside one unit of work and commits when fn
// succeeds. A non-positive timeout leaves ctx unbounded. On a degraded backend the writes fn
// made before failing stay applied.
func RunInTransaction(ctx context.Context, store domain.Store, timeout time.Duration, fn func(ctx context.Context, scope *domain.Scope) error) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	scope := store.NewScope()
	uow := scope.UnitOfWork
	defer uow.Release(context.WithoutCancel(ctx))

	if _, err := uow.BeginTransaction(ctx); err != nil {
		return err
	}
	if err := fn(ctx, scope); err != nil {
		if rbErr := uow.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := uow.SaveChanges(ctx); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// RunInScope runs read-only fn against a fresh scope without opening a transaction.
func RunInScope(ctx context.Context, store domain.Store, timeout time.Duration, fn func(ctx context.Context, scope *domain.Scope) error) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	scope := store.NewScope()
	defer scope.UnitOfWork.Release(context.WithoutCancel(ctx))
	return fn(ctx, scope)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
