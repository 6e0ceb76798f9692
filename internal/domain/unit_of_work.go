package domain

import "context"

// TxState is the lifecycle state of a UnitOfWork.
type TxState int

const (
	TxIdle TxState = iota
	TxInTransaction
)

func (s TxState) String() string {
	if s == TxInTransaction {
		return "in_transaction"
	}
	return "idle"
}

// BeginOutcome reports what BeginTransaction actually did.
type BeginOutcome int

const (
	// BeginStarted means a new atomic transaction was opened.
	BeginStarted BeginOutcome = iota + 1
	// BeginDegraded means a session was opened but the engine cannot wrap
	// the following writes in one atomic transaction. Each write commits on its own.
	BeginDegraded
	// BeginReused means a transaction was already active and nothing was opened.
	BeginReused
)

func (o BeginOutcome) String() string {
	switch o {
	case BeginStarted:
		return "started"
	case BeginDegraded:
		return "degraded"
	case BeginReused:
		return "reused"
	}
	return "unknown"
}

// UnitOfWork coordinates the transaction of one logical operation.
// It owns the transaction or session handle exclusively and is not safe for concurrent use.
type UnitOfWork interface {
	// BeginTransaction is a no-op returning BeginReused while a transaction is active.
	BeginTransaction(ctx context.Context) (BeginOutcome, error)
	// SaveChanges flushes buffered writes. Writes still become durable only at Commit.
	SaveChanges(ctx context.Context) error
	// Commit is a no-op when idle. On failure it rolls back before returning the error,
	// so the unit is always idle afterwards.
	Commit(ctx context.Context) error
	// Rollback discards uncommitted writes and releases the handle. Idempotent.
	Rollback(ctx context.Context) error
	State() TxState
	// Release rolls back anything still open and frees the handle. It never fails
	// and may be called any number of times.
	Release(ctx context.Context)
}

// Scope bundles one UnitOfWork with the repositories bound to it.
type Scope struct {
	UnitOfWork     UnitOfWork
	Users          UserRepository
	Events         EventRepository
	Participations ParticipationRepository
	Notifications  NotificationRepository
}

// Store hands out scopes for one storage backend. Each logical operation uses its own scope.
type Store interface {
	NewScope() *Scope
}
