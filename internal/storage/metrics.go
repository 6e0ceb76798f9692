package storage

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"eventhub/internal/domain"
)

// Unit-of-work event labels.
const (
	eventCommit       = "commit"
	eventCommitFailed = "commit_failed"
	eventRollback     = "rollback"
)

var unitOfWorkTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "eventhub_unit_of_work_total",
	Help: "Unit of work lifecycle events by backend",
}, []string{"backend", "event"})

// RegisterMetrics registers the storage metrics on the given registry (or default if nil).
func RegisterMetrics(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(unitOfWorkTotal); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return err
		}
	}
	return nil
}

// instrumentedUnitOfWork counts lifecycle transitions of the wrapped unit of work.
// Commit and rollback are only counted for units that opened a real transaction.
type instrumentedUnitOfWork struct {
	domain.UnitOfWork
	backend  string
	degraded bool
}

func instrument(uow domain.UnitOfWork, backend string) domain.UnitOfWork {
	return &instrumentedUnitOfWork{UnitOfWork: uow, backend: backend}
}

func (u *instrumentedUnitOfWork) count(event string) {
	unitOfWorkTotal.WithLabelValues(u.backend, event).Inc()
}

func (u *instrumentedUnitOfWork) BeginTransaction(ctx context.Context) (domain.BeginOutcome, error) {
	outcome, err := u.UnitOfWork.BeginTransaction(ctx)
	if err == nil {
		u.count("begin_" + outcome.String())
		if outcome == domain.BeginDegraded {
			u.degraded = true
		}
	}
	return outcome, err
}

// transactional reports whether the wrapped unit holds a transaction, not just a session.
func (u *instrumentedUnitOfWork) transactional() bool {
	return u.State() == domain.TxInTransaction && !u.degraded
}

func (u *instrumentedUnitOfWork) Commit(ctx context.Context) error {
	active := u.transactional()
	err := u.UnitOfWork.Commit(ctx)
	u.degraded = false
	switch {
	case !active:
	case err != nil:
		u.count(eventCommitFailed)
	default:
		u.count(eventCommit)
	}
	return err
}

func (u *instrumentedUnitOfWork) Rollback(ctx context.Context) error {
	if u.transactional() {
		u.count(eventRollback)
	}
	u.degraded = false
	return u.UnitOfWork.Rollback(ctx)
}

func (u *instrumentedUnitOfWork) Release(ctx context.Context) {
	u.degraded = false
	u.UnitOfWork.Release(ctx)
}
