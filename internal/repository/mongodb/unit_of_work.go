package mongodb

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventhub/internal/domain"
)

// sessionStarter is satisfied by *mongo.Client.
type sessionStarter interface {
	StartSession(opts ...*options.SessionOptions) (mongo.Session, error)
}

// topologyProbe reports whether the deployment supports multi-document transactions.
type topologyProbe func(ctx context.Context) (bool, error)

type helloResult struct {
	SetName string `bson:"setName"`
	Msg     string `bson:"msg"`
}

// supportsTransactions is true for replica set members and mongos routers.
func (h helloResult) supportsTransactions() bool {
	return h.SetName != "" || h.Msg == "isdbgrid"
}

func helloProbe(client *mongo.Client) topologyProbe {
	return func(ctx context.Context) (bool, error) {
		var res helloResult
		err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&res)
		if err != nil {
			return false, err
		}
		return res.supportsTransactions(), nil
	}
}

// UnitOfWork owns one client session for the duration of a logical operation.
// On standalone servers it degrades to a plain session without a transaction:
// every write then commits on its own and Rollback cannot undo it.
type UnitOfWork struct {
	starter sessionStarter
	probe   topologyProbe
	log     *slog.Logger

	sess  mongo.Session
	inTxn bool
}

// NewUnitOfWork returns an idle UnitOfWork over client.
func NewUnitOfWork(client *mongo.Client, logger *slog.Logger) *UnitOfWork {
	return newUnitOfWork(client, helloProbe(client), logger)
}

func newUnitOfWork(starter sessionStarter, probe topologyProbe, logger *slog.Logger) *UnitOfWork {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWork{
		starter: starter,
		probe:   probe,
		log:     logger.With("unit_of_work", backendName),
	}
}

func (u *UnitOfWork) BeginTransaction(ctx context.Context) (domain.BeginOutcome, error) {
	if u.sess != nil {
		return domain.BeginReused, nil
	}
	sess, err := u.starter.StartSession()
	if err != nil {
		return 0, storeErr("begin transaction", domain.ErrStorageFailure, err)
	}
	supported, err := u.probe(ctx)
	if err != nil {
		sess.EndSession(context.WithoutCancel(ctx))
		return 0, storeErr("begin transaction", domain.ErrStorageFailure, err)
	}
	u.sess = sess

	if !supported {
		u.log.Warn("session opened without transaction, writes apply individually",
			"error", domain.ErrTransactionDegraded)
		return domain.BeginDegraded, nil
	}
	if err := sess.StartTransaction(); err != nil {
		u.endSession(ctx)
		return 0, storeErr("begin transaction", domain.ErrStorageFailure, err)
	}
	u.inTxn = true
	u.log.Debug("transaction started")
	return domain.BeginStarted, nil
}

// SaveChanges does nothing: document writes take effect when issued.
func (u *UnitOfWork) SaveChanges(ctx context.Context) error {
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.sess == nil {
		return nil
	}
	if !u.inTxn {
		u.endSession(ctx)
		return nil
	}
	if err := u.sess.CommitTransaction(ctx); err != nil {
		u.log.Error("commit failed, rolling back", "error", err)
		u.abort(ctx)
		u.endSession(ctx)
		return storeErr("commit", domain.ErrStorageFailure, err)
	}
	u.inTxn = false
	u.endSession(ctx)
	u.log.Debug("transaction committed")
	return nil
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.sess == nil {
		return nil
	}
	var err error
	if u.inTxn {
		u.inTxn = false
		if abortErr := u.sess.AbortTransaction(ctx); abortErr != nil {
			err = storeErr("rollback", domain.ErrStorageFailure, abortErr)
		}
	} else {
		u.log.Debug("rollback without transaction, earlier writes stay applied")
	}
	u.endSession(ctx)
	return err
}

func (u *UnitOfWork) State() domain.TxState {
	if u.sess != nil {
		return domain.TxInTransaction
	}
	return domain.TxIdle
}

func (u *UnitOfWork) Release(ctx context.Context) {
	if u.inTxn {
		u.log.Warn("releasing open transaction, rolling back")
		u.abort(ctx)
	}
	u.endSession(ctx)
}

// abort aborts the open transaction and only logs failures.
func (u *UnitOfWork) abort(ctx context.Context) {
	if !u.inTxn {
		return
	}
	u.inTxn = false
	if err := u.sess.AbortTransaction(context.WithoutCancel(ctx)); err != nil {
		u.log.Warn("abort during cleanup failed", "error", err)
	}
}

// endSession is idempotent; commit failure and disposal may both reach it.
func (u *UnitOfWork) endSession(ctx context.Context) {
	if u.sess == nil {
		return
	}
	sess := u.sess
	u.sess = nil
	u.inTxn = false
	sess.EndSession(context.WithoutCancel(ctx))
}

// sessionContext binds the open transaction to ctx. Without a transaction,
// operations run outside the session and apply immediately.
func (u *UnitOfWork) sessionContext(ctx context.Context) context.Context {
	if u.sess == nil || !u.inTxn {
		return ctx
	}
	return mongo.NewSessionContext(ctx, u.sess)
}
