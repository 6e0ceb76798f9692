// Package storage selects the persistence backend from configuration and hands out
// scopes of repositories bound to one unit of work.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"eventhub/config"
	"eventhub/internal/domain"
	"eventhub/internal/repository/mongodb"
	"eventhub/internal/repository/postgres"
)

// backend is one concrete storage engine.
type backend interface {
	newScope() *domain.Scope
	migrate(ctx context.Context) error
	ping(ctx context.Context) error
	close(ctx context.Context) error
}

// Store is the single entry point to the configured backend. It is safe for concurrent
// use; the scopes it returns are not.
type Store struct {
	provider string
	backend  backend
	log      *slog.Logger
}

var _ domain.Store = (*Store)(nil)

// Open connects to the backend named by cfg.StorageProvider and verifies it is reachable.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	provider, err := config.NormalizeProvider(cfg.StorageProvider)
	if err != nil {
		return nil, err
	}

	var b backend
	switch provider {
	case config.ProviderPostgres:
		b, err = openPostgres(ctx, cfg, logger)
	case config.ProviderMongo:
		b, err = openMongo(ctx, cfg, logger)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("storage opened", "provider", provider)
	return newStore(provider, b, logger), nil
}

func newStore(provider string, b backend, logger *slog.Logger) *Store {
	return &Store{provider: provider, backend: b, log: logger}
}

// Provider returns the canonical name of the selected backend.
func (s *Store) Provider() string { return s.provider }

// NewScope returns repositories sharing a fresh, idle unit of work.
func (s *Store) NewScope() *domain.Scope {
	scope := s.backend.newScope()
	scope.UnitOfWork = instrument(scope.UnitOfWork, s.provider)
	return scope
}

// Migrate creates tables or indexes. It is safe to run repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.backend.migrate(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", s.provider, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.backend.ping(ctx); err != nil {
		return domain.NewStoreError(s.provider, "ping", domain.ErrStorageFailure, err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.backend.close(ctx)
}

type postgresBackend struct {
	db  *sql.DB
	log *slog.Logger
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*postgresBackend, error) {
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &postgresBackend{db: db, log: logger}, nil
}

func (b *postgresBackend) newScope() *domain.Scope {
	return postgres.NewScope(b.db, b.log)
}

func (b *postgresBackend) migrate(ctx context.Context) error {
	return postgres.Migrate(ctx, b.db)
}

func (b *postgresBackend) ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

func (b *postgresBackend) close(context.Context) error {
	return b.db.Close()
}

type mongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
	log    *slog.Logger
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongoBackend, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.OperationTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &mongoBackend{client: client, db: client.Database(cfg.MongoDatabase), log: logger}, nil
}

func (b *mongoBackend) newScope() *domain.Scope {
	return mongodb.NewScope(b.client, b.db, b.log)
}

func (b *mongoBackend) migrate(ctx context.Context) error {
	return mongodb.EnsureIndexes(ctx, b.db)
}

func (b *mongoBackend) ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b *mongoBackend) close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}
