package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Store bundles the repositories of one backend with the function that releases it.
type Store struct {
	Users       UserRepository
	ResetTokens PasswordResetTokenRepository

	close func(ctx context.Context) error
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// StoreConfig selects and configures the backend.
type StoreConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
}

// NewStore opens the backend named by cfg.Driver.
func NewStore(ctx context.Context, logger *zerolog.Logger, cfg StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case DriverMongo:
		return NewMongoStore(ctx, logger, cfg.MongoURI, cfg.MongoDatabase)
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	case DriverMemory:
		return NewMemoryBackedStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

func NewMongoStore(ctx context.Context, logger *zerolog.Logger, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)

	return &Store{
		Users:       NewUserMongoRepository(ctx, logger, db),
		ResetTokens: NewPasswordResetTokenMongoRepository(ctx, logger, db),
		close:       client.Disconnect,
	}, nil
}

func NewPostgresStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{
		Users:       NewUserPostgresRepository(db),
		ResetTokens: NewPasswordResetTokenPostgresRepository(db),
		close:       func(context.Context) error { return db.Close() },
	}, nil
}

func NewMemoryBackedStore() *Store {
	mem := NewMemoryStore()
	return &Store{
		Users:       mem,
		ResetTokens: mem,
		close:       mem.Close,
	}
}
