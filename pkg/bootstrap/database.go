package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ariproxy/internal/config"
	"ariproxy/internal/logger"
	"ariproxy/internal/metering"
	"ariproxy/internal/persistence"
	"ariproxy/pkg/migrations"
)

type DatabaseConnector struct {
	Config *config.Config
	Logger logger.Logger
}

func NewDatabaseConnector(cfg *config.Config, log logger.Logger) *DatabaseConnector {
	return &DatabaseConnector{
		Config: cfg,
		Logger: log,
	}
}

// OpenCallContextStore builds the configured store behind the circuit
// breaker and, when enabled, the metered decorator:
// metered -> circuit breaker -> backend.
func (dc *DatabaseConnector) OpenCallContextStore(ctx context.Context, metrics metering.Teller) (persistence.KeyValueStore[string, string], error) {
	cfg := dc.Config.Persistence

	var (
		store persistence.KeyValueStore[string, string]
		err   error
	)
	switch strings.ToLower(cfg.Type) {
	case "redis":
		store, err = dc.openRedis(ctx)
	case "mongodb":
		store, err = dc.openMongoDB(ctx)
	case "postgres":
		store, err = dc.openPostgreSQL(ctx)
	case "memory", "":
		store = persistence.NewMemoryStore[string, string](cfg.TTL)
	default:
		return nil, fmt.Errorf("unsupported persistence type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	store = persistence.NewCircuitBreakerStore(store, "persistence-"+storeName(cfg.Type), dc.Config.CircuitBreaker)
	if cfg.Metered {
		store = persistence.NewMeteredStore(store, metrics)
	}

	dc.Logger.Infow("Call context store ready",
		"type", storeName(cfg.Type),
		"ttl", cfg.TTL,
		"metered", cfg.Metered,
		"circuit_breaker", dc.Config.CircuitBreaker.Enabled,
	)
	return store, nil
}

func (dc *DatabaseConnector) openRedis(ctx context.Context) (*persistence.RedisStore, error) {
	client, err := dc.InitRedis(ctx)
	if err != nil {
		return nil, err
	}
	return persistence.NewRedisStore(client, dc.Config.Persistence.TTL), nil
}

func (dc *DatabaseConnector) openMongoDB(ctx context.Context) (*persistence.MongoStore, error) {
	cfg := dc.Config.Persistence.MongoDB

	client, err := dc.InitMongoDB(ctx)
	if err != nil {
		return nil, err
	}
	if err := migrations.EnsureCallContextIndexes(ctx, client.Database(cfg.Database), cfg.Collection); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return persistence.NewMongoStore(client, cfg.Database, cfg.Collection, dc.Config.Persistence.TTL), nil
}

func (dc *DatabaseConnector) openPostgreSQL(ctx context.Context) (*persistence.PostgresStore, error) {
	db, err := dc.InitPostgreSQL(ctx)
	if err != nil {
		return nil, err
	}
	if dc.Config.Persistence.Postgres.RunMigrations {
		if err := migrations.MigratePostgres(db); err != nil {
			db.Close()
			return nil, err
		}
		dc.Logger.Info("PostgreSQL migrations applied")
	}
	return persistence.NewPostgresStore(db, dc.Config.Persistence.TTL), nil
}

func (dc *DatabaseConnector) InitRedis(ctx context.Context) (*redis.Client, error) {
	cfg := dc.Config.Persistence.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	dc.Logger.Info("Redis connected successfully")
	return rdb, nil
}

func (dc *DatabaseConnector) InitPostgreSQL(ctx context.Context) (*sql.DB, error) {
	cfg := dc.Config.Persistence.Postgres
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dc.Logger.Info("PostgreSQL connected successfully")
	return db, nil
}

func (dc *DatabaseConnector) InitMongoDB(ctx context.Context) (*mongo.Client, error) {
	mongoOpts := options.Client().ApplyURI(dc.Config.Persistence.MongoDB.URI)
	mongoClient, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := mongoClient.Ping(ctx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dc.Logger.Info("MongoDB connected successfully")
	return mongoClient, nil
}

func storeName(persistenceType string) string {
	if persistenceType == "" {
		return "memory"
	}
	return strings.ToLower(persistenceType)
}
