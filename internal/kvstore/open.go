package kvstore

import (
	"context"
	"fmt"

	"codemarket/internal/config"
	"codemarket/internal/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open builds the store selected by cfg.Store.Backend, running migrations for
// the SQL backends
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	logger.Info("Opening key-value store", zap.String("backend", cfg.Store.Backend))

	switch cfg.Store.Backend {
	case config.StoreBackendMemory, "":
		return NewMemoryStore(), nil

	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisStore(client, cfg.Store.KeyPrefix), nil

	case config.StoreBackendPostgres:
		db, err := database.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db, database.DialectPostgres, logger); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database health check", zap.Any("health", database.Health(ctx, db)))
		return NewSQLStore(db, PlaceholderDollar, true), nil

	case config.StoreBackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db, database.DialectSQLite, logger); err != nil {
			db.Close()
			return nil, err
		}
		return NewSQLStore(db, PlaceholderQuestion, true), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
