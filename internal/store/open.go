package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/learncore/internal/config"
)

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Store, log *zap.Logger) (KV, error) {
	switch cfg.Backend {
	case "", "sqlite":
		log.Debug("opening sqlite store", zap.String("path", cfg.DBPath))
		return NewSQLiteStore(cfg.DBPath)
	case "memory":
		log.Debug("opening in-memory store")
		return NewMemoryStore(0), nil
	case "redis":
		log.Debug("opening redis store", zap.String("prefix", cfg.RedisPrefix))
		return NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q (valid: sqlite, memory, redis)", cfg.Backend)
	}
}
