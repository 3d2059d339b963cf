package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is the client-local key-value store the session is persisted in.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

var ErrNotFound = errors.New("key not found")

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Store, log *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverSQLite:
		s, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Debug("opened sqlite store", zap.String("path", cfg.Path))
		return s, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		log.Debug("connected to redis", zap.String("addr", cfg.RedisAddr))
		return NewRedisStore(client, cfg.Namespace), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
