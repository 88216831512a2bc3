package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory builds the sequence guard configured for this process
type Factory struct {
	redisConfig           config.RedisConfig
	sequenceConfig        config.SequenceConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to a LocalGuard
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a guard factory
func NewFactory(redisCfg config.RedisConfig, seqCfg config.SequenceConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           redisCfg,
		sequenceConfig:        seqCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a NopGuard when locking is disabled, otherwise a RedisGuard.
// The returned close func releases the Redis client.
func (f *Factory) Create() (Guard, func() error, error) {
	noClose := func() error { return nil }
	if !f.sequenceConfig.LockEnabled {
		return NopGuard{}, noClose, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), f.pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !f.allowInMemoryFallback {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		f.logger.Warn("Redis unavailable, sequence guard limited to this process",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err),
		)
		return NewLocalGuard(), noClose, nil
	}

	f.logger.Info("Sequence guard using Redis", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisGuard(client, f.sequenceConfig.LockTTL, f.sequenceConfig.LockWait), client.Close, nil
}
