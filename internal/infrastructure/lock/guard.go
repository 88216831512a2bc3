// Package lock provides the guards that serialize identifier minting per
// (class, scope) key, across processes through Redis or within one process.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// Guard serializes work on a key. The returned release func must be called exactly once.
type Guard interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// NopGuard never blocks; the database unique index is then the only guard
type NopGuard struct{}

// Lock implements Guard
func (NopGuard) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

// LocalGuard serializes by key within one process. A key's slot lives only
// while someone holds or waits on it.
type LocalGuard struct {
	mu    sync.Mutex
	locks map[string]*localSlot
}

type localSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalGuard creates an in-process guard
func NewLocalGuard() *LocalGuard {
	return &LocalGuard{locks: make(map[string]*localSlot)}
}

func (g *LocalGuard) acquire(key string) *localSlot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.locks[key]
	if !ok {
		s = &localSlot{ch: make(chan struct{}, 1)}
		g.locks[key] = s
	}
	s.refs++
	return s
}

func (g *LocalGuard) drop(key string, s *localSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(g.locks, key)
	}
}

// Lock implements Guard; it gives up when ctx is done
func (g *LocalGuard) Lock(ctx context.Context, key string) (func(), error) {
	s := g.acquire(key)
	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				g.drop(key, s)
			})
		}, nil
	case <-ctx.Done():
		g.drop(key, s)
		return nil, ctx.Err()
	}
}

func (g *LocalGuard) keys() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}

// RedisGuard serializes by key across every instance sharing the Redis server
type RedisGuard struct {
	locker    *redislock.Client
	ttl       time.Duration
	wait      time.Duration
	keyPrefix string
}

// NewRedisGuard wraps an existing client. ttl is the lease, wait bounds how
// long Lock retries a busy key.
func NewRedisGuard(client redis.UniversalClient, ttl, wait time.Duration) *RedisGuard {
	return &RedisGuard{
		locker:    redislock.New(client),
		ttl:       ttl,
		wait:      wait,
		keyPrefix: "lock:sequence:",
	}
}

// Lock implements Guard. A key still busy after the wait window surfaces as a conflict.
func (g *RedisGuard) Lock(ctx context.Context, key string) (func(), error) {
	obtainCtx, cancel := context.WithTimeout(ctx, g.wait)
	defer cancel()

	l, err := g.locker.Obtain(obtainCtx, g.keyPrefix+key, g.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, shared.Conflict(fmt.Sprintf("Identifier allocation for %s is busy, retry shortly", key))
	}
	if err != nil {
		return nil, fmt.Errorf("obtain sequence lock %s: %w", key, err)
	}
	return func() {
		// the lease expires on its own if release fails
		_ = l.Release(context.Background())
	}, nil
}
