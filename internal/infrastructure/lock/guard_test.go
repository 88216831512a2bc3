package lock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopGuard(t *testing.T) {
	release, err := NopGuard{}.Lock(context.Background(), "PO:WH0001-PO-2601")
	require.NoError(t, err)
	release()
}

func TestLocalGuard(t *testing.T) {
	t.Run("serializes the same key", func(t *testing.T) {
		g := NewLocalGuard()
		var inside, maxInside int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := g.Lock(context.Background(), "NODE:WH")
				if !assert.NoError(t, err) {
					return
				}
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				release()
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), maxInside)
	})

	t.Run("different keys do not block", func(t *testing.T) {
		g := NewLocalGuard()
		r1, err := g.Lock(context.Background(), "SKU:KMN")
		require.NoError(t, err)
		defer r1()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		r2, err := g.Lock(ctx, "SKU:BLT")
		require.NoError(t, err)
		r2()
	})

	t.Run("gives up when context ends", func(t *testing.T) {
		g := NewLocalGuard()
		release, err := g.Lock(context.Background(), "UOM:UOM")
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = g.Lock(ctx, "UOM:UOM")
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		release()
		release()
		again, err := g.Lock(context.Background(), "UOM:UOM")
		require.NoError(t, err)
		again()
	})

	t.Run("idle keys are forgotten", func(t *testing.T) {
		g := NewLocalGuard()
		for m := 1; m <= 12; m++ {
			release, err := g.Lock(context.Background(), fmt.Sprintf("PO:WH0001-PO-26%02d", m))
			require.NoError(t, err)
			release()
		}
		assert.Zero(t, g.keys())

		held, err := g.Lock(context.Background(), "PO:WH0001-PO-2601")
		require.NoError(t, err)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = g.Lock(ctx, "PO:WH0001-PO-2601")
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, g.keys())

		held()
		assert.Zero(t, g.keys())
	})
}

func TestFactory_Create(t *testing.T) {
	unreachable := config.RedisConfig{Host: "127.0.0.1", Port: 1}

	t.Run("disabled yields nop guard", func(t *testing.T) {
		guard, closeFn, err := NewFactory(unreachable, config.SequenceConfig{}).Create()
		require.NoError(t, err)
		assert.IsType(t, NopGuard{}, guard)
		assert.NoError(t, closeFn())
	})

	t.Run("unreachable redis falls back to local guard", func(t *testing.T) {
		f := NewFactory(unreachable, config.SequenceConfig{LockEnabled: true})
		f.pingTimeout = 200 * time.Millisecond
		guard, _, err := f.Create()
		require.NoError(t, err)
		assert.IsType(t, &LocalGuard{}, guard)
	})

	t.Run("fallback can be disabled", func(t *testing.T) {
		f := NewFactory(unreachable, config.SequenceConfig{LockEnabled: true}, WithInMemoryFallback(false))
		f.pingTimeout = 200 * time.Millisecond
		_, _, err := f.Create()
		assert.Error(t, err)
	})
}
