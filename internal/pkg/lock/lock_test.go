package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestRedis_ObtainRelease(t *testing.T) {
	rdb := newRedisClient(t)
	ctx := context.Background()
	l := NewRedis(rdb, WithWait(0))

	release, err := l.Obtain(ctx, "account:1", time.Second)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "account:1", time.Second)
	assert.ErrorIs(t, err, ErrNotObtained)

	other, err := l.Obtain(ctx, "account:2", time.Second)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	assert.ErrorIs(t, release(ctx), ErrNotHeld)

	again, err := l.Obtain(ctx, "account:1", time.Second)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestRedis_ObtainWaitsForRelease(t *testing.T) {
	rdb := newRedisClient(t)
	ctx := context.Background()
	l := NewRedis(rdb, WithWait(2*time.Second))

	release, err := l.Obtain(ctx, "account:1", 5*time.Second)
	require.NoError(t, err)

	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = release(ctx)
	}()

	next, err := l.Obtain(ctx, "account:1", time.Second)
	require.NoError(t, err)
	require.NoError(t, next(ctx))
}

func TestRedis_ExpiredLeaseCannotReleaseNewHolder(t *testing.T) {
	rdb := newRedisClient(t)
	ctx := context.Background()
	l := NewRedis(rdb, WithWait(time.Second))

	stale, err := l.Obtain(ctx, "account:1", 100*time.Millisecond)
	require.NoError(t, err)

	fresh, err := l.Obtain(ctx, "account:1", 5*time.Second)
	require.NoError(t, err)

	assert.ErrorIs(t, stale(ctx), ErrNotHeld)
	assert.Equal(t, int64(1), rdb.Exists(ctx, "lock:account:1").Val())
	require.NoError(t, fresh(ctx))
}

func TestRedis_MutualExclusion(t *testing.T) {
	rdb := newRedisClient(t)
	ctx := context.Background()
	l := NewRedis(rdb, WithPrefix("test:"), WithWait(5*time.Second))

	var inside, maxInside int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Obtain(ctx, "k", 5*time.Second)
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
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			assert.NoError(t, release(ctx))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}
