package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hashicorp/go-memdb"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newMemStore(t testing.TB) *MemStore {
	db, err := memdb.NewMemDB(Schema())
	require.NoError(t, err)
	return NewMemStore(db)
}

func newTestLimiter(t testing.TB, max int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := New("test", newMemStore(t), max, window)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(t, 2, 5*time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d within limit", i+1)
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "third request rejected")

	// other keys are independent
	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	wait, err := l.TimeUntilReset(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, wait)

	clock.Advance(3*time.Minute + time.Millisecond)
	ok, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "window reset")
}

func TestLimiter_TimeUntilResetUnknownKey(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	wait, err := l.TimeUntilReset(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestLimiter_Check(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(t, 1, time.Minute)

	require.NoError(t, l.Check(ctx, "k"))
	clock.Advance(15 * time.Second)

	err := l.Check(ctx, "k")
	le, ok := IsLimitExceeded(err)
	require.True(t, ok)
	assert.Equal(t, "test", le.Limiter)
	assert.Equal(t, 45*time.Second, le.RetryAfter)
	assert.Equal(t, 45, le.RetryAfterSeconds())
}

func TestLimiter_Concurrent(t *testing.T) {
	ctx := context.Background()
	l := New("burst", newMemStore(t), 5, time.Minute)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := l.Allow(ctx, "same"); err == nil && ok {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(5), allowed)
}

func TestLimiter_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("call N+1 inside the window is rejected, first call after it succeeds", prop.ForAll(
		func(n int, windowSecs int) bool {
			ctx := context.Background()
			window := time.Duration(windowSecs) * time.Second
			l, clock := newTestLimiter(t, n, window)

			for i := 0; i < n; i++ {
				if ok, err := l.Allow(ctx, "key"); err != nil || !ok {
					return false
				}
			}
			if ok, err := l.Allow(ctx, "key"); err != nil || ok {
				return false
			}
			clock.Advance(window + time.Nanosecond)
			ok, err := l.Allow(ctx, "key")
			return err == nil && ok
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 3600),
	))

	properties.TestingRun(t)
}

func TestMemStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_, _, err := store.Hit(ctx, "short", 1, time.Minute, now)
	require.NoError(t, err)
	_, _, err = store.Hit(ctx, "long", 1, time.Hour, now)
	require.NoError(t, err)

	n, err := store.DeleteExpired(now.Add(30 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok, err := store.ResetAt(ctx, "short", now)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.ResetAt(ctx, "long", now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStoreFromURL("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	l := New("redis", store, 2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists("ratelimit:redis:1.2.3.4"))

	wait, err := l.TimeUntilReset(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Greater(t, wait, 59*time.Second)
	assert.LessOrEqual(t, wait, time.Minute)

	mr.FastForward(20 * time.Second)
	err = l.Check(ctx, "1.2.3.4")
	le, limited := IsLimitExceeded(err)
	require.True(t, limited)
	assert.InDelta(t, 40, le.RetryAfterSeconds(), 1)

	mr.FastForward(40*time.Second + time.Millisecond)
	wait, err = l.TimeUntilReset(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.Zero(t, wait)

	ok, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "window reset")
}

func TestRedisStore_Properties(t *testing.T) {
	store, mr := newRedisStore(t)
	properties := gopter.NewProperties(nil)

	run := 0
	properties.Property("call N+1 inside the window is rejected, first call after it succeeds", prop.ForAll(
		func(n int, windowSecs int) bool {
			ctx := context.Background()
			run++
			key := fmt.Sprintf("key-%d", run)
			window := time.Duration(windowSecs) * time.Second
			l := New("prop", store, n, window)

			for i := 0; i < n; i++ {
				if ok, err := l.Allow(ctx, key); err != nil || !ok {
					return false
				}
			}
			if ok, err := l.Allow(ctx, key); err != nil || ok {
				return false
			}
			mr.FastForward(window + time.Millisecond)
			ok, err := l.Allow(ctx, key)
			return err == nil && ok
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 3600),
	))

	properties.TestingRun(t)
}

func TestRedisStore_Unreachable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := New("down", store, 1, time.Minute).Allow(context.Background(), "k")
	assert.Error(t, err)
}
