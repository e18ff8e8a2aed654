package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"ppv-marketplace/internal/domain/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]repositories.EntitlementCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ldb, err := NewLevelDBMemory()
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	return map[string]repositories.EntitlementCache{
		"memory":  NewMemoryCache(),
		"redis":   NewRedisCache(rdb),
		"leveldb": ldb,
	}
}

func TestMarkGrantedIsIdempotent(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, c.MarkGranted(ctx, "0xabc_QmA"))
			require.NoError(t, c.MarkGranted(ctx, "0xabc_QmA"))

			ok, err := c.IsGranted(ctx, "0xabc_QmA")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = c.IsGranted(ctx, "0xabc_QmB")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestClearAllForgetsEveryGrant(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			keys := []string{"v_QmA", "v_QmB", "w_QmA"}
			for _, k := range keys {
				require.NoError(t, c.MarkGranted(ctx, k))
			}
			require.NoError(t, c.ClearAll(ctx))
			for _, k := range keys {
				ok, err := c.IsGranted(ctx, k)
				require.NoError(t, err)
				assert.False(t, ok, k)
			}
		})
	}
}

func TestConcurrentMarksDoNotInterfere(t *testing.T) {
	for name, c := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, c.MarkGranted(ctx, fmt.Sprintf("key-%d", i)))
				}(i)
			}
			wg.Wait()
			for i := 0; i < 50; i++ {
				ok, err := c.IsGranted(ctx, fmt.Sprintf("key-%d", i))
				require.NoError(t, err)
				assert.True(t, ok)
			}
		})
	}
}

func TestLevelDBGrantedListing(t *testing.T) {
	ldb, err := NewLevelDBMemory()
	require.NoError(t, err)
	defer ldb.Close()
	ctx := context.Background()

	require.NoError(t, ldb.MarkGranted(ctx, "b"))
	require.NoError(t, ldb.MarkGranted(ctx, "a"))
	got, err := ldb.Granted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}
