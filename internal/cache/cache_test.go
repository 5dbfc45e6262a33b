package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedJob struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()
	loads := 0

	load := func(dest *cachedJob) func() error {
		return func() error {
			loads++
			*dest = cachedJob{ID: 3, Title: "Backend Engineer"}
			return nil
		}
	}

	var first cachedJob
	require.NoError(t, Aside(ctx, JobKey(3), &first, JobTTL, load(&first)))
	assert.Equal(t, "Backend Engineer", first.Title)
	assert.True(t, mr.Exists("job:3"))

	var second cachedJob
	require.NoError(t, Aside(ctx, JobKey(3), &second, JobTTL, load(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestAside_LoadErrorNotCached(t *testing.T) {
	mr := setupRedis(t)
	var dest cachedJob

	err := Aside(context.Background(), JobKey(9), &dest, JobTTL, func() error {
		return errors.New("not found")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("job:9"))
}

func TestAside_WithoutRedisRunsLoad(t *testing.T) {
	SetClient(nil)
	var dest cachedJob
	called := false

	err := Aside(context.Background(), JobKey(1), &dest, JobTTL, func() error {
		called = true
		dest.ID = 1
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, uint(1), dest.ID)
}

func TestInvalidateJob(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, JobKey(4), cachedJob{ID: 4}, time.Minute))
	require.True(t, mr.Exists("job:4"))

	InvalidateJob(ctx, 4)
	assert.False(t, mr.Exists("job:4"))

	var dest cachedJob
	assert.ErrorIs(t, GetJSON(ctx, JobKey(4), &dest), ErrMiss)
}

func TestSetJSON_TTL(t *testing.T) {
	mr := setupRedis(t)
	require.NoError(t, SetJSON(context.Background(), CategoriesKey, []string{"IT"}, CategoriesTTL))
	assert.Equal(t, CategoriesTTL, mr.TTL(CategoriesKey))

	InvalidateCategories(context.Background())
	assert.False(t, mr.Exists(CategoriesKey))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := Connect(ctx, mr.Addr())
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	rdb, err = Connect(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, rdb.Close())

	_, err = Connect(ctx, "  ")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Connect(ctx, "redis://%zz")
	assert.Error(t, err)
}

func TestInitRedis_UnreachableLeavesClientNil(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	InitRedis(addr)
	t.Cleanup(func() { SetClient(nil) })
	assert.Nil(t, GetClient())
}
