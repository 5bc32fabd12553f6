package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func setupRedis(t *testing.T, opts ...RedisOption) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	b := NewRedisBackendFromClient(client, logger.NewNop(), opts...)
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestRedisBackendContract(t *testing.T) {
	b, _ := setupRedis(t)
	require.NoError(t, b.Ping(context.Background()))
	runBackendContract(t, b)
}

func TestRedisBackendPrefix(t *testing.T) {
	b, mr := setupRedis(t, WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "brewers", "v60", []byte(`{}`)))

	assert.True(t, mr.Exists("custom:app:brewers:v60"))
	assert.True(t, mr.Exists("custom:app:brewers:index"))
}

func TestRedisBackendTTLPrunesIndex(t *testing.T) {
	b, mr := setupRedis(t, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, b.Put(ctx, "recipes", "r1", []byte(`{"id":"r1"}`)))
	mr.FastForward(2 * time.Minute)

	_, err := b.Get(ctx, "recipes", "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err := b.List(ctx, "recipes")
	require.NoError(t, err)
	assert.Empty(t, docs)

	members, err := mr.ZMembers("ottobrew:recipes:index")
	if err == nil {
		assert.Empty(t, members)
	}
}

func TestRedisCollection(t *testing.T) {
	b, _ := setupRedis(t)
	c := NewCollection[domain.Grinder](b, "grinders")
	ctx := context.Background()

	g := &domain.Grinder{Name: "Comandante C40", Kind: "hand"}
	require.NoError(t, c.Create(ctx, g))

	got, err := c.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Comandante C40", got.Name)
	assert.False(t, got.CreatedAt.IsZero())
}
