package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ Backend = (*RedisBackend)(nil)

// RedisOption configures the Redis backend.
type RedisOption func(*RedisBackend)

// WithTTL sets the expiration for stored documents. Zero means no expiry.
func WithTTL(ttl time.Duration) RedisOption {
	return func(b *RedisBackend) {
		b.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(b *RedisBackend) {
		b.prefix = prefix
	}
}

// RedisBackend stores documents as JSON strings with a sorted-set index per
// kind scored by insertion time.
type RedisBackend struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisBackend connects to a Redis server.
func NewRedisBackend(addr, password string, db int, log *logger.Logger, opts ...RedisOption) *RedisBackend {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisBackendFromClient(client, log, opts...)
}

// NewRedisBackendFromClient wraps an existing client.
func NewRedisBackendFromClient(client *backend.Client, log *logger.Logger, opts ...RedisOption) *RedisBackend {
	b := &RedisBackend{
		client: client,
		prefix: "ottobrew:",
		log:    log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Ping checks connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) key(kind, id string) string {
	return b.prefix + kind + ":" + id
}

func (b *RedisBackend) indexKey(kind string) string {
	return b.prefix + kind + ":index"
}

// Put writes the document and indexes it. The index score is only set on
// first insert so List keeps creation order.
func (b *RedisBackend) Put(ctx context.Context, kind, id string, data []byte) error {
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.key(kind, id), data, b.ttl)
	pipe.ZAddNX(ctx, b.indexKey(kind), backend.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: id,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storage: redis put %s/%s: %w", kind, id, err)
	}
	b.log.Debug("storage: redis put %s/%s (%d bytes)", kind, id, len(data))
	return nil
}

// Get retrieves a document by ID.
func (b *RedisBackend) Get(ctx context.Context, kind, id string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(kind, id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage: redis get %s/%s: %w", kind, id, err)
	}
	return data, nil
}

// Delete removes the document and its index entry.
func (b *RedisBackend) Delete(ctx context.Context, kind, id string) error {
	pipe := b.client.TxPipeline()
	del := pipe.Del(ctx, b.key(kind, id))
	pipe.ZRem(ctx, b.indexKey(kind), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("storage: redis delete %s/%s: %w", kind, id, err)
	}
	if del.Val() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns documents in creation order. Index entries whose document
// has expired are pruned as they are found.
func (b *RedisBackend) List(ctx context.Context, kind string) ([][]byte, error) {
	ids, err := b.client.ZRange(ctx, b.indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: redis list %s: %w", kind, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.key(kind, id)
	}
	vals, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: redis mget %s: %w", kind, err)
	}

	out := make([][]byte, 0, len(vals))
	var stale []any
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		out = append(out, []byte(s))
	}
	if len(stale) > 0 {
		if err := b.client.ZRem(ctx, b.indexKey(kind), stale...).Err(); err != nil {
			b.log.Warn("storage: pruning %d stale %s entries: %v", len(stale), kind, err)
		}
	}
	return out, nil
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
