package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend is an in-memory backend. Safe for concurrent access.
type MemoryBackend struct {
	mu    sync.RWMutex
	kinds map[string]*memoryKind
	log   *logger.Logger
}

type memoryKind struct {
	docs  map[string][]byte
	order []string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(log *logger.Logger) *MemoryBackend {
	return &MemoryBackend{
		kinds: make(map[string]*memoryKind),
		log:   log,
	}
}

// Put stores a copy of data. Overwrites if it already exists.
func (b *MemoryBackend) Put(ctx context.Context, kind, id string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	k, ok := b.kinds[kind]
	if !ok {
		k = &memoryKind{docs: make(map[string][]byte)}
		b.kinds[kind] = k
	}
	if _, exists := k.docs[id]; !exists {
		k.order = append(k.order, id)
	}
	k.docs[id] = append([]byte(nil), data...)
	b.log.Debug("storage: put %s/%s (%d bytes)", kind, id, len(data))
	return nil
}

// Get retrieves a document by ID.
func (b *MemoryBackend) Get(ctx context.Context, kind, id string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	k, ok := b.kinds[kind]
	if !ok {
		return nil, domain.ErrNotFound
	}
	data, ok := k.docs[id]
	if !ok {
		b.log.Debug("storage: %s/%s not found", kind, id)
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes a document by ID.
func (b *MemoryBackend) Delete(ctx context.Context, kind, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	k, ok := b.kinds[kind]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := k.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(k.docs, id)
	for i, existing := range k.order {
		if existing == id {
			k.order = append(k.order[:i], k.order[i+1:]...)
			break
		}
	}
	b.log.Debug("storage: deleted %s/%s", kind, id)
	return nil
}

// List returns all documents of a kind.
func (b *MemoryBackend) List(ctx context.Context, kind string) ([][]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	k, ok := b.kinds[kind]
	if !ok {
		return nil, nil
	}
	out := make([][]byte, 0, len(k.order))
	for _, id := range k.order {
		out = append(out, append([]byte(nil), k.docs[id]...))
	}
	return out, nil
}

// Close is a no-op.
func (b *MemoryBackend) Close() error {
	return nil
}
