package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// Record is satisfied by pointers to types embedding domain.Meta.
type Record[T any] interface {
	*T
	Metadata() *domain.Meta
}

// Collection is a typed view of one kind in a Backend.
type Collection[T any, PT Record[T]] struct {
	kind    string
	backend Backend
	now     func() time.Time
}

// NewCollection creates a collection for kind.
func NewCollection[T any, PT Record[T]](backend Backend, kind string) *Collection[T, PT] {
	return &Collection[T, PT]{
		kind:    kind,
		backend: backend,
		now:     time.Now,
	}
}

// Kind returns the collection's kind name.
func (c *Collection[T, PT]) Kind() string {
	return c.kind
}

// List returns every record in creation order.
func (c *Collection[T, PT]) List(ctx context.Context) ([]*T, error) {
	docs, err := c.backend.List(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c.kind, err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

// Get returns a record by ID.
func (c *Collection[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := c.backend.Get(ctx, c.kind, id)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("decoding %s %s: %w", c.kind, id, err)
	}
	return &rec, nil
}

// Create stores a new record, assigning an ID if it has none and stamping
// both timestamps. Creating over an existing ID fails.
func (c *Collection[T, PT]) Create(ctx context.Context, rec *T) error {
	meta := PT(rec).Metadata()
	if meta.ID == "" {
		meta.ID = domain.NewID()
	} else if _, err := c.backend.Get(ctx, c.kind, meta.ID); err == nil {
		return fmt.Errorf("%s %s: %w", c.kind, meta.ID, domain.ErrAlreadyExists)
	}
	now := c.now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	return c.put(ctx, rec)
}

// Update replaces an existing record. CreatedAt is preserved from the
// stored copy and UpdatedAt is bumped.
func (c *Collection[T, PT]) Update(ctx context.Context, rec *T) error {
	meta := PT(rec).Metadata()
	existing, err := c.Get(ctx, meta.ID)
	if err != nil {
		return err
	}
	meta.CreatedAt = PT(existing).Metadata().CreatedAt
	meta.UpdatedAt = c.now().UTC()
	return c.put(ctx, rec)
}

// Delete removes a record by ID.
func (c *Collection[T, PT]) Delete(ctx context.Context, id string) error {
	return c.backend.Delete(ctx, c.kind, id)
}

func (c *Collection[T, PT]) put(ctx context.Context, rec *T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.kind, err)
	}
	return c.backend.Put(ctx, c.kind, PT(rec).Metadata().ID, data)
}
