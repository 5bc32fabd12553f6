// Package storage provides the JSON record store used for recipes, grinders
// and brewers. A Backend holds raw documents; a Collection adds typing,
// IDs and timestamps on top.
package storage

import "context"

// Backend stores opaque JSON documents grouped by kind.
type Backend interface {
	// Put writes a document, replacing any existing one.
	Put(ctx context.Context, kind, id string, data []byte) error
	// Get returns domain.ErrNotFound when the document does not exist.
	Get(ctx context.Context, kind, id string) ([]byte, error)
	// Delete returns domain.ErrNotFound when the document does not exist.
	Delete(ctx context.Context, kind, id string) error
	// List returns every document of a kind in insertion order.
	List(ctx context.Context, kind string) ([][]byte, error)
	Close() error
}
