package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Meta is embedded in every stored record. The store fills it in.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Metadata returns the record metadata for the store to stamp.
func (m *Meta) Metadata() *Meta {
	return m
}

// NewID creates a short random hex ID.
func NewID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fallback -- should never happen.
		return fmt.Sprintf("id-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b)
}
