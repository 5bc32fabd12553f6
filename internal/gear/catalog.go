// Package gear keeps the user's grinders and brewers.
package gear

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// Storage kinds.
const (
	GrinderKind = "grinders"
	BrewerKind  = "brewers"
)

// Catalog stores grinders and brewers.
type Catalog struct {
	grinders *storage.Collection[domain.Grinder, *domain.Grinder]
	brewers  *storage.Collection[domain.Brewer, *domain.Brewer]
	log      *logger.Logger
}

// NewCatalog creates a gear catalog over the given backend.
func NewCatalog(backend storage.Backend, log *logger.Logger) *Catalog {
	return &Catalog{
		grinders: storage.NewCollection[domain.Grinder](backend, GrinderKind),
		brewers:  storage.NewCollection[domain.Brewer](backend, BrewerKind),
		log:      log,
	}
}

// Grinders returns the grinder repository.
func (c *Catalog) Grinders() *Repo[domain.Grinder, *domain.Grinder] {
	return &Repo[domain.Grinder, *domain.Grinder]{records: c.grinders, validate: ValidateGrinder, log: c.log}
}

// Brewers returns the brewer repository.
func (c *Catalog) Brewers() *Repo[domain.Brewer, *domain.Brewer] {
	return &Repo[domain.Brewer, *domain.Brewer]{records: c.brewers, validate: ValidateBrewer, log: c.log}
}

// Repo is a validated view of one gear collection.
type Repo[T any, PT storage.Record[T]] struct {
	records  *storage.Collection[T, PT]
	validate func(*T) error
	log      *logger.Logger
}

// List returns every item.
func (r *Repo[T, PT]) List(ctx context.Context) ([]*T, error) {
	return r.records.List(ctx)
}

// Get returns an item by ID.
func (r *Repo[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	return r.records.Get(ctx, id)
}

// Create validates and stores a new item.
func (r *Repo[T, PT]) Create(ctx context.Context, item *T) error {
	if err := r.validate(item); err != nil {
		return err
	}
	if err := r.records.Create(ctx, item); err != nil {
		return fmt.Errorf("creating %s: %w", r.records.Kind(), err)
	}
	r.log.Info("%s created: %s", r.records.Kind(), PT(item).Metadata().ID)
	return nil
}

// Update validates and replaces an existing item.
func (r *Repo[T, PT]) Update(ctx context.Context, item *T) error {
	if err := r.validate(item); err != nil {
		return err
	}
	return r.records.Update(ctx, item)
}

// Delete removes an item.
func (r *Repo[T, PT]) Delete(ctx context.Context, id string) error {
	if err := r.records.Delete(ctx, id); err != nil {
		return err
	}
	r.log.Info("%s deleted: %s", r.records.Kind(), id)
	return nil
}

// ValidateGrinder trims the name and checks the setting range.
func ValidateGrinder(g *domain.Grinder) error {
	g.Name = strings.TrimSpace(g.Name)
	var errs []error
	if g.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if g.MinSetting < 0 || g.MaxSetting < 0 {
		errs = append(errs, errors.New("settings must not be negative"))
	}
	if g.MaxSetting != 0 && g.MinSetting > g.MaxSetting {
		errs = append(errs, fmt.Errorf("minSetting %d is above maxSetting %d", g.MinSetting, g.MaxSetting))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// ValidateBrewer trims the name and checks the capacity.
func ValidateBrewer(b *domain.Brewer) error {
	b.Name = strings.TrimSpace(b.Name)
	var errs []error
	if b.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if b.CapacityML < 0 {
		errs = append(errs, errors.New("capacityMl must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalid, errors.Join(errs...))
	}
	return nil
}
