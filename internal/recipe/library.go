// Package recipe provides the recipe library: validation and derived
// amounts on top of a storage collection, plus the built-in recipes.
package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// Kind is the storage kind for recipes.
const Kind = "recipes"

// Compile-time interface check.
var _ domain.RecipeSource = (*Library)(nil)

// Library stores and validates recipes.
type Library struct {
	records *storage.Collection[domain.Recipe, *domain.Recipe]
	log     *logger.Logger
}

// NewLibrary creates a recipe library over the given backend.
func NewLibrary(backend storage.Backend, log *logger.Logger) *Library {
	return &Library{
		records: storage.NewCollection[domain.Recipe](backend, Kind),
		log:     log,
	}
}

// List returns all recipes.
func (l *Library) List(ctx context.Context) ([]*domain.Recipe, error) {
	return l.records.List(ctx)
}

// Summaries returns lightweight views of all recipes.
func (l *Library) Summaries(ctx context.Context) ([]domain.RecipeSummary, error) {
	all, err := l.records.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RecipeSummary, 0, len(all))
	for _, r := range all {
		out = append(out, summarize(r))
	}
	return out, nil
}

// Get returns a recipe by ID.
func (l *Library) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	r, err := l.records.Get(ctx, id)
	if err != nil {
		l.log.Debug("recipe %s: %v", id, err)
		return nil, err
	}
	return r, nil
}

// Create validates, normalizes and stores a new recipe.
func (l *Library) Create(ctx context.Context, r *domain.Recipe) error {
	normalize(r)
	if err := Validate(r); err != nil {
		return err
	}
	if r.Source == "" {
		r.Source = domain.SourceManual
	}
	r.Version = 1
	if err := l.records.Create(ctx, r); err != nil {
		return fmt.Errorf("creating recipe: %w", err)
	}
	l.log.Info("recipe created: %s (%s, %d steps)", r.Name, r.ID, len(r.Steps))
	return nil
}

// Update validates and replaces an existing recipe, bumping its version.
func (l *Library) Update(ctx context.Context, r *domain.Recipe) error {
	normalize(r)
	if err := Validate(r); err != nil {
		return err
	}
	existing, err := l.records.Get(ctx, r.ID)
	if err != nil {
		return err
	}
	if r.Source == "" {
		r.Source = existing.Source
	}
	if r.OwnerID == "" {
		r.OwnerID = existing.OwnerID
	}
	r.Version = existing.Version + 1
	if err := l.records.Update(ctx, r); err != nil {
		return fmt.Errorf("updating recipe: %w", err)
	}
	l.log.Info("recipe updated: %s (v%d)", r.Name, r.Version)
	return nil
}

// Delete removes a recipe.
func (l *Library) Delete(ctx context.Context, id string) error {
	if err := l.records.Delete(ctx, id); err != nil {
		return err
	}
	l.log.Info("recipe deleted: %s", id)
	return nil
}

// Search returns recipes whose name, description or tags contain query.
func (l *Library) Search(ctx context.Context, query string) ([]domain.RecipeSummary, error) {
	all, err := l.records.List(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	l.log.Debug("searching recipes for: %s", q)

	var out []domain.RecipeSummary
	for _, r := range all {
		if matches(r, q) {
			out = append(out, summarize(r))
		}
	}
	return out, nil
}

func matches(r *domain.Recipe, query string) bool {
	if strings.Contains(strings.ToLower(r.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(r.Description), query) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

func summarize(r *domain.Recipe) domain.RecipeSummary {
	return domain.RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		TotalTime:   r.TotalTime,
		Tags:        r.Tags,
	}
}

// normalize fills derived fields: the missing side of the coffee/water/ratio
// triple and the declared total time.
func normalize(r *domain.Recipe) {
	r.Name = strings.TrimSpace(r.Name)

	field := FieldCoffee
	switch {
	case r.Ratio > 0 && r.WaterGrams == 0:
		field = FieldRatio
	case r.Ratio > 0 && r.CoffeeGrams == 0 && r.WaterGrams > 0:
		field = FieldRatio
	}
	a := DeriveConsistentAmounts(Amounts{Coffee: r.CoffeeGrams, Water: r.WaterGrams, Ratio: r.Ratio}, field)
	r.CoffeeGrams, r.WaterGrams, r.Ratio = a.Coffee, a.Water, a.Ratio

	if r.TotalTime == 0 {
		r.TotalTime = r.StepTime()
	}
	if r.Steps == nil {
		r.Steps = []domain.Step{}
	}
}
