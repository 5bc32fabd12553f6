package gear

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

func setupCatalog(t *testing.T) *Catalog {
	t.Helper()
	log := logger.NewNop()
	return NewCatalog(storage.NewMemoryBackend(log), log)
}

func TestGrinderCRUD(t *testing.T) {
	ctx := context.Background()
	grinders := setupCatalog(t).Grinders()

	g := &domain.Grinder{Name: " Comandante C40 ", Kind: "hand", MinSetting: 1, MaxSetting: 40}
	require.NoError(t, grinders.Create(ctx, g))
	assert.Equal(t, "Comandante C40", g.Name)

	g.Notes = "22 clicks for V60"
	require.NoError(t, grinders.Update(ctx, g))

	got, err := grinders.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "22 clicks for V60", got.Notes)

	all, err := grinders.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, grinders.Delete(ctx, g.ID))
	_, err = grinders.Get(ctx, g.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBrewersAreSeparateKind(t *testing.T) {
	ctx := context.Background()
	c := setupCatalog(t)

	require.NoError(t, c.Brewers().Create(ctx, &domain.Brewer{Name: "Hario V60", Method: "pour-over", CapacityML: 600}))

	grinders, err := c.Grinders().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, grinders)

	brewers, err := c.Brewers().List(ctx)
	require.NoError(t, err)
	assert.Len(t, brewers, 1)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"empty grinder name", ValidateGrinder(&domain.Grinder{Name: "  "})},
		{"inverted range", ValidateGrinder(&domain.Grinder{Name: "x", MinSetting: 10, MaxSetting: 2})},
		{"negative capacity", ValidateBrewer(&domain.Brewer{Name: "x", CapacityML: -5})},
		{"empty brewer name", ValidateBrewer(&domain.Brewer{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, domain.ErrInvalid)
		})
	}

	assert.NoError(t, ValidateGrinder(&domain.Grinder{Name: "Baratza Encore", MinSetting: 1}))
}

func TestCreateInvalidIsNotStored(t *testing.T) {
	ctx := context.Background()
	brewers := setupCatalog(t).Brewers()

	err := brewers.Create(ctx, &domain.Brewer{})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	all, err := brewers.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
