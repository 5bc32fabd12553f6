package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/countdown"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/recipe"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

func setupServer(t *testing.T) (*Server, *countdown.ManualClock) {
	t.Helper()
	log := logger.NewNop()
	lib := recipe.NewLibrary(storage.NewMemoryBackend(log), log)
	_, err := lib.Seed(context.Background())
	require.NoError(t, err)

	clock := countdown.NewManualClock(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	brews := brew.NewManager(lib, log, brew.WithClock(clock))
	t.Cleanup(brews.Shutdown)

	return New(lib, brews, "test", log), clock
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestListRecipes(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	res, err := s.listRecipes(ctx, call("list_recipes", nil))
	require.NoError(t, err)
	var sums []domain.RecipeSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &sums))
	assert.Len(t, sums, 4)

	res, err = s.listRecipes(ctx, call("list_recipes", map[string]any{"query": "chemex"}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &sums))
	require.Len(t, sums, 1)
	assert.Equal(t, "chemex", sums[0].ID)

	res, err = s.listRecipes(ctx, call("list_recipes", map[string]any{"query": "siphon"}))
	require.NoError(t, err)
	assert.Equal(t, "[]", text(t, res))
}

func TestShowRecipe(t *testing.T) {
	s, _ := setupServer(t)
	ctx := context.Background()

	res, err := s.showRecipe(ctx, call("show_recipe", map[string]any{"recipe_id": "v60-classic"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), "Classic V60")

	res, err = s.showRecipe(ctx, call("show_recipe", map[string]any{"recipe_id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.showRecipe(ctx, call("show_recipe", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "recipe_id is required")
}

func TestBrewFlow(t *testing.T) {
	s, clock := setupServer(t)
	ctx := context.Background()

	res, err := s.openBrew(ctx, call("open_brew", map[string]any{"recipe_id": "aeropress"}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	var view brew.View
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &view))
	assert.Equal(t, OwnerID, view.OwnerID)

	res, err = s.brewControl(ctx, call("brew_control", map[string]any{"brew_id": view.ID, "action": "start"}))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "running")

	clock.Advance(15 * time.Second)
	res, err = s.brewStatus(ctx, call("brew_status", map[string]any{"brew_id": view.ID}))
	require.NoError(t, err)
	assert.Equal(t, "AeroPress: running, step 2 of 5 (Stir three times and insert the plunger), 00:05 left. Next: Steep.", text(t, res))

	res, err = s.brewControl(ctx, call("brew_control", map[string]any{"brew_id": view.ID, "action": "explode"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.listBrews(ctx, call("list_brews", nil))
	require.NoError(t, err)
	assert.Contains(t, text(t, res), view.ID)

	res, err = s.closeBrew(ctx, call("close_brew", map[string]any{"brew_id": view.ID}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = s.brewStatus(ctx, call("brew_status", map[string]any{"brew_id": view.ID}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDescribeWithoutSteps(t *testing.T) {
	v := &brew.View{RecipeName: "Empty", State: countdown.Snapshot{Status: countdown.StatusIdle}}
	assert.Equal(t, "Empty: idle, no steps.", describe(v))
}
