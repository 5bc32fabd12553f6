// Package mcpserver exposes the recipe library and live brews as MCP tools
// so an assistant can pick a recipe and drive the countdown.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// OwnerID marks brews opened through MCP.
const OwnerID = "mcp"

// Recipes is the library surface the tools need.
type Recipes interface {
	Summaries(ctx context.Context) ([]domain.RecipeSummary, error)
	Search(ctx context.Context, query string) ([]domain.RecipeSummary, error)
	Get(ctx context.Context, id string) (*domain.Recipe, error)
}

// Brews is the brew manager surface the tools need.
type Brews interface {
	Open(ctx context.Context, recipeID, ownerID string) (*brew.View, error)
	Control(id, action string) (*brew.View, error)
	Get(id string) (*brew.View, error)
	List() []brew.Info
	Close(id string) error
}

var _ Brews = (*brew.Manager)(nil)

// Server wraps an MCP server bound to the recipe library and brews.
type Server struct {
	recipes Recipes
	brews   Brews
	log     *logger.Logger
	mcp     *server.MCPServer
}

// New creates the server and registers its tools and resources.
func New(recipes Recipes, brews Brews, version string, log *logger.Logger) *Server {
	s := &Server{
		recipes: recipes,
		brews:   brews,
		log:     log,
		mcp:     server.NewMCPServer("ottobrew", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List brewing recipes, optionally filtered by a search query."),
		mcp.WithString("query", mcp.Description("Text to match against names, descriptions and tags")),
	), s.listRecipes)

	s.mcp.AddTool(mcp.NewTool("show_recipe",
		mcp.WithDescription("Show a recipe with all of its steps."),
		mcp.WithString("recipe_id", mcp.Required(), mcp.Description("Recipe ID")),
	), s.showRecipe)

	s.mcp.AddTool(mcp.NewTool("open_brew",
		mcp.WithDescription("Open a countdown for a recipe. The countdown does not start until brew_control is called with start."),
		mcp.WithString("recipe_id", mcp.Required(), mcp.Description("Recipe ID")),
	), s.openBrew)

	s.mcp.AddTool(mcp.NewTool("brew_control",
		mcp.WithDescription("Start, pause, resume or reset a brew countdown."),
		mcp.WithString("brew_id", mcp.Required(), mcp.Description("Brew ID")),
		mcp.WithString("action", mcp.Required(),
			mcp.Enum(brew.ActionStart, brew.ActionPause, brew.ActionResume, brew.ActionReset),
			mcp.Description("Control action")),
	), s.brewControl)

	s.mcp.AddTool(mcp.NewTool("brew_status",
		mcp.WithDescription("Show the current step and time remaining of a brew."),
		mcp.WithString("brew_id", mcp.Required(), mcp.Description("Brew ID")),
	), s.brewStatus)

	s.mcp.AddTool(mcp.NewTool("list_brews",
		mcp.WithDescription("List open brews."),
	), s.listBrews)

	s.mcp.AddTool(mcp.NewTool("close_brew",
		mcp.WithDescription("Close a brew and release its timer."),
		mcp.WithString("brew_id", mcp.Required(), mcp.Description("Brew ID")),
	), s.closeBrew)
}

func (s *Server) registerResources() {
	s.mcp.AddResource(mcp.NewResource("ottobrew://recipes", "Recipe library",
		mcp.WithResourceDescription("Summaries of every stored recipe"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sums, err := s.recipes.Summaries(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing recipes: %w", err)
		}
		data, err := json.Marshal(sums)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "ottobrew://recipes",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) listRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		sums []domain.RecipeSummary
		err  error
	)
	if q := stringArg(req, "query"); q != "" {
		sums, err = s.recipes.Search(ctx, q)
	} else {
		sums, err = s.recipes.Summaries(ctx)
	}
	if err != nil {
		return toolError("list recipes", err), nil
	}
	if sums == nil {
		sums = []domain.RecipeSummary{}
	}
	return jsonResult(sums)
}

func (s *Server) showRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "recipe_id")
	if res != nil {
		return res, nil
	}
	r, err := s.recipes.Get(ctx, id)
	if err != nil {
		return toolError("show recipe", err), nil
	}
	return jsonResult(r)
}

func (s *Server) openBrew(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "recipe_id")
	if res != nil {
		return res, nil
	}
	view, err := s.brews.Open(ctx, id, OwnerID)
	if err != nil {
		return toolError("open brew", err), nil
	}
	s.log.Info("mcp: opened brew %s for %s", view.ID, view.RecipeName)
	return jsonResult(view)
}

func (s *Server) brewControl(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "brew_id")
	if res != nil {
		return res, nil
	}
	action, res := requireArg(req, "action")
	if res != nil {
		return res, nil
	}
	view, err := s.brews.Control(id, action)
	if err != nil {
		return toolError(action, err), nil
	}
	return mcp.NewToolResultText(describe(view)), nil
}

func (s *Server) brewStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "brew_id")
	if res != nil {
		return res, nil
	}
	view, err := s.brews.Get(id)
	if err != nil {
		return toolError("brew status", err), nil
	}
	return mcp.NewToolResultText(describe(view)), nil
}

func (s *Server) listBrews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.brews.List())
}

func (s *Server) closeBrew(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "brew_id")
	if res != nil {
		return res, nil
	}
	if err := s.brews.Close(id); err != nil {
		return toolError("close brew", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Brew %s closed.", id)), nil
}

// describe renders a brew as one line for the assistant to read back.
func describe(v *brew.View) string {
	st := v.State
	if v.CurrentStep == nil {
		return fmt.Sprintf("%s: %s, no steps.", v.RecipeName, st.Status)
	}
	msg := fmt.Sprintf("%s: %s, step %d of %d (%s), %s left.",
		v.RecipeName, st.Status, st.CurrentStepIndex+1, st.StepCount, v.CurrentStep.Description, v.Clock)
	if v.NextStep != nil {
		msg += fmt.Sprintf(" Next: %s.", v.NextStep.Description)
	}
	return msg
}

func stringArg(req mcp.CallToolRequest, name string) string {
	v, _ := req.GetArguments()[name].(string)
	return v
}

func requireArg(req mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v := stringArg(req, name)
	if v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s is required", name))
	}
	return v, nil
}

func toolError(op string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
