package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hammamikhairi/ottobrew/internal/countdown"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// RecipeMarkdown formats a recipe as markdown.
func RecipeMarkdown(r *domain.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", r.Description)
	}

	fmt.Fprintf(&b, "- **Coffee:** %gg\n", r.CoffeeGrams)
	fmt.Fprintf(&b, "- **Water:** %gg\n", r.WaterGrams)
	if r.Ratio > 0 {
		fmt.Fprintf(&b, "- **Ratio:** 1:%g\n", r.Ratio)
	}
	if r.WaterTempC > 0 {
		fmt.Fprintf(&b, "- **Water temperature:** %d°C\n", r.WaterTempC)
	}
	if r.GrindSetting != "" {
		fmt.Fprintf(&b, "- **Grind:** %s\n", r.GrindSetting)
	}
	fmt.Fprintf(&b, "- **Total time:** %s\n", countdown.FormatClock(r.TotalTime))
	if len(r.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(r.Tags, ", "))
	}

	b.WriteString("\n## Steps\n\n")
	if len(r.Steps) == 0 {
		b.WriteString("_No steps._\n")
	}
	for i, s := range r.Steps {
		fmt.Fprintf(&b, "%d. %s `%s`%s\n", i+1, s.Description, countdown.FormatClock(s.Time), stepKind(s))
	}
	return b.String()
}

func stepKind(s domain.Step) string {
	switch {
	case s.IsPouring:
		return " (pour)"
	case s.IsStirring:
		return " (stir)"
	case s.IsWaiting:
		return " (wait)"
	default:
		return ""
	}
}

// RenderRecipe renders a recipe for the terminal, wrapped at width.
func RenderRecipe(r *domain.Recipe, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	return renderer.Render(RecipeMarkdown(r))
}

// RenderSummaries lays recipe summaries out as a table.
func RenderSummaries(sums []domain.RecipeSummary) string {
	if len(sums) == 0 {
		return secondaryStyle.Render("No recipes.") + "\n"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(secondaryStyle).
		Headers("ID", "NAME", "TIME", "TAGS")
	for _, s := range sums {
		t.Row(s.ID, s.Name, countdown.FormatClock(s.TotalTime), strings.Join(s.Tags, ", "))
	}
	return t.Render() + "\n"
}
