package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Browse the recipe library",
}

var recipesListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List recipes, optionally filtered",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var sums []domain.RecipeSummary
		if len(args) == 1 {
			sums, err = a.recipes.Search(ctx, args[0])
		} else {
			sums, err = a.recipes.Summaries(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Print(display.RenderSummaries(sums))
		return nil
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show <recipe-id>",
	Short: "Show a recipe with its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.recipes.Get(ctx, args[0])
		if err != nil {
			return err
		}
		width, _ := cmd.Flags().GetInt("width")
		out, err := display.RenderRecipe(r, width)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	recipesShowCmd.Flags().Int("width", 80, "wrap width")
	recipesCmd.AddCommand(recipesListCmd, recipesShowCmd)
	rootCmd.AddCommand(recipesCmd)
}
