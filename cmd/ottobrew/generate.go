package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Ask the AI for a recipe",
	Long: `Generates a recipe from brew parameters with the chat endpoint set by
GPT_CHAT_ENDPOINT and GPT_CHAT_KEY. The recipe is printed and, with
--save, added to the library.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.generator == nil {
			return domain.ErrGeneratorDisabled
		}

		f := cmd.Flags()
		var p domain.BrewParams
		p.Method, _ = f.GetString("method")
		p.CoffeeGrams, _ = f.GetFloat64("coffee")
		p.WaterGrams, _ = f.GetFloat64("water")
		p.Roast, _ = f.GetString("roast")
		p.Notes, _ = f.GetString("notes")
		p.BrewerName, _ = f.GetString("brewer")
		p.GrinderName, _ = f.GetString("grinder")

		r, err := a.generator.Generate(ctx, p)
		if err != nil {
			return err
		}
		if save, _ := f.GetBool("save"); save {
			r.OwnerID = cliOwner
			if err := a.recipes.Create(ctx, r); err != nil {
				return err
			}
			a.log.Info("saved generated recipe as %s", r.ID)
		}

		out, err := display.RenderRecipe(r, 80)
		if err != nil {
			return err
		}
		fmt.Print(out)
		if r.ID != "" {
			fmt.Printf("Saved as %s. Run: ottobrew brew %s\n", r.ID, r.ID)
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.String("method", "v60", "brewing method")
	f.Float64("coffee", 15, "coffee dose in grams")
	f.Float64("water", 250, "water in grams")
	f.String("roast", "", "roast level")
	f.String("notes", "", "free-form notes for the generator")
	f.String("brewer", "", "brewer name")
	f.String("grinder", "", "grinder name")
	f.Bool("save", false, "store the recipe in the library")
	rootCmd.AddCommand(generateCmd)
}
