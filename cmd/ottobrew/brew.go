package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/notify"
)

const cliOwner = "cli"

var brewCmd = &cobra.Command{
	Use:   "brew <recipe-id>",
	Short: "Run a recipe countdown in the terminal",
	Long: `Opens a countdown for the recipe and shows it full screen.
Press space to start, pause and resume, r to reset and q to quit.

When stdout is not a terminal the countdown starts right away and one
line is printed per step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Keep logs out of the countdown view unless asked otherwise.
		if !cmd.Flags().Changed("log-file") && display.IsTerminal(os.Stdout) {
			_ = cmd.Flags().Set("log-file", ".ottobrew-logs/brew.log")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		a.withChime()

		brews := a.newManager(a.notifier(notify.Nop{}))
		defer brews.Shutdown()

		view, err := brews.Open(ctx, args[0], cliOwner)
		if err != nil {
			return err
		}
		events, cancel, err := brews.Subscribe(view.ID)
		if err != nil {
			return err
		}
		defer cancel()

		if start, _ := cmd.Flags().GetBool("start"); start {
			if view, err = brews.Control(view.ID, brew.ActionStart); err != nil {
				return err
			}
		}

		if err := display.Run(ctx, brews, view, events); err != nil {
			return fmt.Errorf("display: %w", err)
		}
		return nil
	},
}

func init() {
	brewCmd.Flags().Bool("start", false, "start the countdown immediately")
	rootCmd.AddCommand(brewCmd)
}
