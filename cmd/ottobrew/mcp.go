package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/mcpserver"
	"github.com/hammamikhairi/ottobrew/internal/notify"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server on stdio",
	Long: `Exposes the recipe library and brew countdowns as MCP tools so an
assistant can open a recipe and start, pause or check a brew.

Logs go to stderr (or --log-file) so they never corrupt the JSON-RPC
stream on stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		a.log.Info("starting MCP server (stdio)")
		return mcpserver.New(a.recipes, brews, Version, a.log).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
