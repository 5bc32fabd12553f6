package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/httpapi"
	"github.com/hammamikhairi/ottobrew/internal/identity"
	"github.com/hammamikhairi/ottobrew/internal/notify"
	"github.com/hammamikhairi/ottobrew/internal/timer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves recipes, gear, sign-in and live brews over HTTP.

Brew countdowns run in this process; step changes are printed to the
console and, when chimes are enabled, played through the speakers.
Open brews can be followed with GET /brews/{id}/events (server-sent events).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		a.withChime()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			a.cfg.HTTP.Addr = addr
		}

		var text domain.Notifier = notify.NewTerminal(os.Stdout, a.log, notify.WithTimestamps(time.Now))
		if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" && logFile != "stderr" {
			// Keep a record of notifications next to the rest of the log.
			text = notify.Multi{text, notify.NewLog(a.log)}
		}
		notifier := a.notifier(text)
		brews := a.newManager(notifier)
		defer brews.Shutdown()

		supervisor := timer.New(brews, notifier, a.log,
			timer.WithTickInterval(a.cfg.Brew.WatchInterval),
			timer.WithNudgeAfter(a.cfg.Brew.PausedNudge),
			timer.WithReapAfter(a.cfg.Brew.IdleReap),
		)
		supervisor.Start(ctx)
		defer supervisor.Stop()

		opts := []httpapi.Option{httpapi.WithMetrics(a.metrics, a.registry)}
		if a.generator != nil {
			opts = append(opts, httpapi.WithGenerator(a.generator))
		}
		api := httpapi.New(a.recipes, a.catalog, brews, identity.NewMemoryProvider(a.log), a.log, opts...)

		srv := &http.Server{
			Addr:              a.cfg.HTTP.Addr,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			a.log.Info("listening on %s", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		fmt.Println(display.RenderBanner())

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		// Event streams only end when their brew closes or the client leaves.
		brews.Shutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
