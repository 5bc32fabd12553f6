package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottobrew/internal/brew"
	"github.com/hammamikhairi/ottobrew/internal/chime"
	"github.com/hammamikhairi/ottobrew/internal/config"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/gear"
	"github.com/hammamikhairi/ottobrew/internal/gpt"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/metrics"
	"github.com/hammamikhairi/ottobrew/internal/notify"
	"github.com/hammamikhairi/ottobrew/internal/recipe"
	"github.com/hammamikhairi/ottobrew/internal/storage"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	backend   storage.Backend
	recipes   *recipe.Library
	catalog   *gear.Catalog
	generator domain.RecipeGenerator
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	chime     *chime.Chime

	closers []func() error
}

// newApp loads the config and wires storage, the library and the
// optional AI generator. Audio is set up separately by withChime.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	cfgPath, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	cfg, err := config.Load(cfgPath, envFile)
	if err != nil {
		return nil, err
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	a := &app{cfg: cfg}

	logFile, _ := flags.GetString("log-file")
	out, err := a.openLog(logFile)
	if err != nil {
		return nil, err
	}
	a.log = logger.New(logger.ParseLevel(cfg.LogLevel), out)

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	switch cfg.Storage.Backend {
	case config.BackendRedis:
		rc := cfg.Storage.Redis
		rb := storage.NewRedisBackend(rc.Addr, rc.Password, rc.DB, a.log,
			storage.WithPrefix(rc.Prefix),
			storage.WithTTL(rc.TTL),
		)
		if err := rb.Ping(ctx); err != nil {
			rb.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", rc.Addr, err)
		}
		a.backend = rb
		a.closers = append(a.closers, rb.Close)
		a.log.Info("storage: redis at %s (db %d)", rc.Addr, rc.DB)
	default:
		a.backend = storage.NewMemoryBackend(a.log)
		a.log.Info("storage: in memory")
	}

	a.recipes = recipe.NewLibrary(a.backend, a.log)
	a.catalog = gear.NewCatalog(a.backend, a.log)

	if cfg.Seed {
		n, err := a.recipes.Seed(ctx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seeding recipes: %w", err)
		}
		if n > 0 {
			a.log.Info("seeded %d builtin recipes", n)
		}
	}

	if cfg.AI.Enabled() {
		opts := []gpt.ClientOption{
			gpt.WithJSONMode(),
			gpt.WithHTTPTimeout(cfg.AI.Timeout),
			gpt.WithMaxTokens(cfg.AI.MaxTokens),
		}
		if cfg.AI.Model != "" {
			opts = append(opts, gpt.WithModel(cfg.AI.Model))
		}
		if cfg.AI.BearerAuth {
			opts = append(opts, gpt.WithBearerAuth())
		}
		a.generator = gpt.NewGenerator(gpt.NewClient(cfg.AI.Endpoint, cfg.AI.APIKey, a.log, opts...), a.log)
		a.log.Info("recipe generation enabled")
	} else {
		a.log.Info("recipe generation disabled: set %s and %s to enable", config.EnvGPTKey, config.EnvGPTEndpoint)
	}

	return a, nil
}

// openLog returns the log destination. Anything but "stderr" or "" is a
// file path opened for append.
func (a *app) openLog(path string) (io.Writer, error) {
	if path == "" || path == "stderr" {
		return os.Stderr, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	a.closers = append(a.closers, f.Close)
	return f, nil
}

// withChime starts audio cues when enabled. A missing audio device only
// disables the cues.
func (a *app) withChime() {
	if !a.cfg.Chime.Enabled {
		return
	}
	player, err := chime.NewPlayer(a.log)
	if err != nil {
		a.log.Warn("audio unavailable, chimes disabled: %v", err)
		return
	}
	c, err := chime.New(player, a.log,
		chime.WithVolume(a.cfg.Chime.Volume),
		chime.WithDoneWAV(a.cfg.Chime.DoneWAV),
	)
	if err != nil {
		a.log.Warn("chimes disabled: %v", err)
		return
	}
	a.chime = c
	a.closers = append(a.closers, func() error {
		c.Close()
		player.Stop()
		return nil
	})
}

// notifier wraps text in the chime when one is running.
func (a *app) notifier(text domain.Notifier) domain.Notifier {
	if a.chime == nil {
		return text
	}
	return notify.NewChiming(text, a.chime)
}

func (a *app) newManager(n domain.Notifier) *brew.Manager {
	return brew.NewManager(a.recipes, a.log,
		brew.WithTickInterval(a.cfg.Brew.Tick),
		brew.WithNotifier(n),
		brew.WithMetrics(a.metrics),
	)
}

// Close releases everything in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Warn("shutdown: %v", err)
		}
	}
	a.closers = nil
}
