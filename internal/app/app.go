// Package app builds the game's collaborators from the environment. Every
// command starts from New.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tomz197/glitchhunter/internal/catalog"
	"github.com/tomz197/glitchhunter/internal/config"
	loopcfg "github.com/tomz197/glitchhunter/internal/loop/config"
	"github.com/tomz197/glitchhunter/internal/loop/engine"
	"github.com/tomz197/glitchhunter/internal/session"
	"github.com/tomz197/glitchhunter/internal/stats"
	"github.com/tomz197/glitchhunter/internal/storage"
	"github.com/tomz197/glitchhunter/internal/storage/memory"
	"github.com/tomz197/glitchhunter/internal/storage/postgres"
)

// App holds the shared game services of one process.
type App struct {
	Log     *log.Logger
	Levels  *catalog.Store
	Gateway storage.Gateway
	Manager *session.Manager

	levelsFile string
	mem        *memory.Store
	pg         *postgres.Store
}

// New loads .env, the level catalog and the store. GLITCH_DATABASE_URL
// selects PostgreSQL; without it progress lives in memory.
func New(ctx context.Context, prefix string) (*App, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("app: load .env: %w", err)
	}
	logger := config.NewLogger(prefix)
	a := &App{
		Log:        logger,
		levelsFile: config.GetEnv("GLITCH_LEVELS_FILE", ""),
	}

	cat, err := catalog.LoadOrDefault(a.levelsFile)
	if err != nil {
		return nil, err
	}

	if dsn := config.GetEnv("GLITCH_DATABASE_URL", ""); dsn != "" {
		pg, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		if cat, err = seed(ctx, pg, cat); err != nil {
			pg.Close()
			return nil, err
		}
		a.pg, a.Gateway = pg, pg
		logger.Info("using postgres store")
	} else {
		a.mem = memory.New(cat)
		a.Gateway = a.mem
		logger.Warn("GLITCH_DATABASE_URL not set, progress is kept in memory")
	}
	a.Levels = catalog.NewStore(cat)

	opts, err := SessionOptions()
	if err != nil {
		a.Close()
		return nil, err
	}
	opts.Logger = logger
	a.Manager = session.NewManager(a.Gateway, a.Levels, opts)
	logger.Info("ready",
		"levels", len(cat.Levels()),
		"scoring", opts.Engine.Scoring,
		"reset", opts.Reset,
		"combo", opts.Engine.ComboWindow,
	)
	return a, nil
}

// seed migrates the schema, upserts c and reads the catalog back so play
// uses exactly what the database holds.
func seed(ctx context.Context, pg *postgres.Store, c *catalog.Catalog) (*catalog.Catalog, error) {
	if err := pg.Migrate(ctx); err != nil {
		return nil, err
	}
	if err := pg.SeedCatalog(ctx, c); err != nil {
		return nil, err
	}
	return storage.LoadCatalog(ctx, pg)
}

// SessionOptions reads the rule settings: GLITCH_SCORING, GLITCH_COMBO_WINDOW,
// GLITCH_MISTAKE_LIMIT, GLITCH_SEED and GLITCH_STATS_RESET.
func SessionOptions() (session.Options, error) {
	cfg := engine.DefaultConfig()
	scoring, err := engine.ParseScoring(config.GetEnv("GLITCH_SCORING", "tiered"))
	if err != nil {
		return session.Options{}, err
	}
	cfg.Scoring = scoring
	cfg.ComboWindow = max(config.GetEnvDuration("GLITCH_COMBO_WINDOW", 0), 0)
	cfg.MistakeLimit = config.GetEnvInt("GLITCH_MISTAKE_LIMIT", cfg.MistakeLimit)
	cfg.Seed = config.GetEnvUint64("GLITCH_SEED", 0)

	reset, err := stats.ParseResetPolicy(config.GetEnv("GLITCH_STATS_RESET", "session"))
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Engine:      cfg,
		Reset:       reset,
		SaveTimeout: loopcfg.SaveTimeout,
	}, nil
}

// WatchLevels reloads GLITCH_LEVELS_FILE on change until ctx is done.
// Running sessions pick the new catalog up at their next level start. It
// returns at once when no file is configured.
func (a *App) WatchLevels(ctx context.Context) error {
	if a.levelsFile == "" {
		return nil
	}
	a.Log.Info("watching level catalog", "file", a.levelsFile)
	return catalog.Watch(ctx, a.levelsFile, a.reload, func(err error) {
		a.Log.Warn("level catalog not reloaded", "err", err)
	})
}

func (a *App) reload(c *catalog.Catalog) {
	if a.pg != nil {
		ctx, cancel := context.WithTimeout(context.Background(), loopcfg.SaveTimeout)
		defer cancel()
		var err error
		if c, err = seed(ctx, a.pg, c); err != nil {
			a.Log.Warn("level catalog not reloaded", "err", err)
			return
		}
	}
	if a.mem != nil {
		a.mem.SetCatalog(c)
	}
	a.Levels.Swap(c)
	a.Log.Info("level catalog reloaded", "levels", len(c.Levels()))
}

// Close releases the store.
func (a *App) Close() {
	if a.pg != nil {
		a.pg.Close()
	}
}
