package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lullapp/lull/internal/app"
	"github.com/lullapp/lull/internal/audiocache"
	"github.com/lullapp/lull/internal/catalog"
	"github.com/lullapp/lull/internal/credential"
	"github.com/lullapp/lull/internal/health"
	"github.com/lullapp/lull/internal/model"
	"github.com/lullapp/lull/internal/player"
	"github.com/lullapp/lull/internal/prefs"
	"github.com/lullapp/lull/internal/sleeptimer"
	"github.com/lullapp/lull/internal/store"
	appsync "github.com/lullapp/lull/internal/sync"
	"github.com/lullapp/lull/internal/tracker"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	dataDir := flag.String("data", model.DefaultDataDir(), "path to data directory")
	flag.Parse()

	if err := run(*configPath, *dataDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, dataDir string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	// The TUI owns stdout, so logs go to a file.
	logFile, err := os.OpenFile(
		filepath.Join(dataDir, "lull.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	logger := log.Default()

	s, err := store.NewSQLiteStore(filepath.Join(dataDir, "lull.db"))
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := prefs.Open(filepath.Join(dataDir, "prefs.json"))
	if err != nil {
		return err
	}

	cacheDir := cfg.Audio.CacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(dataDir, "audio")
	}
	cache, err := audiocache.New(cacheDir, p, logger)
	if err != nil {
		return err
	}
	if err := cache.CleanupOrphans(); err != nil {
		logger.Printf("cache cleanup: %v", err)
	}

	pl := player.New(logger)
	timer := sleeptimer.New(pl.Pause, logger)
	trk := tracker.NewService(s, logger)

	items := loadCatalog(cfg, logger)

	var poller *appsync.Poller
	if cfg.Health.Enabled {
		token, err := credential.HealthToken()
		if err != nil || token == "" {
			logger.Printf("health sync enabled but no token stored: %v", err)
		} else {
			client := health.NewClient(cfg.Health.BaseURL, token)
			poller = appsync.New(
				client, trk,
				time.Duration(cfg.Health.PollIntervalSec)*time.Second,
			)
		}
	}

	root := app.New(app.Deps{
		Store:         s,
		Prefs:         p,
		Cache:         cache,
		Player:        pl,
		Timer:         timer,
		Tracker:       trk,
		Poller:        poller,
		Catalog:       items,
		PlayerCommand: cfg.Audio.PlayerCommand,
		Config:        cfg,
		ConfigPath:    configPath,
	})

	program := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// loadCatalog fetches the remote catalog when one is configured, falling
// back to the bundled catalog on any failure.
func loadCatalog(cfg *model.AppConfig, logger *log.Logger) []model.ContentItem {
	if cfg.Audio.CatalogURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		items, err := catalog.NewClient(cfg.Audio.CatalogURL).Fetch(ctx)
		if err == nil {
			return items
		}
		logger.Printf("fetching remote catalog: %v", err)
	}

	items, err := catalog.Default()
	if err != nil {
		logger.Printf("loading bundled catalog: %v", err)
		return nil
	}
	return items
}
