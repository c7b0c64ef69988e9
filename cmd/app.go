package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brk3/habitcal/internal/apiclient"
	"github.com/brk3/habitcal/internal/config"
	"github.com/brk3/habitcal/internal/dateinput"
	"github.com/brk3/habitcal/internal/logger"
	"github.com/brk3/habitcal/internal/state"
	"github.com/brk3/habitcal/internal/storage"
	"github.com/brk3/habitcal/internal/storage/bolt"
	"github.com/brk3/habitcal/internal/storage/sqlite"
	"github.com/brk3/habitcal/internal/syncer"
	"github.com/brk3/habitcal/pkg/habit"
)

// app is the per-invocation wiring shared by every command.
type app struct {
	cfg    *config.Config
	cache  storage.Cache
	store  *state.Store
	engine *syncer.Engine
}

// newApp loads config, sets up logging and opens the cache. Interactive
// sessions log to a file beside the cache unless log.file is set.
func newApp(interactive bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logOpts := logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}
	if interactive && logOpts.File == "" {
		logOpts.File = filepath.Join(filepath.Dir(cfg.Cache.Path), "habits.log")
	}
	if err := logger.Setup(logOpts); err != nil {
		return nil, err
	}

	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("no endpoint configured: set endpoint in the config file or HABITS_ENDPOINT")
	}
	mode, err := syncer.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	var cache storage.Cache
	if mode == syncer.ModeCacheFirst {
		cache, err = openCache(cfg)
		if err != nil {
			return nil, err
		}
	}

	store := state.New(cache)
	remote := apiclient.New(cfg.Endpoint, cfg.UserID, cfg.Remote.Timeout)
	engine := syncer.New(store, remote, nil, syncer.Options{
		Mode:          mode,
		MissThreshold: cfg.Sync.MissThreshold,
	})

	logger.Debug("Initialised", "mode", mode, "cache", cfg.Cache.Driver, "endpoint", cfg.Endpoint)
	return &app{cfg: cfg, cache: cache, store: store, engine: engine}, nil
}

func openCache(cfg *config.Config) (storage.Cache, error) {
	path := cfg.Cache.Path
	if cfg.Cache.Driver != "none" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	switch cfg.Cache.Driver {
	case "bolt":
		s, err := bolt.Open(path, cfg.UserID)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(path, cfg.UserID)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, nil
}

// load fills the store for a one-shot command that reads state: the cached
// snapshot first, then the remote one when sync is set. Network-only sessions
// have no cache and always fetch.
func (a *app) load(ctx context.Context, sync bool) error {
	if a.engine.Mode() == syncer.ModeNetworkOnly {
		return a.engine.FetchSnapshot(ctx)
	}
	if err := a.store.Restore(); err != nil {
		return err
	}
	if !sync {
		return nil
	}
	return a.engine.FetchSnapshot(ctx)
}

// failedWrites reports the writes of this invocation that the remote store
// rejected or never answered.
func (a *app) failedWrites() error {
	for _, w := range a.engine.Writes() {
		if w.Status == syncer.StatusFailed {
			return fmt.Errorf("remote write %s failed: %s", w.Kind, w.LastError)
		}
	}
	return nil
}

// Close waits for in-flight remote calls and releases the cache.
func (a *app) Close() error {
	a.engine.Wait()
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// dayFlag resolves a --date value, defaulting to today.
func dayFlag(s string) (habit.Date, error) {
	if s == "" {
		return habit.Today(), nil
	}
	d, err := dateinput.Parse(s, time.Now())
	if err != nil {
		return habit.Date{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}
