package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/kazoe/internal/catalog"
	"github.com/verte-zerg/kazoe/internal/config"
	"github.com/verte-zerg/kazoe/internal/logging"
	"github.com/verte-zerg/kazoe/internal/settings"
	"github.com/verte-zerg/kazoe/internal/stats"
	"github.com/verte-zerg/kazoe/internal/store"
)

// app holds the state shared by every subcommand.
type app struct {
	fileCfg  config.FileConfig
	log      *logrus.Logger
	logFile  io.Closer
	store    *store.Store
	catalog  *catalog.Catalog
	loadErr  error
	tracker  *stats.Tracker
	settings *settings.Settings
}

// loadApp reads the config file and opens the app with it.
func loadApp(ctx context.Context, dataset string) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openApp(ctx, fileCfg, dataset)
}

// openApp sets up logging, the database and the catalog. An empty dataset
// falls back to the config file, then to the built-in data. A dataset that
// fails to load leaves an empty catalog and records the error.
func openApp(ctx context.Context, fileCfg config.FileConfig, dataset string) (*app, error) {
	logOpts := logging.Options{Path: config.DefaultLogPath()}
	if fileCfg.Log.Level != nil {
		logOpts.Level = *fileCfg.Log.Level
	}
	if fileCfg.Log.Format != nil {
		logOpts.Format = *fileCfg.Log.Format
	}
	log, logFile, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if dataset == "" && fileCfg.Practice.Dataset != nil {
		dataset = *fileCfg.Practice.Dataset
	}
	a := &app{fileCfg: fileCfg, log: log, logFile: logFile, store: st}
	a.catalog, a.loadErr = catalog.Load(dataset)
	if a.loadErr != nil {
		log.WithError(a.loadErr).WithField("dataset", dataset).Error("failed to load dataset")
		a.catalog = &catalog.Catalog{}
	}
	a.tracker = stats.LoadTracker(ctx, st, log)
	a.settings = settings.Load(ctx, st, log)
	if a.catalog.Len() > 0 {
		a.reconcile(ctx)
	}
	log.WithField("counters", a.catalog.Len()).Info("kazoe started")
	return a, nil
}

// reconcile aligns persisted stats and the enabled set with the catalog.
func (a *app) reconcile(ctx context.Context) {
	if err := a.tracker.Reconcile(ctx, a.catalog.Keys()); err != nil {
		a.log.WithError(err).Warn("failed to reconcile counter stats")
	}
	set := a.settings.Enabled()
	if set.All {
		return
	}
	reconciled := a.catalog.Reconcile(set.Keys)
	if reconciled.All == set.All && len(reconciled.Keys) == len(set.Keys) {
		return
	}
	if err := a.settings.SetEnabled(ctx, reconciled); err != nil {
		a.log.WithError(err).Warn("failed to save enabled counters")
	}
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
	if err := a.logFile.Close(); err != nil {
		logErrf("failed to close log: %v\n", err)
	}
}
