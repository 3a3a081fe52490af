package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"routinetracker/internal/config"
	"routinetracker/internal/httpserver"
	"routinetracker/internal/repository"
	"routinetracker/internal/repository/rest"
	"routinetracker/internal/repository/sqlite"
	"routinetracker/internal/routine"
	"routinetracker/internal/service"
	pkgconfig "routinetracker/pkg/config"
	"routinetracker/pkg/db"
)

func loadConfig() (*config.Config, error) {
	env := configEnv
	if env == "" {
		env = pkgconfig.GetConfigEnv()
	}
	dir := configDir
	if dir == "" {
		dir = pkgconfig.GetEnv("CONFIG_DIR", "config")
	}
	return config.LoadFrom(env, dir)
}

// datastore is the remote side of the tracker. All fields stay nil for the
// memory driver.
type datastore struct {
	routines service.RoutineRemote
	profiles service.ProfileRemote
	pinger   httpserver.Pinger
	close    func()
}

func openDatastore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*datastore, error) {
	switch cfg.Datastore.Driver {
	case config.DriverPostgres:
		pool, err := db.NewConnection(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}
		return &datastore{
			routines: repository.NewRoutineRepository(pool, log),
			profiles: repository.NewProfileRepository(pool, log),
			pinger:   pool,
			close:    pool.Close,
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Datastore.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &datastore{
			routines: store,
			profiles: store,
			pinger:   store,
			close:    func() { _ = store.Close() },
		}, nil

	case config.DriverREST:
		client, err := rest.NewClient(cfg.Datastore.URL, cfg.Datastore.Key, &http.Client{Timeout: 15 * time.Second}, log)
		if err != nil {
			return nil, err
		}
		return &datastore{
			routines: client,
			profiles: client,
			pinger:   client,
			close:    func() {},
		}, nil

	case config.DriverMemory:
		return &datastore{close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown datastore driver %q", cfg.Datastore.Driver)
}

func (d *datastore) trackerOptions() []service.TrackerOption {
	if d.routines == nil {
		return nil
	}
	return []service.TrackerOption{service.WithRemote(d.routines, d.profiles)}
}

// newTracker builds the store for the configured mode and loads the
// datastore's state into it.
func newTracker(ctx context.Context, cfg *config.Config, ds *datastore, log *zap.Logger, extra ...service.TrackerOption) (*service.Tracker, error) {
	mode, err := routine.ParseMode(cfg.Tracker.Mode)
	if err != nil {
		return nil, err
	}

	opts := append(ds.trackerOptions(), service.WithProfileID(cfg.Tracker.ProfileID))
	opts = append(opts, extra...)
	tracker := service.NewTracker(routine.NewStore(mode), log, opts...)
	if err := tracker.Load(ctx); err != nil {
		return nil, err
	}
	return tracker, nil
}
