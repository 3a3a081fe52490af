package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routinetracker/internal/handler"
	"routinetracker/internal/httpserver"
	"routinetracker/internal/service"
	"routinetracker/pkg/logger"
	"routinetracker/pkg/mq"
	redisclient "routinetracker/pkg/redis"
	"routinetracker/pkg/util"
)

const idempotencyTTL = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewLogger(cfg.Log.Development)
	defer log.Sync()

	log.Info("Starting routined...",
		zap.String("mode", cfg.Tracker.Mode),
		zap.String("datastore", cfg.Datastore.Driver),
		zap.String("profile_id", cfg.Tracker.ProfileID),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Datastore
	ds, err := openDatastore(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to open datastore", zap.Error(err))
		return err
	}
	defer ds.close()

	// Redis (optional)
	var deduper handler.RequestDeduper
	rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, idempotency keys disabled", zap.Error(err))
	} else if rdb != nil {
		defer rdb.Close()
		deduper = util.NewDeduper(rdb, idempotencyTTL, log)
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr))
	}

	// RabbitMQ publisher (optional)
	var extra []service.TrackerOption
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Warn("MQ unavailable, activity events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			extra = append(extra, service.WithPublisher(publisher))
			log.Info("MQ publisher ready", zap.String("exchange", mq.ExchangeName))
		}
	}

	tracker, err := newTracker(ctx, cfg, ds, log, extra...)
	if err != nil {
		log.Error("Failed to load routines", zap.Error(err))
		return err
	}
	log.Info("Routines loaded", zap.Int("count", len(tracker.List())), zap.String("theme", string(tracker.Theme())))

	router := httpserver.NewRouter(
		handler.NewRoutineHandler(tracker, deduper, log),
		handler.NewProfileHandler(tracker, log),
		log,
		ds.pinger,
	)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		log.Error("HTTP server failed", zap.Error(err))
		return err
	}

	log.Info("Shutting down routined gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("routined shutdown complete")
	return nil
}
