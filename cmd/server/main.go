// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/cache"
	"github.com/jason-s-yu/lobbyd/internal/config"
	"github.com/jason-s-yu/lobbyd/internal/handlers"
	"github.com/jason-s-yu/lobbyd/internal/lobby"
	"github.com/jason-s-yu/lobbyd/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var feed *cache.Feed
	if cfg.RedisAddr != "" {
		feed, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.MatchQueue, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect match feed")
		}
		logger.Infof("Publishing match events to Redis list %s", cfg.MatchQueue)
	}

	registry := lobby.NewRegistry(logger)
	dispatcher := handlers.NewDispatcher(registry, feed, logger)
	srv := server.New(server.Options{
		Heartbeat:     cfg.Heartbeat(),
		OutboxSize:    cfg.OutboxSize,
		MaxFrameBytes: cfg.MaxFrameBytes,
		WSOrigins:     cfg.WSOrigins,
	}, dispatcher, logger)

	var httpSrv *http.Server
	if cfg.HTTPAddr != "" {
		httpSrv = &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Handler()}
		go func() {
			logger.Infof("HTTP listening on %s", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Error("HTTP server exited")
				stop()
			}
		}()
	}

	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
		logger.WithError(err).Error("Server exited")
	}

	logger.Info("Shutting down")
	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("HTTP shutdown")
		}
		cancel()
	}
	srv.Shutdown()
	if err := feed.Close(); err != nil {
		logger.WithError(err).Warn("Closing match feed")
	}
}
