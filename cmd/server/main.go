package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/poem-relay/backend/internal/api"
	"github.com/poem-relay/backend/internal/config"
	"github.com/poem-relay/backend/internal/docgen"
	"github.com/poem-relay/backend/internal/relay"
	"github.com/poem-relay/backend/internal/session"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Override server port")
	flag.Parse()

	// .env is optional; HOST/PORT from it feed config.Load.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	store := session.NewStore()
	registry := relay.NewRegistry(cfg.Relay.SubscriberBuffer)
	rel := relay.New(store, registry, logger)
	renderer := docgen.NewClient(cfg.DocGen.RendererURL, cfg.DocGen.Timeout.Std(), logger)
	server := api.NewServer(rel, renderer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go store.RunSweeper(ctx, cfg.Relay.SweepInterval.Std(),
		cfg.Relay.RetainCompleted.Std(), cfg.Relay.RetainAbandoned.Std(),
		func(removed int) {
			logger.Info("evicted stale session records", zap.Int("removed", removed))
		})

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: event streams stay open until completion or
		// client disconnect.
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("poem relay listening",
		zap.String("addr", cfg.Addr()),
		zap.String("renderer", cfg.DocGen.RendererURL))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
