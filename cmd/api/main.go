package main

import (
	"context"
	"log"
	"time"

	"ltl-tracker/internal/core/cache"
	"ltl-tracker/internal/core/config"
	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/core/proxy"
	"ltl-tracker/internal/core/server"
	"ltl-tracker/internal/features/tracking/classifier"
	"ltl-tracker/internal/features/tracking/fingerprint"
	"ltl-tracker/internal/features/tracking/handler"
	"ltl-tracker/internal/features/tracking/parsers"
	"ltl-tracker/internal/features/tracking/ports"
	"ltl-tracker/internal/features/tracking/service"
	"ltl-tracker/internal/features/tracking/strategies"

	"go.uber.org/zap"
)

// @title LTL Tracker API
// @version 1.0
// @description Multi-strategy shipment tracking retrieval engine for LTL freight carriers.
// @contact.name API Support
// @contact.email support@ltltracker.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	profiles, err := config.LoadCarrierProfiles(cfg.CarriersFile)
	if err != nil {
		l.Fatal("Failed to load carrier profiles", zap.Error(err))
	}
	l.Info("Carrier profiles loaded", zap.Int("carriers", len(profiles)))

	// Result cache is optional; without Redis every lookup runs the ladder.
	var store cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			l.Fatal("Failed to create Redis adapter", zap.Error(err))
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			cancel()
			l.Fatal("Redis health check failed", zap.Error(err))
		}
		cancel()
		defer redisCache.Close()
		store = redisCache
		l.Info("Redis connection verified")
	}

	sessions := fingerprint.NewManager(fingerprint.Options{
		TTL:      cfg.Session.TTL,
		PoolSize: cfg.Session.PoolSize,
	})
	defer sessions.Shutdown()

	cls := classifier.New(classifier.Options{
		MinBytes:              cfg.Classifier.MinBytes,
		ScriptMarkerThreshold: cfg.Classifier.ScriptMarkerThreshold,
		RealPageBytes:         cfg.Classifier.RealPageBytes,
	})

	proxySettings := proxy.FromConfig(cfg.Proxy)
	strategySet := []ports.Strategy{
		strategies.NewDirect(),
		strategies.NewForm(),
		strategies.NewAPICall(),
		strategies.NewAntiBot(),
		strategies.NewMirror(),
		strategies.NewBrowser(proxySettings),
	}

	ladder := service.NewLadder(strategySet, sessions, cls, parsers.Default(), service.LadderOptions{
		RequestDeadline: cfg.Ladder.RequestDeadline,
		AttemptPauseMax: cfg.Ladder.AttemptPauseMax,
	})

	resultCache := service.NewResultCache(store, cfg.ResultCacheTTL)
	trackingSvc := service.NewTrackingService(profiles, ladder, resultCache, cfg.Batch.MaxConcurrency)
	trackingHdl := handler.NewTrackingHandler(trackingSvc, store, cfg.Batch.MaxSize)

	srv := server.New(cfg)
	trackingHdl.RegisterRoutes(srv.App)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
