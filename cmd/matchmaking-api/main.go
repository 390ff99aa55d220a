// README: Entry point for the matchmaking service; wires config, pool store, distance estimator and HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wheels/internal/config"
	httptransport "wheels/internal/http"
	"wheels/internal/infra"
	"wheels/internal/modules/distance"
	"wheels/internal/modules/matching"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := infra.NewLogger(cfg.AppEnv, "matchmaking-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	oracles, err := infra.NewOracles(cfg.Maps, redisClient, log)
	if err != nil {
		log.Fatal("failed to init google maps", zap.Error(err))
	}
	estimator := distance.NewEstimator(oracles.Distance, cfg.Maps.Timeout, log)

	matchingStore := matching.NewStore(dbPool)
	matchingSvc := matching.NewService(matchingStore, estimator, cfg.Matching, log)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:         cfg.HTTP.MatchmakingAddr,
		Handler:      httptransport.NewMatchmakingRouter(matchingSvc, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", srv.Addr),
			zap.Bool("driving_distance", cfg.Matching.UseDrivingDistance && estimator.HasOracle()),
			zap.Float64("max_detour_km", cfg.Matching.MaxDetourKm),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down matchmaking-api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	log.Info("matchmaking-api stopped")
}
