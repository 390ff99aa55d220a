// README: Entry point for the pickup route optimisation service.
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
	"wheels/internal/modules/route"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := infra.NewLogger(cfg.AppEnv, "optimization-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	oracles, err := infra.NewOracles(cfg.Maps, redisClient, log)
	if err != nil {
		log.Fatal("failed to init google maps", zap.Error(err))
	}

	// A nil *RouteService must not reach the service as a non-nil interface.
	var directions route.DirectionsOracle
	if oracles.Routes != nil {
		directions = oracles.Routes
	}

	estimator := distance.NewEstimator(oracles.Distance, cfg.Maps.Timeout, log)
	routeSvc := route.NewService(estimator, directions, cfg.Route, cfg.Maps.Timeout, log)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:         cfg.HTTP.OptimizationAddr,
		Handler:      httptransport.NewOptimizationRouter(routeSvc, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", srv.Addr),
			zap.Bool("google_maps", directions != nil),
			zap.Float64("avg_speed_kmh", cfg.Route.AvgSpeedKmh),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down optimization-api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	log.Info("optimization-api stopped")
}
