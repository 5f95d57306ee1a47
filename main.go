package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yeremiapane/comanda-app/config"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/metrics"
	"github.com/yeremiapane/comanda-app/router"
	"github.com/yeremiapane/comanda-app/services"
	"github.com/yeremiapane/comanda-app/utils"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, dotenvLoaded, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.InitLogger(cfg.App.LogLevel)
	if !dotenvLoaded {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	if cfg.App.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	if cfg.App.Seed {
		seedDemo(db, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var locker services.PairLocker = services.NewKeyedMutex()
	if cfg.Redis.Enabled() {
		redisClient, err := config.InitRedis(ctx, cfg.Redis)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		redisLocker, err := services.NewRedisLocker(redisClient, cfg.Redis.LockTTL)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to create pair lock: %v", err)
		}
		locker = redisLocker
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	comandaMetrics := metrics.NewComandaMetrics(registry)

	hub := kds.NewHub()
	r, err := router.SetupRouter(router.Deps{
		DB:       db,
		Config:   cfg,
		Hub:      hub,
		Locker:   locker,
		Metrics:  comandaMetrics,
		Gatherer: registry,
	})
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to set up router: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		utils.InfoLogger.Printf("Listening on port %s", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		utils.InfoLogger.Println("Shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	utils.InfoLogger.Println("Server exited")
}
