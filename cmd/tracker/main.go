package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	polymarketdata "whaletrack/internal/client/polymarket/data"
	"whaletrack/internal/config"
	cronrunner "whaletrack/internal/cron"
	"whaletrack/internal/db"
	"whaletrack/internal/handler"
	"whaletrack/internal/logger"
	"whaletrack/internal/models"
	"whaletrack/internal/output"
	"whaletrack/internal/repository"
	gormrepository "whaletrack/internal/repository/gorm"
	"whaletrack/internal/service"
	"whaletrack/internal/traders"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("WT_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("WT_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	roster, err := traders.LoadCSV(cfg.Traders.CSVPath)
	if err != nil {
		logger.Fatal("cannot read trader roster, nothing to track",
			zap.String("path", cfg.Traders.CSVPath),
			zap.Error(err),
		)
	}
	logger.Info("trader roster loaded",
		zap.String("path", cfg.Traders.CSVPath),
		zap.Int("traders", len(roster)),
	)

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	dataHTTP := &http.Client{Timeout: cfg.DataAPI.Timeout}
	dataClient := polymarketdata.NewClient(dataHTTP, polymarketdata.Config{
		BaseURL:        cfg.DataAPI.BaseURL,
		RetryAttempts:  cfg.Tracker.RetryAttempts,
		RetryBaseDelay: cfg.Tracker.RetryBaseDelay(),
	}, logger)

	store := gormrepository.New(dbConn.Gorm)
	syncSvc := &service.TrackerSyncService{
		Client: dataClient,
		Logger: logger,
		Config: cfg.Tracker,
	}
	writer := &output.Writer{Dir: cfg.Output.Dir, Logger: logger}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	trackerHandler := &handler.TrackerHandler{Repo: store}
	trackerHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func(ctx context.Context) {
		result, err := syncSvc.Run(ctx, roster)
		if err != nil {
			logger.Warn("tracker sync failed", zap.Error(err))
			return
		}
		if err := writer.WriteRun(result); err != nil {
			logger.Warn("writing run documents failed", zap.Error(err))
			return
		}
		if cfg.Snapshots.Enabled {
			if err := persistSnapshot(ctx, store, result); err != nil {
				logger.Warn("persisting run snapshot failed", zap.Error(err))
			}
		}
	}

	cronRunner := cronrunner.New(logger, ctx)
	spec := "@every " + cfg.Tracker.PollInterval().String()
	if _, err := cronRunner.Add(spec, runOnce); err != nil {
		logger.Fatal("cron register tracker sync failed", zap.Error(err))
	}
	if cfg.Snapshots.Enabled && cfg.Snapshots.Retention > 0 {
		_, err := cronRunner.Add("@every 1h", func(ctx context.Context) {
			before := time.Now().UTC().Add(-cfg.Snapshots.Retention)
			n, err := store.DeleteRunSnapshotsBefore(ctx, before)
			if err != nil {
				logger.Warn("snapshot cleanup failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("expired run snapshots deleted", zap.Int64("count", n))
			}
		})
		if err != nil {
			logger.Warn("cron register snapshot cleanup failed", zap.Error(err))
		}
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	// First sync before the server starts answering so the read API has a
	// snapshot to serve immediately.
	logger.Info("running initial tracker sync")
	runOnce(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func persistSnapshot(ctx context.Context, store repository.Repository, result *service.RunResult) error {
	portfolios, err := json.Marshal(result.Portfolios)
	if err != nil {
		return fmt.Errorf("marshal portfolios: %w", err)
	}
	aggregated, err := json.Marshal(result.Aggregated)
	if err != nil {
		return fmt.Errorf("marshal aggregated book: %w", err)
	}
	changes, err := json.Marshal(result.Changes)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}
	return store.InsertRunSnapshot(ctx, &models.RunSnapshot{
		RunAt:          result.Metadata.LastUpdated,
		TraderCount:    result.Metadata.TraderCount,
		TradersFetched: result.Metadata.TradersFetched,
		MarketCount:    result.Metadata.MarketCount,
		TotalExposure:  decimal.NewFromFloat(result.Metadata.TotalExposure),
		ActivityCount:  result.Metadata.ActivityCount,
		Portfolios:     portfolios,
		Aggregated:     aggregated,
		Changes:        changes,
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
