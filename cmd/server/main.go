// Package main runs the registration approver HTTP server with graceful shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/keygate/config"
	"github.com/aura-webinar/keygate/internal/middleware"
	"github.com/aura-webinar/keygate/internal/registrations"
	"github.com/aura-webinar/keygate/internal/store"
	"github.com/aura-webinar/keygate/internal/zoom"
	"github.com/aura-webinar/keygate/pkg/database"
	"github.com/aura-webinar/keygate/pkg/redis"
	"github.com/aura-webinar/keygate/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	defer logger.Sync()

	ctx := context.Background()
	recordStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer closeStore()

	tokens := zoom.NewTokenIssuer(cfg.Zoom.APIKey, cfg.Zoom.APISecret)
	zoomClient := zoom.NewClient(cfg.Zoom.BaseURL, tokens, time.Duration(cfg.Zoom.TimeoutSecs)*time.Second, logger)

	reg := prometheus.NewRegistry()
	var metrics *registrations.Metrics
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics = registrations.NewMetrics(reg)
	}

	approver := registrations.NewApprover(recordStore, zoomClient, cfg.Meetings, logger)
	webhookHandler := registrations.NewWebhookHandler(approver, cfg.Meetings, metrics, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	if cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// Webhooks (always acknowledged with 200)
	router.POST(cfg.Server.WebhookPath, webhookHandler.RegistrationEvents)
	router.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("webhook_path", cfg.Server.WebhookPath),
			zap.Strings("meetings", cfg.Meetings.IDs()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// openStore connects the configured record store backend.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	names := store.ColumnNames{
		Key:        cfg.Columns.Key,
		Name:       cfg.Columns.Name,
		Status:     cfg.Columns.Status,
		Data:       cfg.Columns.Data,
		ExternalID: cfg.Columns.ExternalID,
		TimeID:     cfg.Columns.TimeID,
	}
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendSheets:
		s, err := store.NewSheetsStore(ctx, store.SheetsConfig{
			CredentialsFile: cfg.Store.CredentialsFile,
			SheetKey:        cfg.Store.SheetKey,
			Worksheet:       cfg.Store.WorksheetName,
		}, names, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), pool.Close, nil
	case config.BackendRedis:
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(rdb.Client), func() { _ = rdb.Close() }, nil
	case config.BackendMemory:
		s, err := store.LoadMemoryStore(cfg.Store.RecordsFile, names)
		if err != nil {
			return nil, nil, err
		}
		logger.Warn("using in-memory record store; updates are lost on restart", zap.String("file", cfg.Store.RecordsFile))
		return s, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown record store %q", cfg.Store.Backend)
}

func newLogger(cfg config.LogConfig) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	if cfg.File != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.File)
	}
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		return zap.NewExample()
	}
	return logger
}
