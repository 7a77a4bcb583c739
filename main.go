package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/config"
	"portfolio/api/database"
	"portfolio/api/handlers"
	"portfolio/api/logs"
	"portfolio/api/models"
	"portfolio/api/realtime"
	"portfolio/api/sinks"
	"portfolio/api/store"
	"portfolio/api/tracking"
	"portfolio/api/utils"
)

const visitorCookieTTL = 24 * time.Hour

type stores struct {
	content  store.ContentStore
	activity store.ActivityLog
	visitors store.VisitorRegistry
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logs.NewLogger(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	content, err := loadContent(cfg)
	if err != nil {
		logger.Error("failed to load portfolio content", "error", err)
		os.Exit(1)
	}

	st, err := openStores(cfg, content, logger)
	if err != nil {
		logger.Error("failed to initialize stores", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	// --- Activity export ---
	var exportSinks []sinks.Sink
	var analytics handlers.ActivityAnalytics
	if cfg.ClickHouse.Enabled() {
		chClient, err := database.NewClickHouseDB(cfg.ClickHouse, logger)
		if err != nil {
			logger.Error("ClickHouse export disabled", "error", err)
		} else {
			exportSinks = append(exportSinks, sinks.NewClickHouseSink(chClient, logger))
			analytics = store.NewAnalyticsStore(chClient, logger)
		}
	}
	if cfg.Kafka.Enabled() {
		exportSinks = append(exportSinks, sinks.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		logger.Info("kafka export enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}
	dispatcher := sinks.NewDispatcher(logger, sinks.Options{
		Buffer:        cfg.SinkBuffer,
		BatchSize:     cfg.SinkBatchSize,
		FlushInterval: cfg.SinkFlushInterval,
	}, exportSinks...)

	// --- Tracking ---
	tokens, err := utils.NewVisitorTokens(cfg.VisitorCookieSecret, visitorCookieTTL)
	if err != nil {
		logger.Error("failed to initialize visitor tokens", "error", err)
		os.Exit(1)
	}
	if cfg.VisitorCookieSecret == "" {
		logger.Warn("VISITOR_COOKIE_SECRET not set, visitor cookies will not survive a restart")
	}
	trackingOpts := tracking.Options{Exporter: dispatcher}
	if cfg.HashVisitorIPs {
		if trackingOpts.Hasher, err = utils.NewIPHasher(); err != nil {
			logger.Error("failed to initialize ip hasher", "error", err)
			os.Exit(1)
		}
	}
	tracker := tracking.New(st.activity, st.visitors, tokens, logger, trackingOpts)

	// --- Realtime ---
	hub := realtime.NewHub(logger)
	heartbeat := realtime.NewHeartbeat(cfg.HeartbeatInterval, tracker, logger)
	rt := realtime.NewServer(hub, heartbeat, logger, cfg.CORSOrigins)

	router := handlers.NewRouter(handlers.Dependencies{
		Config:    cfg,
		Content:   st.content,
		Tracker:   tracker,
		Realtime:  rt,
		Analytics: analytics,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("portfolio API listening", "addr", "http://localhost:"+cfg.Port, "driver", cfg.DBDriver, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Streams never finish on their own; close them before draining requests.
	hub.CloseAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	tracker.Wait()
	if err := dispatcher.Close(); err != nil {
		logger.Error("error closing export sinks", "error", err)
	}
	logger.Info("server exiting")
}

func loadContent(cfg *config.Config) (models.Content, error) {
	if cfg.ContentFile == "" {
		return store.DefaultContent(), nil
	}
	return store.LoadContentFile(cfg.ContentFile)
}

func openStores(cfg *config.Config, content models.Content, logger *slog.Logger) (*stores, error) {
	var (
		client *database.DBClient
		err    error
	)
	switch cfg.DBDriver {
	case config.DriverMemory:
		return &stores{
			content:  store.NewMemoryContentStore(content),
			activity: store.NewMemoryActivityLog(cfg.ActivityLogCapacity),
			visitors: store.NewMemoryVisitorRegistry(),
			close:    func() {},
		}, nil
	case config.DriverPostgres:
		client, err = database.NewPostgresDB(cfg.DatabaseURL, logger)
	case config.DriverSQLite:
		client, err = database.NewSQLiteDB(cfg.SQLitePath, logger)
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	contentStore, err := store.NewSQLContentStore(ctx, client, content, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &stores{
		content:  contentStore,
		activity: store.NewSQLActivityLog(client, cfg.ActivityLogCapacity),
		visitors: store.NewSQLVisitorRegistry(client),
		close:    client.Close,
	}, nil
}
