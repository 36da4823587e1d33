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
	"github.com/lmittmann/tint"

	"pageperf/api/config"
	"pageperf/api/database"
	"pageperf/api/handlers"
	"pageperf/api/middleware"
	"pageperf/api/service"
	"pageperf/api/store"
	"pageperf/api/utils"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.DateTime})))

	cfg := config.Load()
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL: analysts, active URLs, run history ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		fatal("failed to initialize PostgreSQL database", err)
	}
	defer dbClient.Close()

	// --- ClickHouse: performance_timing events ---
	chCtx, chCancel := context.WithTimeout(context.Background(), 10*time.Second)
	chClient, err := database.NewClickHouseDB(chCtx, cfg.ClickHouse)
	chCancel()
	if err != nil {
		fatal("failed to initialize ClickHouse database", err)
	}
	defer chClient.Close()

	eventStore := store.NewEventStore(chClient)
	if err := eventStore.EnsureSchema(context.Background()); err != nil {
		fatal("failed to prepare ClickHouse schema", err)
	}

	// --- Optional: object storage and report cache ---
	objectClient, err := database.NewObjectStore()
	if err != nil {
		slog.Warn("object storage disabled", "error", err)
	}
	redisClient, err := database.NewRedisClient()
	if err != nil {
		slog.Warn("report cache disabled", "error", err)
	} else {
		defer redisClient.Close()
	}

	analystStore := store.NewAnalystStore(dbClient.DB)
	activeURLStore := store.NewActiveURLStore(dbClient.DB)

	var objects *store.ObjectStore
	if objectClient != nil {
		objects = store.NewObjectStore(objectClient)
	}

	events, active, err := reportSources(cfg.Report, eventStore, activeURLStore, objects)
	if err != nil {
		fatal("invalid report source configuration", err)
	}
	reports := service.NewReportService(events, active, cfg.Report)
	reports.Runs = store.NewRunStore(dbClient.DB)
	if redisClient != nil {
		reports.Cache = store.NewReportCache(redisClient, cfg.Report.CacheTTL)
	}
	if objects != nil {
		reports.Uploads = objects
	}

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		fatal("JWT_SECRET_KEY must be set", err)
	}

	authHandlers := handlers.NewAuthHandlers(analystStore, tokens)
	authHandlers.Secure = gin.Mode() == gin.ReleaseMode
	eventHandlers := handlers.NewEventHandlers(eventStore, reports)
	activeURLHandlers := handlers.NewActiveURLHandlers(activeURLStore, reports)
	reportHandlers := handlers.NewReportHandlers(reports, cfg.Report.WindowDays)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.FEOrigin))

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired(tokens, cfg.AuthToken))
		{
			protected.POST("/events", eventHandlers.TrackEvents)

			protected.GET("/active-urls", activeURLHandlers.List)
			protected.PUT("/active-urls", activeURLHandlers.Replace)
			protected.POST("/active-urls/upload", activeURLHandlers.Upload)

			reportGroup := protected.Group("/reports")
			{
				reportGroup.GET("/performance", reportHandlers.Performance)
				reportGroup.GET("/performance/workbook", reportHandlers.Workbook)
				reportGroup.POST("/performance/publish", reportHandlers.Publish)
				reportGroup.GET("/runs", reportHandlers.Runs)
			}
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("API server starting", "addr", "http://localhost:"+cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("API server failed to start", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exiting")
}

// reportSources picks where reports read events and the active URL list from.
func reportSources(cfg config.Report, events *store.EventStore, urls *store.ActiveURLStore, objects *store.ObjectStore) (service.EventSource, service.ActiveURLSource, error) {
	var es service.EventSource
	switch cfg.EventSource {
	case "clickhouse":
		es = events
	case "bucket":
		if objects == nil {
			return nil, nil, errors.New("REPORT_EVENT_SOURCE=bucket needs object storage")
		}
		es = service.NewBucketEvents(objects, service.EventsObjectKey)
	default:
		return nil, nil, errors.New("unknown REPORT_EVENT_SOURCE " + cfg.EventSource)
	}

	var as service.ActiveURLSource
	switch cfg.ActiveURLSource {
	case "postgres":
		as = urls
	case "bucket":
		if objects == nil {
			return nil, nil, errors.New("REPORT_ACTIVE_URL_SOURCE=bucket needs object storage")
		}
		as = service.NewBucketActiveURLs(objects, service.ActiveURLsObjectKey)
	default:
		return nil, nil, errors.New("unknown REPORT_ACTIVE_URL_SOURCE " + cfg.ActiveURLSource)
	}
	return es, as, nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
