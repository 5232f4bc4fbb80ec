package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/lewnelson/foreign-exchange-api/internal/adapters/cache"
	"github.com/lewnelson/foreign-exchange-api/internal/adapters/httpclient"
	"github.com/lewnelson/foreign-exchange-api/internal/adapters/postgres"
	"github.com/lewnelson/foreign-exchange-api/internal/api"
	"github.com/lewnelson/foreign-exchange-api/internal/config"
	"github.com/lewnelson/foreign-exchange-api/internal/currency"
	"github.com/lewnelson/foreign-exchange-api/internal/ingest"
	"github.com/lewnelson/foreign-exchange-api/internal/metrics"
	"github.com/lewnelson/foreign-exchange-api/internal/platform/db"
	httpserver "github.com/lewnelson/foreign-exchange-api/internal/platform/http"
	"github.com/lewnelson/foreign-exchange-api/internal/rate"
	"github.com/lewnelson/foreign-exchange-api/internal/rate/handler"
)

// Run wires the application components, starts the HTTP server and the
// ingestion scheduler.
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}

	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, migrations)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		return err
	}
	defer pool.Close()
	logrus.Info("Postgres connection successful")

	if err = db.Migrate(startupCtx, appCfg.DbServer.GetConnectionStr()); err != nil {
		logrus.WithError(err).Error("Failed to run migrations")
		return err
	}
	logrus.Info("Migrations applied")

	// The cache transport is chosen once for the process lifetime and
	// handed to every consumer explicitly.
	cacheTransport := cache.Select(appCfg.Cache.SocketPath, appCfg.Cache.URL)
	if _, noop := cacheTransport.(cache.NoopTransport); noop {
		logrus.Info("No redis configured, caching disabled")
	} else {
		logrus.Info("Redis cache transport selected")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories and services
	rateRepo := postgres.NewRateRepository(pool)
	currencyRepo := postgres.NewCurrencyRepository(pool)
	catalog := currency.NewCatalog(currencyRepo, cacheTransport, currency.DefaultTTL)
	engine := rate.NewEngine(rateRepo, catalog, cacheTransport, rate.DefaultTTL)

	// Ingestion
	feedTimeout := time.Duration(appCfg.Feed.TimeoutSeconds) * time.Second
	if feedTimeout <= 0 {
		feedTimeout = 10 * time.Second
	}
	feedClient := httpclient.NewECBFeedClient(&http.Client{Timeout: feedTimeout}, appCfg.Feed.URL)
	job := ingest.NewJob(engine, rateRepo, feedClient, clockwork.NewRealClock(), m, ingest.Config{
		MaxAttempts: appCfg.Ingest.MaxAttempts,
		RetryDelay:  time.Duration(appCfg.Ingest.RetryDelaySeconds) * time.Second,
	})
	scheduler := ingest.NewScheduler(job, time.Duration(appCfg.Ingest.IntervalMinutes)*time.Minute)
	// Ensure the scheduler stops before the DB pool closes
	defer func() {
		if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start ingestion scheduler")
		return startErr
	}
	logrus.Info("Ingestion scheduler started")

	// Handlers and router
	rateHandler := handler.NewRateHandler(engine, catalog, appCfg.Production)
	router := api.NewRouter(rateHandler, m)

	logrus.Info("Starting http server")
	// Block until the context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
