// Command gateway runs the Amooora HTTP API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	app "github.com/ninamcunha/amooora-backend/internal/app"
	"github.com/ninamcunha/amooora-backend/internal/app/httpapi"
	"github.com/ninamcunha/amooora-backend/internal/app/storage/postgres"
	supabasestore "github.com/ninamcunha/amooora-backend/internal/app/storage/supabase"
	"github.com/ninamcunha/amooora-backend/internal/config"
	"github.com/ninamcunha/amooora-backend/internal/localstore"
	"github.com/ninamcunha/amooora-backend/internal/metrics"
	"github.com/ninamcunha/amooora-backend/internal/middleware"
	"github.com/ninamcunha/amooora-backend/pkg/logger"
	"github.com/ninamcunha/amooora-backend/supabase/client"
)

func main() {
	var (
		envFile  = flag.String("env", ".env", "Path to .env file (missing file is ignored)")
		yamlFile = flag.String("config", "", "Optional YAML config overlay")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile, *yamlFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("gateway", cfg.Log.Level)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("gateway exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	m := metrics.New("amooora")

	var (
		stores    app.Stores
		opts      = app.Options{Metrics: m}
		sbClient  *client.Client
		closeFunc func()
	)

	switch cfg.Backend {
	case config.BackendSupabase:
		resilient := client.NewResilientClient(client.ResilientClientConfig{
			RetryConfig:          client.DefaultRetryConfig(),
			CircuitBreakerConfig: client.DefaultCircuitBreakerConfig(),
		})
		c, err := client.New(client.Config{
			URL:        cfg.Supabase.URL,
			APIKey:     cfg.Supabase.AnonKey,
			HTTPClient: resilient,
		})
		if err != nil {
			return fmt.Errorf("supabase client: %w", err)
		}
		sbClient = c
		store := supabasestore.New(c, log)
		stores = app.Stores{Posts: store, Replies: store, Likes: store, Catalog: store, Profiles: store}
		opts.Media = c.Storage()
		if cfg.Supabase.Realtime {
			opts.Realtime = client.NewRealtimeClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)
		}

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		store := postgres.New(db)
		stores = app.Stores{Posts: store, Replies: store, Likes: store, Catalog: store, Profiles: store}
		closeFunc = func() { _ = db.Close() }

	case config.BackendMemory:
		log.Warn("memory backend selected; data will not survive restarts")
	}
	if closeFunc != nil {
		defer closeFunc()
	}

	device, err := localstore.Open(cfg.Device.Path)
	if err != nil {
		return fmt.Errorf("open device store: %w", err)
	}
	defer device.Close()
	opts.Device = device

	application, err := app.New(stores, opts, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	router := httpapi.NewRouter(application)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Metrics("gateway", m))

	var resolver middleware.TokenResolver
	if sbClient != nil {
		resolver = sbClient
	}
	auth := middleware.NewAuth(cfg.Supabase.JWTSecret, resolver, log)

	limiter := middleware.NewRateLimiter(cfg.Server.RatePerSecond, cfg.Server.RateBurst, log)
	done := make(chan struct{})
	defer close(done)
	limiter.StartCleanup(10*time.Minute, done)

	cors := middleware.NewCORS(cfg.Server.Origins())

	handler := cors.Handler(auth.Handler(limiter.Handler(router)))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("gateway listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		_ = application.Stop(context.Background())
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	return application.Stop(shutdownCtx)
}
