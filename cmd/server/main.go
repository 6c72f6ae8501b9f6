package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/campushub/campus-feed/pkg/campusfeed"
	"github.com/campushub/campus-feed/pkg/campusfeed/api"
	"github.com/campushub/campus-feed/pkg/campusfeed/config"
	memstore "github.com/campushub/campus-feed/pkg/campusfeed/store/memory"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Environment == "development" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx := context.Background()

	primary, err := cfg.BuildDocStore(ctx)
	if err != nil {
		return fmt.Errorf("build doc store: %w", err)
	}
	blobs, err := cfg.BuildBlobStore()
	if err != nil {
		return fmt.Errorf("build blob store: %w", err)
	}
	urls := cfg.BuildURLResolver()

	// Each source gets its own fallback so one degraded adapter does not
	// blank out the others' substitute data.
	instituteStore := campusfeed.NewFallbackStore(primary, memstore.New(), campusfeed.WithFallbackLogger(logger))
	recruiterStore := campusfeed.NewFallbackStore(primary, memstore.New(), campusfeed.WithFallbackLogger(logger))
	staffStore := campusfeed.NewFallbackStore(primary, memstore.New(), campusfeed.WithFallbackLogger(logger))

	institute := campusfeed.NewInstituteAdapter(instituteStore).AsSource()
	recruiter := campusfeed.NewRecruiterAdapter(recruiterStore).AsSource()
	staff := campusfeed.NewStaffAdapter(staffStore).AsSource()

	assets, err := campusfeed.NewAssetManager(blobs, urls, campusfeed.WithAssetLogger(logger))
	if err != nil {
		return fmt.Errorf("build asset manager: %w", err)
	}

	hub := campusfeed.NewHub(campusfeed.WithHubLogger(logger))

	gateway, err := campusfeed.NewGateway(
		campusfeed.WithSource(institute),
		campusfeed.WithSource(recruiter),
		campusfeed.WithSource(staff),
		campusfeed.WithAssetManager(assets),
		campusfeed.WithPublisher(hub),
		campusfeed.WithGatewayLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}

	aggregator, err := campusfeed.NewAggregator(
		campusfeed.WithFeedSource(institute),
		campusfeed.WithFeedSource(recruiter),
		campusfeed.WithFeedSource(staff),
		campusfeed.WithAggregatorLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("build aggregator: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/", api.NewContentHandler(gateway, aggregator).Routes())
		r.Mount("/admin", api.NewAdminHandler(gateway, hub, logger).Routes())
		r.Mount("/assets", api.NewAssetHandler(assets).Routes())
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting campus feed server", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
