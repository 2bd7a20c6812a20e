package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pkordes/stashport/internal/config"
	"github.com/pkordes/stashport/internal/handler"
	"github.com/pkordes/stashport/internal/middleware"
	"github.com/pkordes/stashport/internal/render"
	"github.com/pkordes/stashport/internal/repo"
	"github.com/pkordes/stashport/internal/service"
	"github.com/pkordes/stashport/internal/storage"
)

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closer, err := setup(*envFile)
			if err != nil {
				return err
			}
			defer closer.Close()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Info("database connection established")

	// --- Services ---------------------------------------------------------
	repos := repo.New(pool)
	itineraries := service.NewItineraryService(repos, logger)
	uploads := storage.NewLocal(cfg.UploadDir, cfg.UploadBaseURL)

	srv := handler.NewServer(handler.Services{
		Itineraries: itineraries,
		Export:      service.NewExportService(itineraries),
		Share:       service.NewShareService(itineraries, repos.Profiles, render.NewCards(), logger),
		Covers:      service.NewCoverService(uploads, cfg.MaxUploadBytes),
		DB:          pool,
	}, logger, handler.Limits{
		MaxBodyBytes:   cfg.MaxBodyBytes,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	// --- Router -----------------------------------------------------------
	// RequestID and RealIP run first so the request logger can record them.
	// Recoverer turns panics into a 500 instead of crashing the process.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewIdentityHandler(middleware.IdentityHeaders{
		UserID: cfg.AuthUserHeader,
		Email:  cfg.AuthEmailHeader,
		Name:   cfg.AuthNameHeader,
	}))
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)

	if prefix := strings.TrimRight(cfg.UploadBaseURL, "/"); strings.HasPrefix(prefix, "/") {
		r.Handle(prefix+"/*", http.StripPrefix(prefix, noDirListing(http.FileServer(http.Dir(uploads.Root())))))
	}
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown: wait for a signal, then give in-flight requests up
	// to 15 seconds to complete.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// noDirListing answers 404 for directory paths so uploads cannot be enumerated.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
