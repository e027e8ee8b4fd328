// cmd/member/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"tryeat/internal/config"
	"tryeat/internal/eventstore"
	"tryeat/internal/member"
	"tryeat/internal/server"
	"tryeat/internal/telemetry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("CONFIG_ENV") == "" || os.Getenv("CONFIG_ENV") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, "tryeat-member")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up telemetry")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("database is unreachable")
	}

	es := eventstore.New(db)
	if err := es.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate event store")
	}
	if err := member.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate member tables")
	}

	svc := member.NewService(es, db, newLimiter(cfg.RateLimit))
	handler := member.NewHandler(svc, member.Options{
		BaseURL:        cfg.Location.BaseURL,
		LegacyLocation: cfg.Location.Legacy,
		LegacyErrors:   cfg.Response.LegacyErrors,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(log.Logger, handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("mode", cfg.Mode).Msg("member service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to flush telemetry")
	}
	log.Info().Msg("server exited gracefully")
}

func newLimiter(cfg config.RateLimit) *rate.Limiter {
	if cfg.PerMinute <= 0 {
		return nil
	}
	// A zero burst would reject every request.
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.PerMinute)), burst)
}
