package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yigit/skillswap/internal/bootstrap"
	"github.com/yigit/skillswap/internal/config"
	"github.com/yigit/skillswap/internal/db"
	"github.com/yigit/skillswap/internal/pkg/helpers"
	"github.com/yigit/skillswap/internal/pkg/telemetry"
)

// Server holds the state for the HTTP server.
type Server struct {
	config  *config.Config
	router  *gin.Engine
	dbPool  *pgxpool.Pool
	mongo   *db.MongoClient
	deps    *bootstrap.Dependencies
	tracing telemetry.ShutdownFunc
	logger  zerolog.Logger
	http    *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	tracing, err := bootstrap.SetupTelemetry(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}

	dbPool, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		_ = tracing(context.Background())
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	messages, mongoClient, err := bootstrap.SetupMessageStore(ctx, cfg, lgr)
	if err != nil {
		dbPool.Close()
		_ = tracing(context.Background())
		return nil, fmt.Errorf("failed to setup message store: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, messages, lgr)
	if err != nil {
		dbPool.Close()
		_ = tracing(context.Background())
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}
	bootstrap.PruneTokens(ctx, deps, lgr)
	bootstrap.SeedData(ctx, cfg, deps, lgr)

	s := &Server{
		config:  cfg,
		router:  bootstrap.SetupRouter(cfg, deps, lgr),
		dbPool:  dbPool,
		mongo:   mongoClient,
		deps:    deps,
		tracing: tracing,
		logger:  lgr,
	}

	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	// No WriteTimeout: WebSocket streams are long-lived.
	s.http = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := helpers.ParseDuration(s.config.Server.ShutdownTimeout, 10*time.Second)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var shutdownErr error

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	// Hijacked WebSocket connections are not tracked by http.Server.
	if s.deps != nil {
		s.logger.Info().Int("clients", s.deps.Hub.ClientCount()).Msg("Closing live query streams...")
		s.deps.Close()
	}

	if s.tracing != nil {
		if err := s.tracing(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Tracer flush error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if s.mongo != nil {
		s.logger.Info().Msg("Disconnecting from MongoDB...")
		if err := s.mongo.Close(ctx); err != nil {
			s.logger.Error().Err(err).Msg("MongoDB disconnect error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if s.dbPool != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.dbPool.Close()
		s.logger.Info().Msg("Database connection pool closed.")
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown completed with errors: %w", shutdownErr)
	}
	return nil
}
