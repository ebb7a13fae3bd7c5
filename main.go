package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/notes-be/internal/api"
	"github.com/isdelr/notes-be/internal/auth"
	"github.com/isdelr/notes-be/internal/config"
	"github.com/isdelr/notes-be/internal/database"
	"github.com/isdelr/notes-be/internal/logger"
	"github.com/isdelr/notes-be/internal/services"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/isdelr/notes-be/internal/store/mongostore"
	"github.com/isdelr/notes-be/internal/store/sqlstore"
	"github.com/isdelr/notes-be/internal/store/surrealstore"
	"github.com/isdelr/notes-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up storage
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to initialize store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run(ctx)

	// Set up services
	issuer := auth.NewTokenIssuer(cfg.Secret, cfg.TokenTTL)
	userService := services.NewUserService(st)

	router := api.NewRouter(api.Dependencies{
		Tokens:         issuer,
		Notes:          services.NewNoteService(st, hub),
		Users:          userService,
		Login:          services.NewLoginService(st, issuer),
		Teams:          services.NewTeamService(st),
		Health:         st,
		Hub:            hub,
		AllowedOrigins: cfg.CORSOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("driver", cfg.DBDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverSQLite:
		return sqlstore.Open(ctx, database.SQLite, cfg.DatabaseURL)
	case config.DriverPostgres:
		return sqlstore.Open(ctx, database.Postgres, cfg.DatabaseURL)
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
	case config.DriverSurreal:
		return surrealstore.Open(ctx, surrealstore.Config{
			URL:       cfg.DatabaseURL,
			Namespace: cfg.SurrealNamespace,
			Database:  cfg.SurrealDatabase,
			Username:  cfg.SurrealUser,
			Password:  cfg.SurrealPass,
		})
	}
	return nil, fmt.Errorf("unsupported driver %q", cfg.DBDriver)
}
