// cmd/polyphona/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"polyphona/config"
	"polyphona/internal/api"
	"polyphona/internal/api/handlers/songs"
	"polyphona/internal/api/handlers/tokens"
	"polyphona/internal/api/handlers/users"
	"polyphona/internal/lib/logger/utils"
	"polyphona/internal/service"
	"polyphona/internal/storage/postgres"
	_ "polyphona/swagger" // Import generated swagger docs

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
)

// @title Polyphona Song Store API
// @version 1.0
// @description Multi-tenant song storage: users, bearer tokens and song documents.

// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization

func main() {
	// 1. Logger
	if err := utils.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Logger.Sync()

	utils.Logger.Info("Starting Polyphona Song Store API")

	// 2. Configuration
	godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.Logger.Fatal("Config load failed", zap.Error(err))
		return
	}
	utils.Logger.Debug("Configuration loaded", zap.Any("config", cfg))

	// 3. Database connection and migrations
	conn, err := pgx.Connect(context.Background(), cfg.DBURL)
	if err != nil {
		utils.Logger.Fatal("Database connection failed", zap.Error(err))
		return
	}
	defer conn.Close(context.Background())
	utils.Logger.Info("Database connected")

	if err := runMigrations(cfg.DBURL); err != nil {
		utils.Logger.Fatal("Database migration failed", zap.Error(err))
		return
	}
	utils.Logger.Info("Database migrations completed successfully")

	// 4. Storage and services
	pgStorage := postgres.NewPgStorage(conn)
	songService := service.NewSongService(pgStorage, pgStorage)
	userService := service.NewUserService(pgStorage)
	tokenService := service.NewTokenService(pgStorage, pgStorage)

	// One best-effort sweep of stale tokens at startup. There is no
	// background scheduler; the sweep is idempotent and can be re-run by
	// restarting the process.
	if _, err := tokenService.SweepExpired(context.Background(), time.Now().UTC()); err != nil {
		utils.Logger.Warn("Startup token sweep failed", zap.Error(err))
	}

	// 5. Handlers and router
	songHandlers := songs.NewSongHandlers(songService)
	userHandlers := users.NewUserHandlers(userService)
	tokenHandlers := tokens.NewTokenHandlers(tokenService)

	router := api.NewRouter(songHandlers, userHandlers, tokenHandlers, tokenService)

	// CORS is wide open: clients are desktop apps calling from arbitrary
	// origins.
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	// 6. Server
	serverAddr := fmt.Sprintf(":%d", cfg.ServerPort)
	utils.Logger.Info("Server starting", zap.String("address", serverAddr))
	log.Fatal(http.ListenAndServe(serverAddr, cors(router)))
}

func runMigrations(dbURL string) error {
	migrationSourceURL := "file://internal/migrations"
	m, err := migrate.New(migrationSourceURL, dbURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migration: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
