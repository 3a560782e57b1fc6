package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"client_manager_backend/internal/config"
	"client_manager_backend/internal/database"
	"client_manager_backend/internal/router"
	"client_manager_backend/internal/services"
	"client_manager_backend/pkg/utils"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", "console")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize Logger
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	tokens, err := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure JWT")
	}
	if cfg.JWTSecret == config.DevJWTSecret {
		utils.LogWarn(nil, "JWT_SECRET not set; using the development secret")
	}

	engine := router.NewEngine(cfg)
	app := router.Setup(engine, db, cfg, tokens)

	if cfg.SeedDatabase {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		services.NewSeedService(app.AuthService, app.ClientService).Seed(ctx, cfg.AdminEmail, cfg.AdminPassword)
		cancel()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port":                    cfg.Port,
			"env":                     cfg.AppEnv,
			"view_touches_updated_at": cfg.ViewTouchesUpdatedAt,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.LogInfo("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}
