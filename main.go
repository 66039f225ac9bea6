package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelar/vidshelf-be/internal/api"
	"github.com/avelar/vidshelf-be/internal/auth"
	"github.com/avelar/vidshelf-be/internal/config"
	"github.com/avelar/vidshelf-be/internal/database"
	"github.com/avelar/vidshelf-be/internal/janitor"
	"github.com/avelar/vidshelf-be/internal/logger"
	"github.com/avelar/vidshelf-be/internal/services"
	"github.com/avelar/vidshelf-be/internal/storage"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	auth.Init(cfg.JWTSecret)

	// Set up the asset store for uploaded images
	assets, err := storage.NewStore(cfg.UploadsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize asset store")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, assets, eventService)
	videoService := services.NewVideoService(db, assets, eventService)
	categoryService := services.NewCategoryService(db, assets, eventService)

	// Set up and run the background asset janitor
	sweeper, err := janitor.NewSweeper(db, assets, cfg.JanitorSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize asset janitor")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(userService, videoService, categoryService, eventService, assets, cfg.CORSOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
