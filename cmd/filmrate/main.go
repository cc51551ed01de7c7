package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"filmrate/internal/api"
	"filmrate/internal/config"
	"filmrate/internal/service"
	"filmrate/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	validate := validator.New()
	cfg := config.Load()

	db, err := store.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureSchema(ctx, db); err != nil {
		cancel()
		logger.Error("Failed to apply database schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cancel()
	logger.Info("Database schema ensured")

	var popular service.PopularCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("Failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		popular = store.NewPopularCache(redisClient, cfg.PopularTTL, logger)
		logger.Info("Popular films cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	userStore := store.NewPostgresUserStore(db, logger)
	friendStore := store.NewPostgresFriendStore(db, logger)
	filmStore := store.NewPostgresFilmStore(db, logger)
	mpaStore := store.NewPostgresMpaStore(db, logger)
	genreStore := store.NewPostgresGenreStore(db, logger)
	filmGenreStore := store.NewPostgresFilmGenreStore(db, logger)
	likeStore := store.NewPostgresLikeStore(db, logger)

	userService := service.NewUserService(userStore, friendStore, popular, validate, logger)
	filmService := service.NewFilmService(
		filmStore, mpaStore, genreStore, filmGenreStore, userStore, likeStore,
		popular, validate, logger)

	handler := api.NewHTTPHandler(userService, filmService, logger)
	router := api.NewHTTPRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", slog.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	logger.Info("Server stopped")
}
