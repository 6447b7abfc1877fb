package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"gopkg.in/natefinch/lumberjack.v2"

	"scene-service/docs"
	"scene-service/internal/config"
	"scene-service/internal/contentfilter"
	"scene-service/internal/database"
	"scene-service/internal/handler"
	"scene-service/internal/metrics"
	"scene-service/internal/middleware"
	"scene-service/internal/poster"
	"scene-service/internal/repository"
	"scene-service/internal/service"
	"scene-service/internal/tmdb"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging, optionally mirrored to a rotating file
	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		}
		defer rotator.Close()
		out = io.MultiWriter(os.Stdout, rotator)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: cfg.Log.Level})))

	// Connect to PostgreSQL
	db, err := database.NewPostgres(cfg.DB)
	if err != nil {
		slog.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Connect to Redis (non-fatal if unavailable)
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without cache or rate limiting", "error", err)
	}

	catalog := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL,
		tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond),
		tmdb.WithRetries(cfg.TMDB.MaxRetries, 500*time.Millisecond),
	)

	rules := contentfilter.DefaultRules().WithExtra(cfg.Filter.BlockedIDs, cfg.Filter.BannedTerms)
	resolver := poster.NewResolver(cfg.Poster.ImageBaseURL, cfg.Poster.Placeholder)

	// Initialize layers
	activityRepo := repository.NewActivityRepository(db)
	posterRepo := repository.NewPosterRepository(db)

	searchSvc := service.NewSearchService(catalog, posterRepo, resolver, rules, poster.Size(cfg.Poster.ThumbSize), rdb)
	feedSvc := service.NewFeedService(activityRepo, posterRepo, catalog, resolver,
		poster.Size(cfg.Poster.ThumbSize), cfg.Feed.PageSize, cfg.Feed.MaxLogs)
	posterSvc := service.NewPosterService(posterRepo)

	searchHandler := handler.NewSearchHandler(searchSvc)
	feedHandler := handler.NewFeedHandler(feedSvc)
	posterHandler := handler.NewPosterHandler(posterSvc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Scene Service",
		ServerHeader: "Scene-Service",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.AuthMiddleware())
	app.Use(middleware.NewRateLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds).Handler())

	// Public routes
	app.Get("/health", handler.Health)
	app.Get("/metrics", metrics.Handler())
	handler.RegisterSwagger(app, "Scene Service", docs.Swagger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/search", searchHandler.Search)
	api.Get("/home", feedHandler.Home)
	api.Get("/users/:id/feed", feedHandler.FriendsFeed)
	api.Get("/users/:id/films", feedHandler.UserFilms)
	api.Post("/logs", feedHandler.CreateLog)
	api.Post("/logs/:id/like", feedHandler.ToggleLike)
	api.Post("/follows/:userId", feedHandler.Follow)
	api.Delete("/follows/:userId", feedHandler.Unfollow)
	api.Post("/posters/batch", posterHandler.Batch)
	api.Put("/posters/:movieId", posterHandler.Set)
	api.Delete("/posters/:movieId", posterHandler.Clear)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		slog.Info("starting scene service", "addr", addr)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down scene service...")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	slog.Info("scene service shutdown complete")
}
