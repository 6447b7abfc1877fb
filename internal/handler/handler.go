package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"scene-service/internal/models"
	"scene-service/internal/service"
)

// Searcher runs filtered catalog searches.
type Searcher interface {
	Search(ctx context.Context, viewerID, query string, page int) (*models.SearchResponse, error)
}

// Feeds builds feeds and records activity.
type Feeds interface {
	FriendsFeed(ctx context.Context, viewerID, userID string, page int) (*models.FeedResponse, error)
	UserFilms(ctx context.Context, viewerID, userID string, page int) (*models.FeedResponse, error)
	Home(ctx context.Context, viewerID string) (*service.HomeResponse, error)
	CreateLog(ctx context.Context, userID string, req models.CreateLogRequest) (*models.ActivityLogEntry, error)
	ToggleLike(ctx context.Context, viewerID, logID string) (bool, int, error)
	Follow(ctx context.Context, viewerID, userID string) error
	Unfollow(ctx context.Context, viewerID, userID string) error
}

// Posters manages viewers' custom posters.
type Posters interface {
	Batch(ctx context.Context, viewerID string, movieIDs []int) (models.ViewerPosterMap, error)
	Set(ctx context.Context, viewerID string, movieID int, url string) error
	Clear(ctx context.Context, viewerID string, movieID int) error
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "scene-service",
	})
}

// writeError maps service errors to HTTP statuses. Unexpected errors are logged and
// reported without detail.
func writeError(c fiber.Ctx, err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrQueryBanned):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: service.ErrQueryBanned.Error()})
	case errors.Is(err, service.ErrInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}
	slog.Error(msg, "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: msg})
}
