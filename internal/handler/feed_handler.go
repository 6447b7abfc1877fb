package handler

import (
	"github.com/gofiber/fiber/v3"

	"scene-service/internal/middleware"
	"scene-service/internal/models"
)

// FeedHandler handles feeds, activity logs, likes and follows.
type FeedHandler struct {
	svc Feeds
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(svc Feeds) *FeedHandler {
	return &FeedHandler{svc: svc}
}

// FriendsFeed returns a page of the friends activity feed for a user.
// @Summary Friends feed
// @Tags feed
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} models.FeedResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{id}/feed [get]
func (h *FeedHandler) FriendsFeed(c fiber.Ctx) error {
	resp, err := h.svc.FriendsFeed(c.Context(), middleware.ViewerID(c), c.Params("id"), fiber.Query(c, "page", 1))
	if err != nil {
		return writeError(c, err, "failed to load feed")
	}
	return c.JSON(resp)
}

// UserFilms returns a page of a user's own films.
// @Summary User films
// @Tags feed
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} models.FeedResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/users/{id}/films [get]
func (h *FeedHandler) UserFilms(c fiber.Ctx) error {
	resp, err := h.svc.UserFilms(c.Context(), middleware.ViewerID(c), c.Params("id"), fiber.Query(c, "page", 1))
	if err != nil {
		return writeError(c, err, "failed to load films")
	}
	return c.JSON(resp)
}

// Home returns the first page of the viewer's friends and own rows.
// @Summary Home screen
// @Tags feed
// @Produce json
// @Success 200 {object} service.HomeResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/home [get]
func (h *FeedHandler) Home(c fiber.Ctx) error {
	resp, err := h.svc.Home(c.Context(), middleware.ViewerID(c))
	if err != nil {
		return writeError(c, err, "failed to load home")
	}
	return c.JSON(resp)
}

// CreateLog records a rating, review or rewatch for the viewer.
// @Summary Log a movie
// @Tags logs
// @Accept json
// @Produce json
// @Param body body models.CreateLogRequest true "Log"
// @Success 201 {object} models.ActivityLogEntry
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/logs [post]
func (h *FeedHandler) CreateLog(c fiber.Ctx) error {
	var req models.CreateLogRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	entry, err := h.svc.CreateLog(c.Context(), middleware.ViewerID(c), req)
	if err != nil {
		return writeError(c, err, "failed to create log")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// ToggleLike likes or unlikes a log for the viewer.
// @Summary Toggle like
// @Tags logs
// @Produce json
// @Param id path string true "Log ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/logs/{id}/like [post]
func (h *FeedHandler) ToggleLike(c fiber.Ctx) error {
	liked, count, err := h.svc.ToggleLike(c.Context(), middleware.ViewerID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err, "failed to toggle like")
	}
	return c.JSON(fiber.Map{
		"log_id":          c.Params("id"),
		"liked_by_viewer": liked,
		"like_count":      count,
	})
}

// Follow makes the viewer follow a user.
// @Summary Follow user
// @Tags follows
// @Param userId path string true "User ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/follows/{userId} [post]
func (h *FeedHandler) Follow(c fiber.Ctx) error {
	if err := h.svc.Follow(c.Context(), middleware.ViewerID(c), c.Params("userId")); err != nil {
		return writeError(c, err, "failed to follow user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Unfollow removes the viewer's follow of a user.
// @Summary Unfollow user
// @Tags follows
// @Param userId path string true "User ID"
// @Success 204
// @Router /api/v1/follows/{userId} [delete]
func (h *FeedHandler) Unfollow(c fiber.Ctx) error {
	if err := h.svc.Unfollow(c.Context(), middleware.ViewerID(c), c.Params("userId")); err != nil {
		return writeError(c, err, "failed to unfollow user")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
