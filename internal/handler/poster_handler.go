package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"scene-service/internal/middleware"
	"scene-service/internal/models"
)

// PosterHandler handles the viewer's custom posters.
type PosterHandler struct {
	svc Posters
}

// NewPosterHandler creates a new PosterHandler.
func NewPosterHandler(svc Posters) *PosterHandler {
	return &PosterHandler{svc: svc}
}

// Batch returns the viewer's custom posters for a set of movies.
// @Summary Viewer poster map
// @Tags posters
// @Accept json
// @Produce json
// @Param body body models.PosterBatchRequest true "Movie IDs"
// @Success 200 {object} models.ViewerPosterMap
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/posters/batch [post]
func (h *PosterHandler) Batch(c fiber.Ctx) error {
	var req models.PosterBatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	m, err := h.svc.Batch(c.Context(), middleware.ViewerID(c), req.MovieIDs)
	if err != nil {
		return writeError(c, err, "failed to load posters")
	}
	return c.JSON(m)
}

// Set stores the viewer's custom poster for a movie.
// @Summary Set custom poster
// @Tags posters
// @Accept json
// @Param movieId path int true "Movie ID"
// @Param body body models.SetPosterRequest true "Poster URL"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/posters/{movieId} [put]
func (h *PosterHandler) Set(c fiber.Ctx) error {
	movieID, err := strconv.Atoi(c.Params("movieId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	var req models.SetPosterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if err := h.svc.Set(c.Context(), middleware.ViewerID(c), movieID, req.URL); err != nil {
		return writeError(c, err, "failed to set poster")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear removes the viewer's custom poster for a movie.
// @Summary Clear custom poster
// @Tags posters
// @Param movieId path int true "Movie ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/posters/{movieId} [delete]
func (h *PosterHandler) Clear(c fiber.Ctx) error {
	movieID, err := strconv.Atoi(c.Params("movieId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid movie ID"})
	}

	if err := h.svc.Clear(c.Context(), middleware.ViewerID(c), movieID); err != nil {
		return writeError(c, err, "failed to clear poster")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
