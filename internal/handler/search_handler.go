package handler

import (
	"github.com/gofiber/fiber/v3"

	"scene-service/internal/middleware"
)

// SearchHandler handles catalog search requests.
type SearchHandler struct {
	svc Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(svc Searcher) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search returns displayable catalog matches for a query.
// @Summary Search movies
// @Tags search
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/search [get]
func (h *SearchHandler) Search(c fiber.Ctx) error {
	resp, err := h.svc.Search(c.Context(), middleware.ViewerID(c), c.Query("q"), fiber.Query(c, "page", 1))
	if err != nil {
		return writeError(c, err, "failed to search movies")
	}
	return c.JSON(resp)
}
