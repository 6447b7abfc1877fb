package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scene-service/internal/models"
	"scene-service/internal/poster"
)

// maxPosterBatch caps how many ids one batch lookup may carry.
const maxPosterBatch = 200

// PosterService manages viewers' custom posters.
type PosterService struct {
	store PosterStore
}

// NewPosterService creates a new PosterService.
func NewPosterService(store PosterStore) *PosterService {
	return &PosterService{store: store}
}

// Batch returns the viewer's custom posters for the given movie ids. Ids without an
// override are absent from the map.
func (s *PosterService) Batch(ctx context.Context, viewerID string, movieIDs []int) (models.ViewerPosterMap, error) {
	seen := make(map[int]struct{}, len(movieIDs))
	ids := make([]int, 0, len(movieIDs))
	for _, id := range movieIDs {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > maxPosterBatch {
		return nil, fmt.Errorf("%w: at most %d movie ids per request", ErrInvalid, maxPosterBatch)
	}
	if len(ids) == 0 {
		return models.ViewerPosterMap{}, nil
	}

	m, err := s.store.GetViewerPosters(ctx, viewerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load viewer posters: %w", err)
	}
	if m == nil {
		m = models.ViewerPosterMap{}
	}
	return m, nil
}

// Set stores the viewer's custom poster for a movie.
func (s *PosterService) Set(ctx context.Context, viewerID string, movieID int, url string) error {
	url = strings.TrimSpace(url)
	if movieID <= 0 {
		return fmt.Errorf("%w: invalid movie id", ErrInvalid)
	}
	if !poster.IsHTTPURL(url) {
		return fmt.Errorf("%w: url must be an http(s) URL", ErrInvalid)
	}
	if err := s.store.SetPoster(ctx, viewerID, movieID, url); err != nil {
		return fmt.Errorf("set poster: %w", err)
	}
	slog.Info("custom poster set", "viewer_id", viewerID, "movie_id", movieID)
	return nil
}

// Clear removes the viewer's custom poster for a movie.
func (s *PosterService) Clear(ctx context.Context, viewerID string, movieID int) error {
	if movieID <= 0 {
		return fmt.Errorf("%w: invalid movie id", ErrInvalid)
	}
	existed, err := s.store.DeletePoster(ctx, viewerID, movieID)
	if err != nil {
		return fmt.Errorf("clear poster: %w", err)
	}
	if !existed {
		return fmt.Errorf("poster for movie %d: %w", movieID, ErrNotFound)
	}
	return nil
}
