package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"scene-service/internal/models"
	"scene-service/internal/poster"
)

// PosterRepository stores each viewer's custom posters.
type PosterRepository struct {
	db *sql.DB
}

// NewPosterRepository creates a new PosterRepository.
func NewPosterRepository(db *sql.DB) *PosterRepository {
	return &PosterRepository{db: db}
}

// GetViewerPosters returns the viewer's custom posters for the given movies. Postgres
// builds the id -> url object; malformed values are dropped while decoding.
func (r *PosterRepository) GetViewerPosters(ctx context.Context, userID string, movieIDs []int) (models.ViewerPosterMap, error) {
	if len(movieIDs) == 0 {
		return models.ViewerPosterMap{}, nil
	}
	ids := make([]int64, len(movieIDs))
	for i, id := range movieIDs {
		ids[i] = int64(id)
	}

	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(json_object_agg(movie_id::text, url), '{}'::json)
		FROM viewer_posters
		WHERE user_id = $1 AND movie_id = ANY($2)
	`, userID, pq.Array(ids)).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewer posters: %w", err)
	}
	return poster.DecodeViewerPosterMap(raw)
}

// SetPoster creates or replaces the viewer's poster for a movie.
func (r *PosterRepository) SetPoster(ctx context.Context, userID string, movieID int, url string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO viewer_posters (user_id, movie_id, url, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			url = EXCLUDED.url,
			updated_at = NOW()
	`, userID, movieID, url)
	if err != nil {
		return fmt.Errorf("failed to upsert poster: %w", err)
	}
	return nil
}

// DeletePoster removes the viewer's poster for a movie. It reports whether one existed.
func (r *PosterRepository) DeletePoster(ctx context.Context, userID string, movieID int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM viewer_posters WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("failed to delete poster: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
