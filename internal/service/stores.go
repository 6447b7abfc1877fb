package service

import (
	"context"

	"scene-service/internal/models"
	"scene-service/internal/tmdb"
)

// Catalog is the external movie catalog.
type Catalog interface {
	SearchMovies(ctx context.Context, query string, page int) (*tmdb.SearchResponse, error)
	GetMovieDetail(ctx context.Context, tmdbID int) (*tmdb.MovieDetail, error)
}

// ActivityStore persists logs, likes and follows.
type ActivityStore interface {
	CreateLog(ctx context.Context, e *models.ActivityLogEntry, movie models.PayloadMovie) error
	ListUserLogs(ctx context.Context, viewerID, userID string, limit int) ([]models.ActivityLogEntry, error)
	ListFriendsLogs(ctx context.Context, viewerID, userID string, limit int) ([]models.ActivityLogEntry, error)
	ToggleLike(ctx context.Context, logID, userID string) (bool, int, error)
	LogExists(ctx context.Context, logID string) (bool, error)
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
}

// PosterStore persists each viewer's custom posters.
type PosterStore interface {
	GetViewerPosters(ctx context.Context, userID string, movieIDs []int) (models.ViewerPosterMap, error)
	SetPoster(ctx context.Context, userID string, movieID int, url string) error
	DeletePoster(ctx context.Context, userID string, movieID int) (bool, error)
}
