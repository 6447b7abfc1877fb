package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// LogMovie is the movie attached to an activity log. The backend sends either a nested
// object or a bare id; the latter lands in Ref.
type LogMovie struct {
	ID         FlexID `json:"id"`
	Title      string `json:"title,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
	PosterURL  string `json:"poster_url,omitempty"`
	Ref        FlexID `json:"-"`
}

type logMovieObject LogMovie

func (m *LogMovie) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj logMovieObject
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		*m = LogMovie(obj)
		return nil
	}
	*m = LogMovie{}
	return m.Ref.UnmarshalJSON(trimmed)
}

func (m LogMovie) MarshalJSON() ([]byte, error) {
	if !m.ID.Present() && m.Ref.Present() {
		return m.Ref.MarshalJSON()
	}
	return json.Marshal(logMovieObject(m))
}

// ActivityLogEntry is one user's rating, review or rewatch of one movie.
type ActivityLogEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	MovieID        FlexID    `json:"movie_id"`
	Movie          *LogMovie `json:"movie,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Rating         *float64  `json:"rating,omitempty"`
	ReviewText     string    `json:"review_text,omitempty"`
	RewatchCount   int       `json:"rewatch_count,omitempty"`
	PosterOverride string    `json:"poster_override,omitempty"`
	PosterURL      string    `json:"poster_url,omitempty"`
	LikeCount      int       `json:"like_count"`
	LikedByViewer  bool      `json:"liked_by_viewer"`
}

// HasReview reports whether the entry carries review text.
func (e ActivityLogEntry) HasReview() bool {
	return strings.TrimSpace(e.ReviewText) != ""
}

// HasRating reports whether the entry carries a star rating. Zero means unrated.
func (e ActivityLogEntry) HasRating() bool {
	return e.Rating != nil && *e.Rating > 0
}

// HasRewatch reports whether the entry is a rewatch.
func (e ActivityLogEntry) HasRewatch() bool {
	return e.RewatchCount > 0
}

// CreateLogRequest is the request body for logging a movie.
type CreateLogRequest struct {
	Movie          any            `json:"movie"`
	Rating         *float64       `json:"rating"`
	ReviewText     string         `json:"review_text"`
	RewatchCount   int            `json:"rewatch_count"`
	PosterOverride string         `json:"poster_override"`
}

// FeedResponse is one page of a deduplicated activity feed.
type FeedResponse struct {
	UserID       string             `json:"user_id"`
	Page         int                `json:"page"`
	PageSize     int                `json:"page_size"`
	TotalPages   int                `json:"total_pages"`
	TotalResults int                `json:"total_results"`
	Data         []ActivityLogEntry `json:"data"`
}

// PosterBatchRequest asks for the viewer's custom posters for a set of movies.
type PosterBatchRequest struct {
	MovieIDs []int `json:"movie_ids"`
}

// SetPosterRequest is the request body for choosing a custom poster.
type SetPosterRequest struct {
	URL string `json:"url"`
}
