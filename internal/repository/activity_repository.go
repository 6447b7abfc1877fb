package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scene-service/internal/models"
)

// ActivityRepository handles database operations for activity logs, likes and follows.
type ActivityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// $1 is always the viewer id.
const selectLogs = `
	SELECT l.id, l.user_id, l.movie_id, l.title, l.poster_path, l.poster_url,
		l.poster_override, l.rating, l.review_text, l.rewatch_count, l.created_at,
		(SELECT COUNT(*) FROM log_likes k WHERE k.log_id = l.id) AS like_count,
		EXISTS (SELECT 1 FROM log_likes k WHERE k.log_id = l.id AND k.user_id = $1) AS liked_by_viewer
	FROM activity_logs l
`

// CreateLog stores a new log entry and fills in its id and timestamp.
func (r *ActivityRepository) CreateLog(ctx context.Context, e *models.ActivityLogEntry, movie models.PayloadMovie) error {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()

	var rating sql.NullFloat64
	if e.Rating != nil {
		rating = sql.NullFloat64{Float64: *e.Rating, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, user_id, movie_id, title, poster_path, poster_url,
			poster_override, rating, review_text, rewatch_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.UserID, movie.ID, movie.Title, movie.PosterPath, movie.PosterURL,
		movie.PosterOverride, rating, e.ReviewText, e.RewatchCount, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

// ListUserLogs returns a user's logs, newest first.
func (r *ActivityRepository) ListUserLogs(ctx context.Context, viewerID, userID string, limit int) ([]models.ActivityLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectLogs+`
		WHERE l.user_id = $2
		ORDER BY l.created_at DESC
		LIMIT $3
	`, viewerID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("user logs query failed: %w", err)
	}
	defer rows.Close()
	return scanLogs(rows)
}

// ListFriendsLogs returns logs written by everyone userID follows, newest first.
func (r *ActivityRepository) ListFriendsLogs(ctx context.Context, viewerID, userID string, limit int) ([]models.ActivityLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectLogs+`
		INNER JOIN follows f ON f.followee_id = l.user_id
		WHERE f.follower_id = $2
		ORDER BY l.created_at DESC
		LIMIT $3
	`, viewerID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("friends logs query failed: %w", err)
	}
	defer rows.Close()
	return scanLogs(rows)
}

// ToggleLike flips the viewer's like on a log and returns the new state. The insert
// never conflicts, so concurrent toggles by one viewer settle on a consistent row.
func (r *ActivityRepository) ToggleLike(ctx context.Context, logID, userID string) (bool, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO log_likes (log_id, user_id) VALUES ($1, $2)
		ON CONFLICT (log_id, user_id) DO NOTHING
	`, logID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to add like: %w", err)
	}
	added, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}
	liked := added > 0
	if !liked {
		if _, err := tx.ExecContext(ctx, `DELETE FROM log_likes WHERE log_id = $1 AND user_id = $2`, logID, userID); err != nil {
			return false, 0, fmt.Errorf("failed to remove like: %w", err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_likes WHERE log_id = $1`, logID).Scan(&count); err != nil {
		return false, 0, err
	}
	return liked, count, tx.Commit()
}

// LogExists reports whether a log with the given id exists.
func (r *ActivityRepository) LogExists(ctx context.Context, logID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM activity_logs WHERE id = $1)`, logID).Scan(&exists)
	return exists, err
}

// Follow makes followerID follow followeeID. Following twice is a no-op.
func (r *ActivityRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, followerID, followeeID)
	return err
}

// Unfollow removes the follow edge if present.
func (r *ActivityRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	return err
}

func scanLogs(rows *sql.Rows) ([]models.ActivityLogEntry, error) {
	entries := make([]models.ActivityLogEntry, 0)
	for rows.Next() {
		var (
			e       models.ActivityLogEntry
			movieID sql.NullInt64
			rating  sql.NullFloat64
			movie   models.LogMovie
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &movieID, &movie.Title, &movie.PosterPath, &movie.PosterURL,
			&e.PosterOverride, &rating, &e.ReviewText, &e.RewatchCount, &e.CreatedAt,
			&e.LikeCount, &e.LikedByViewer,
		); err != nil {
			slog.Error("failed to scan log row", "error", err)
			continue
		}
		if movieID.Valid {
			e.MovieID = models.NewFlexID(int(movieID.Int64))
			movie.ID = e.MovieID
		}
		if rating.Valid {
			v := rating.Float64
			e.Rating = &v
		}
		e.Movie = &movie
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
