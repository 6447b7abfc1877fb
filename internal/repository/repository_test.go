package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-service/internal/models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

const (
	insertLike = `(?s)INSERT INTO log_likes .* ON CONFLICT \(log_id, user_id\) DO NOTHING`
	deleteLike = `DELETE FROM log_likes WHERE log_id = \$1 AND user_id = \$2`
	countLikes = `SELECT COUNT\(\*\) FROM log_likes WHERE log_id = \$1`
)

func TestToggleLike_AddsWhenAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertLike).WithArgs("log-1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(countLikes).WithArgs("log-1").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectCommit()

	liked, count, err := NewActivityRepository(db).ToggleLike(context.Background(), "log-1", "u1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An insert that hits an existing like (including one committed by a concurrent toggle)
// is a no-op, and the toggle removes the like instead of failing.
func TestToggleLike_RemovesWhenAlreadyLiked(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertLike).WithArgs("log-1", "u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteLike).WithArgs("log-1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(countLikes).WithArgs("log-1").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectCommit()

	liked, count, err := NewActivityRepository(db).ToggleLike(context.Background(), "log-1", "u1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(insertLike).WithArgs("log-1", "u1").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err := NewActivityRepository(db).ToggleLike(context.Background(), "log-1", "u1")
	assert.ErrorContains(t, err, "failed to add like")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetViewerPosters_DecodesAggregate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`(?s)json_object_agg\(movie_id::text, url\).*FROM viewer_posters`).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"posters"}).
			AddRow([]byte(`{"603":"https://mine.test/603.png","7":null,"8":""}`)))

	m, err := NewPosterRepository(db).GetViewerPosters(context.Background(), "u1", []int{603, 7, 8})
	require.NoError(t, err)
	assert.Equal(t, models.ViewerPosterMap{"603": "https://mine.test/603.png"}, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetViewerPosters_NoIDsSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)

	m, err := NewPosterRepository(db).GetViewerPosters(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.NoError(t, mock.ExpectationsWereMet())
}
