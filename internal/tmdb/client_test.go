package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("test-key", srv.URL+"/", WithRateLimit(0), WithRetries(3, time.Millisecond))
}

func TestSearchMovies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "heat", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "false", r.URL.Query().Get("include_adult"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"total_results":41,"results":[
			{"id":949,"title":"Heat","poster_path":"/heat.jpg","vote_count":7000,"original_language":"en","adult":false}
		]}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).SearchMovies(context.Background(), "heat", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalPages)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 949, resp.Results[0].ID)
	assert.Equal(t, "/heat.jpg", resp.Results[0].PosterPath)
	assert.Equal(t, 7000, resp.Results[0].VoteCount)
}

func TestSearchMovies_NilResultsBecomeEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page":1}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).SearchMovies(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":949,"title":"Heat","runtime":170}`))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv).GetMovieDetail(context.Background(), 949)
	require.NoError(t, err)
	assert.Equal(t, 170, detail.Runtime)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_ClientErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_message":"not found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).GetMovieDetail(context.Background(), 1)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).SearchMovies(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}
