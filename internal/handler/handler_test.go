package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-service/internal/middleware"
	"scene-service/internal/models"
	"scene-service/internal/service"
)

type stubSearcher struct {
	err       error
	gotViewer string
	gotPage   int
}

func (s *stubSearcher) Search(_ context.Context, viewerID, query string, page int) (*models.SearchResponse, error) {
	s.gotViewer, s.gotPage = viewerID, page
	if s.err != nil {
		return nil, s.err
	}
	return &models.SearchResponse{Query: query, Page: page, Data: []models.SearchItem{{ID: 1, Title: "Heat"}}}, nil
}

type stubFeeds struct {
	err     error
	created models.CreateLogRequest
}

func (s *stubFeeds) FriendsFeed(_ context.Context, _, userID string, page int) (*models.FeedResponse, error) {
	return &models.FeedResponse{UserID: userID, Page: page, Data: []models.ActivityLogEntry{}}, s.err
}

func (s *stubFeeds) UserFilms(_ context.Context, _, userID string, page int) (*models.FeedResponse, error) {
	return &models.FeedResponse{UserID: userID, Page: page, Data: []models.ActivityLogEntry{}}, s.err
}

func (s *stubFeeds) Home(context.Context, string) (*service.HomeResponse, error) {
	return &service.HomeResponse{}, s.err
}

func (s *stubFeeds) CreateLog(_ context.Context, userID string, req models.CreateLogRequest) (*models.ActivityLogEntry, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.ActivityLogEntry{ID: "log-1", UserID: userID}, nil
}

func (s *stubFeeds) ToggleLike(context.Context, string, string) (bool, int, error) {
	return true, 3, s.err
}

func (s *stubFeeds) Follow(context.Context, string, string) error   { return s.err }
func (s *stubFeeds) Unfollow(context.Context, string, string) error { return s.err }

type stubPosters struct {
	err error
	ids []int
}

func (s *stubPosters) Batch(_ context.Context, _ string, ids []int) (models.ViewerPosterMap, error) {
	s.ids = ids
	return models.ViewerPosterMap{"1": "https://mine.test/1.png"}, s.err
}

func (s *stubPosters) Set(context.Context, string, int, string) error { return s.err }
func (s *stubPosters) Clear(context.Context, string, int) error       { return s.err }

func newApp(search Searcher, feeds Feeds, posters Posters) *fiber.App {
	app := fiber.New()
	app.Use(middleware.AuthMiddleware())
	app.Get("/health", Health)
	api := app.Group("/api/v1")
	sh, fh, ph := NewSearchHandler(search), NewFeedHandler(feeds), NewPosterHandler(posters)
	api.Get("/search", sh.Search)
	api.Get("/home", fh.Home)
	api.Get("/users/:id/feed", fh.FriendsFeed)
	api.Get("/users/:id/films", fh.UserFilms)
	api.Post("/logs", fh.CreateLog)
	api.Post("/logs/:id/like", fh.ToggleLike)
	api.Post("/follows/:userId", fh.Follow)
	api.Delete("/follows/:userId", fh.Unfollow)
	api.Post("/posters/batch", ph.Batch)
	api.Put("/posters/:movieId", ph.Set)
	api.Delete("/posters/:movieId", ph.Clear)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("X-User-ID", "viewer-1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestSearch(t *testing.T) {
	s := &stubSearcher{}
	app := newApp(s, &stubFeeds{}, &stubPosters{})

	code, body := do(t, app, http.MethodGet, "/api/v1/search?q=heat&page=2", "")
	require.Equal(t, http.StatusOK, code)

	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "heat", resp.Query)
	assert.Equal(t, 2, s.gotPage)
	assert.Equal(t, "viewer-1", s.gotViewer)
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"banned", service.ErrQueryBanned, http.StatusBadRequest, "query not allowed"},
		{"invalid", fmt.Errorf("%w: query is required", service.ErrInvalid), http.StatusBadRequest, "invalid input: query is required"},
		{"not found", fmt.Errorf("x: %w", service.ErrNotFound), http.StatusNotFound, "x: not found"},
		{"internal", fmt.Errorf("dial tcp: refused"), http.StatusInternalServerError, "failed to search movies"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp(&stubSearcher{err: tc.err}, &stubFeeds{}, &stubPosters{})
			code, body := do(t, app, http.MethodGet, "/api/v1/search?q=x", "")
			assert.Equal(t, tc.wantCode, code)

			var er ErrorResponse
			require.NoError(t, json.Unmarshal(body, &er))
			assert.Equal(t, tc.wantMsg, er.Error)
		})
	}
}

func TestFeedRoutes(t *testing.T) {
	app := newApp(&stubSearcher{}, &stubFeeds{}, &stubPosters{})

	code, body := do(t, app, http.MethodGet, "/api/v1/users/u2/feed?page=3", "")
	require.Equal(t, http.StatusOK, code)
	var feed models.FeedResponse
	require.NoError(t, json.Unmarshal(body, &feed))
	assert.Equal(t, "u2", feed.UserID)
	assert.Equal(t, 3, feed.Page)

	code, _ = do(t, app, http.MethodGet, "/api/v1/users/u2/films", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, app, http.MethodGet, "/api/v1/home", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, app, http.MethodPost, "/api/v1/logs/abc/like", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"log_id":"abc","liked_by_viewer":true,"like_count":3}`, string(body))

	code, _ = do(t, app, http.MethodPost, "/api/v1/follows/u2", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, app, http.MethodDelete, "/api/v1/follows/u2", "")
	assert.Equal(t, http.StatusNoContent, code)
}

func TestCreateLog(t *testing.T) {
	feeds := &stubFeeds{}
	app := newApp(&stubSearcher{}, feeds, &stubPosters{})

	code, body := do(t, app, http.MethodPost, "/api/v1/logs", `{"movie":{"tmdbId":"603"},"rating":4.5}`)
	require.Equal(t, http.StatusCreated, code)
	movie, ok := feeds.created.Movie.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "603", movie["tmdbId"])
	require.NotNil(t, feeds.created.Rating)
	assert.InDelta(t, 4.5, *feeds.created.Rating, 0.001)

	var entry models.ActivityLogEntry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, "viewer-1", entry.UserID)

	code, _ = do(t, app, http.MethodPost, "/api/v1/logs", `{"movie":603}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(603), feeds.created.Movie)

	code, _ = do(t, app, http.MethodPost, "/api/v1/logs", `{"movie":`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPosterRoutes(t *testing.T) {
	posters := &stubPosters{}
	app := newApp(&stubSearcher{}, &stubFeeds{}, posters)

	code, body := do(t, app, http.MethodPost, "/api/v1/posters/batch", `{"movie_ids":[1,2]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []int{1, 2}, posters.ids)
	assert.JSONEq(t, `{"1":"https://mine.test/1.png"}`, string(body))

	code, _ = do(t, app, http.MethodPut, "/api/v1/posters/1", `{"url":"https://mine.test/1.png"}`)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, app, http.MethodPut, "/api/v1/posters/abc", `{"url":"https://mine.test/1.png"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	posters.err = fmt.Errorf("poster for movie 1: %w", service.ErrNotFound)
	code, _ = do(t, app, http.MethodDelete, "/api/v1/posters/1", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthIsPublic(t *testing.T) {
	app := newApp(&stubSearcher{}, &stubFeeds{}, &stubPosters{})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterSwagger(t *testing.T) {
	app := fiber.New()
	RegisterSwagger(app, "Scene Service", []byte("openapi: 3.0.0\n"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/swagger/doc.yaml", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "openapi: 3.0.0\n", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	page, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(page), "<title>Scene Service - Swagger UI</title>")
}
