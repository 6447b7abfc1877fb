package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"scene-service/internal/models"
	"scene-service/internal/tmdb"
)

type fakeCatalog struct {
	results     []models.CatalogSearchResult
	detail      *tmdb.MovieDetail
	err         error
	searchCalls int
}

func (f *fakeCatalog) SearchMovies(_ context.Context, _ string, page int) (*tmdb.SearchResponse, error) {
	f.searchCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &tmdb.SearchResponse{Page: page, Results: f.results, TotalPages: 1, TotalResults: len(f.results)}, nil
}

func (f *fakeCatalog) GetMovieDetail(_ context.Context, id int) (*tmdb.MovieDetail, error) {
	if f.detail == nil {
		return nil, &tmdb.StatusError{Code: 404, Body: strconv.Itoa(id)}
	}
	return f.detail, nil
}

type fakePosters struct {
	mu      sync.Mutex
	byUser  map[string]models.ViewerPosterMap
	err     error
	lookups int
}

func newFakePosters() *fakePosters {
	return &fakePosters{byUser: map[string]models.ViewerPosterMap{}}
}

func (f *fakePosters) GetViewerPosters(_ context.Context, userID string, movieIDs []int) (models.ViewerPosterMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	out := models.ViewerPosterMap{}
	for _, id := range movieIDs {
		if u, ok := f.byUser[userID][strconv.Itoa(id)]; ok {
			out[strconv.Itoa(id)] = u
		}
	}
	return out, nil
}

func (f *fakePosters) SetPoster(_ context.Context, userID string, movieID int, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byUser[userID] == nil {
		f.byUser[userID] = models.ViewerPosterMap{}
	}
	f.byUser[userID][strconv.Itoa(movieID)] = url
	return nil
}

func (f *fakePosters) DeletePoster(_ context.Context, userID string, movieID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strconv.Itoa(movieID)
	if _, ok := f.byUser[userID][key]; !ok {
		return false, nil
	}
	delete(f.byUser[userID], key)
	return true, nil
}

type fakeActivity struct {
	mu      sync.Mutex
	logs    []models.ActivityLogEntry
	follows map[string]map[string]bool
	likes   map[string]map[string]bool
	err     error
	seq     int
}

func newFakeActivity(logs ...models.ActivityLogEntry) *fakeActivity {
	return &fakeActivity{
		logs:    logs,
		follows: map[string]map[string]bool{},
		likes:   map[string]map[string]bool{},
	}
}

func (f *fakeActivity) CreateLog(_ context.Context, e *models.ActivityLogEntry, _ models.PayloadMovie) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seq++
	e.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.seq)
	e.CreatedAt = time.Date(2025, 1, 1, 0, 0, f.seq, 0, time.UTC)
	f.logs = append(f.logs, *e)
	return nil
}

func (f *fakeActivity) ListUserLogs(_ context.Context, _ string, userID string, _ int) ([]models.ActivityLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ActivityLogEntry
	for _, e := range f.logs {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeActivity) ListFriendsLogs(_ context.Context, _ string, userID string, _ int) ([]models.ActivityLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ActivityLogEntry
	for _, e := range f.logs {
		if f.follows[userID][e.UserID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeActivity) ToggleLike(_ context.Context, logID, userID string) (bool, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likes[logID] == nil {
		f.likes[logID] = map[string]bool{}
	}
	liked := !f.likes[logID][userID]
	if liked {
		f.likes[logID][userID] = true
	} else {
		delete(f.likes[logID], userID)
	}
	return liked, len(f.likes[logID]), nil
}

func (f *fakeActivity) LogExists(_ context.Context, logID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.logs {
		if e.ID == logID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeActivity) Follow(_ context.Context, followerID, followeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.follows[followerID] == nil {
		f.follows[followerID] = map[string]bool{}
	}
	f.follows[followerID][followeeID] = true
	return nil
}

func (f *fakeActivity) Unfollow(_ context.Context, followerID, followeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.follows[followerID], followeeID)
	return nil
}

var errBackend = errors.New("backend down")
