package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"scene-service/internal/feed"
	"scene-service/internal/metrics"
	"scene-service/internal/models"
	"scene-service/internal/movieref"
	"scene-service/internal/poster"
)

// FeedService builds activity feeds and records new activity.
type FeedService struct {
	logs     ActivityStore
	posters  PosterStore
	catalog  Catalog
	resolver *poster.Resolver
	size     poster.Size
	pageSize int
	maxLogs  int
}

// NewFeedService creates a new FeedService.
func NewFeedService(logs ActivityStore, posters PosterStore, catalog Catalog, resolver *poster.Resolver, size poster.Size, pageSize, maxLogs int) *FeedService {
	if pageSize <= 0 {
		pageSize = feed.DefaultPageSize
	}
	if maxLogs <= 0 {
		maxLogs = 500
	}
	return &FeedService{
		logs:     logs,
		posters:  posters,
		catalog:  catalog,
		resolver: resolver,
		size:     size,
		pageSize: pageSize,
		maxLogs:  maxLogs,
	}
}

// HomeResponse is the first page of both home screen rows.
type HomeResponse struct {
	Friends *models.FeedResponse `json:"friends"`
	Mine    *models.FeedResponse `json:"mine"`
}

// FriendsFeed returns a page of activity from people userID follows. Each card sits at
// the time of its group's latest log.
func (s *FeedService) FriendsFeed(ctx context.Context, viewerID, userID string, page int) (*models.FeedResponse, error) {
	entries, err := s.logs.ListFriendsLogs(ctx, viewerID, userID, s.maxLogs)
	if err != nil {
		return nil, fmt.Errorf("load friends logs: %w", err)
	}
	resp := s.paginate(userID, s.dedupe(feed.SortByRecency(entries)), page)
	s.decorate(ctx, viewerID, resp.Data)
	return resp, nil
}

// UserFilms returns a page of userID's own films, one card per movie, in log order.
func (s *FeedService) UserFilms(ctx context.Context, viewerID, userID string, page int) (*models.FeedResponse, error) {
	entries, err := s.logs.ListUserLogs(ctx, viewerID, userID, s.maxLogs)
	if err != nil {
		return nil, fmt.Errorf("load user logs: %w", err)
	}
	resp := s.paginate(userID, s.dedupe(entries), page)
	s.decorate(ctx, viewerID, resp.Data)
	return resp, nil
}

// Home loads the viewer's friends row and own row together and resolves posters for both
// with a single poster lookup.
func (s *FeedService) Home(ctx context.Context, viewerID string) (*HomeResponse, error) {
	var (
		friends, mine       []models.ActivityLogEntry
		friendsErr, mineErr error
		wg                  conc.WaitGroup
	)
	wg.Go(func() {
		friends, friendsErr = s.logs.ListFriendsLogs(ctx, viewerID, viewerID, s.maxLogs)
	})
	wg.Go(func() {
		mine, mineErr = s.logs.ListUserLogs(ctx, viewerID, viewerID, s.maxLogs)
	})
	wg.Wait()
	if friendsErr != nil {
		return nil, fmt.Errorf("load friends logs: %w", friendsErr)
	}
	if mineErr != nil {
		return nil, fmt.Errorf("load user logs: %w", mineErr)
	}

	home := &HomeResponse{
		Friends: s.paginate(viewerID, s.dedupe(feed.SortByRecency(friends)), 1),
		Mine:    s.paginate(viewerID, s.dedupe(mine), 1),
	}
	combined := append(append([]models.ActivityLogEntry(nil), home.Friends.Data...), home.Mine.Data...)
	viewerMap := loadViewerPosters(ctx, s.posters, viewerID, movieIDs(combined))
	s.resolveAll(home.Friends.Data, viewerMap)
	s.resolveAll(home.Mine.Data, viewerMap)
	return home, nil
}

// CreateLog validates and stores a new log for userID.
func (s *FeedService) CreateLog(ctx context.Context, userID string, req models.CreateLogRequest) (*models.ActivityLogEntry, error) {
	ref := requestMovieRef(req.Movie)
	if ref.ID <= 0 {
		return nil, fmt.Errorf("%w: movie id is required", ErrInvalid)
	}
	if req.Rating != nil {
		r := *req.Rating
		if r < 0 || r > 5 || math.Mod(r*2, 1) != 0 {
			return nil, fmt.Errorf("%w: rating must be between 0 and 5 in half steps", ErrInvalid)
		}
	}
	if req.RewatchCount < 0 {
		return nil, fmt.Errorf("%w: rewatch_count must not be negative", ErrInvalid)
	}
	if o := strings.TrimSpace(req.PosterOverride); o != "" {
		if !poster.IsHTTPURL(o) {
			return nil, fmt.Errorf("%w: poster_override must be an http(s) URL", ErrInvalid)
		}
		ref.PosterOverride = o
	}

	if ref.PosterPath == "" && ref.NestedPosterPath == "" && ref.PosterAbsolute == "" && s.catalog != nil {
		detail, err := s.catalog.GetMovieDetail(ctx, ref.ID)
		if err != nil {
			slog.Warn("could not fetch movie detail for log", "movie_id", ref.ID, "error", err)
		} else {
			ref.PosterPath = detail.PosterPath
			if ref.Title == "" {
				ref.Title = detail.Title
			}
		}
	}

	payload := s.resolver.ToPayloadMovie(ref)
	entry := models.ActivityLogEntry{
		UserID:         userID,
		MovieID:        models.NewFlexID(ref.ID),
		Rating:         req.Rating,
		ReviewText:     strings.TrimSpace(req.ReviewText),
		RewatchCount:   req.RewatchCount,
		PosterOverride: payload.PosterOverride,
		Movie: &models.LogMovie{
			ID:         models.NewFlexID(ref.ID),
			Title:      payload.Title,
			PosterPath: payload.PosterPath,
			PosterURL:  payload.PosterURL,
		},
	}
	if err := s.logs.CreateLog(ctx, &entry, payload); err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}

	one := []models.ActivityLogEntry{entry}
	s.decorate(ctx, userID, one)
	slog.Info("activity logged", "log_id", one[0].ID, "user_id", userID, "movie_id", ref.ID)
	return &one[0], nil
}

// ToggleLike flips the viewer's like on a log.
func (s *FeedService) ToggleLike(ctx context.Context, viewerID, logID string) (bool, int, error) {
	if _, err := uuid.Parse(logID); err != nil {
		return false, 0, fmt.Errorf("%w: invalid log id", ErrInvalid)
	}
	exists, err := s.logs.LogExists(ctx, logID)
	if err != nil {
		return false, 0, err
	}
	if !exists {
		return false, 0, fmt.Errorf("log %s: %w", logID, ErrNotFound)
	}
	return s.logs.ToggleLike(ctx, logID, viewerID)
}

// Follow makes the viewer follow userID.
func (s *FeedService) Follow(ctx context.Context, viewerID, userID string) error {
	if userID == "" || userID == viewerID {
		return fmt.Errorf("%w: cannot follow yourself", ErrInvalid)
	}
	return s.logs.Follow(ctx, viewerID, userID)
}

// Unfollow removes the viewer's follow of userID.
func (s *FeedService) Unfollow(ctx context.Context, viewerID, userID string) error {
	return s.logs.Unfollow(ctx, viewerID, userID)
}

func (s *FeedService) dedupe(entries []models.ActivityLogEntry) []models.ActivityLogEntry {
	out := feed.Dedupe(entries)
	skipped := 0
	for _, e := range entries {
		if _, ok := feed.ResolveMovieID(e); !ok {
			skipped++
		}
	}
	if skipped > 0 {
		metrics.FeedEntriesSkipped.Add(float64(skipped))
	}
	return out
}

func (s *FeedService) paginate(userID string, entries []models.ActivityLogEntry, page int) *models.FeedResponse {
	if page < 1 {
		page = 1
	}
	data, totalPages := feed.Page(entries, page, s.pageSize)
	return &models.FeedResponse{
		UserID:       userID,
		Page:         page,
		PageSize:     s.pageSize,
		TotalPages:   totalPages,
		TotalResults: len(entries),
		Data:         data,
	}
}

// decorate sets PosterURL on every entry using the viewer's poster map.
func (s *FeedService) decorate(ctx context.Context, viewerID string, entries []models.ActivityLogEntry) {
	viewerMap := loadViewerPosters(ctx, s.posters, viewerID, movieIDs(entries))
	s.resolveAll(entries, viewerMap)
}

func (s *FeedService) resolveAll(entries []models.ActivityLogEntry, viewerMap models.ViewerPosterMap) {
	for i := range entries {
		entries[i].PosterURL = s.resolver.Resolve(entryRef(entries[i]), viewerMap, s.size)
	}
}

// requestMovieRef accepts either a movie object or a bare id.
func requestMovieRef(v any) models.MovieRef {
	if m, ok := v.(map[string]any); ok {
		return movieref.NormalizeMovieRef(m)
	}
	id, _ := movieref.MovieID(v)
	return models.MovieRef{ID: id}
}

func entryRef(e models.ActivityLogEntry) models.MovieRef {
	id, _ := feed.ResolveMovieID(e)
	ref := models.MovieRef{ID: id, PosterOverride: e.PosterOverride}
	if e.Movie != nil {
		ref.Title = e.Movie.Title
		ref.PosterPath = e.Movie.PosterPath
		ref.PosterAbsolute = e.Movie.PosterURL
	}
	return ref
}

func movieIDs(entries []models.ActivityLogEntry) []int {
	seen := make(map[int]struct{}, len(entries))
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		id, ok := feed.ResolveMovieID(e)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
