package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"scene-service/internal/contentfilter"
	"scene-service/internal/metrics"
	"scene-service/internal/models"
	"scene-service/internal/poster"
)

const searchCacheTTL = 10 * time.Minute

// SearchService searches the catalog and returns only displayable results.
type SearchService struct {
	catalog  Catalog
	posters  PosterStore
	resolver *poster.Resolver
	rules    contentfilter.Rules
	size     poster.Size
	cache    cache
}

// NewSearchService creates a new SearchService. rdb may be nil.
func NewSearchService(catalog Catalog, posters PosterStore, resolver *poster.Resolver, rules contentfilter.Rules, size poster.Size, rdb *redis.Client) *SearchService {
	return &SearchService{
		catalog:  catalog,
		posters:  posters,
		resolver: resolver,
		rules:    rules,
		size:     size,
		cache:    cache{redis: rdb},
	}
}

// filteredPage is what gets cached: filtered but not yet viewer-specific.
type filteredPage struct {
	Page         int                          `json:"page"`
	TotalPages   int                          `json:"total_pages"`
	TotalResults int                          `json:"total_results"`
	Filtered     int                          `json:"filtered"`
	Results      []models.CatalogSearchResult `json:"results"`
}

// Search runs a catalog search for the viewer. Banned queries fail with ErrQueryBanned
// without reaching the catalog.
func (s *SearchService) Search(ctx context.Context, viewerID, query string, page int) (*models.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalid)
	}
	if page < 1 {
		page = 1
	}
	if contentfilter.IsQueryBanned(query, s.rules.BannedTerms) {
		metrics.SearchRequests.WithLabelValues("banned").Inc()
		slog.Info("search query rejected", "viewer_id", viewerID)
		return nil, ErrQueryBanned
	}

	cacheKey := fmt.Sprintf("search:%s:%d", strings.ToLower(query), page)
	var fp filteredPage
	if !s.cache.get(ctx, cacheKey, &fp) {
		resp, err := s.catalog.SearchMovies(ctx, query, page)
		if err != nil {
			metrics.SearchRequests.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("catalog search: %w", err)
		}
		kept, stats := contentfilter.FilterWithStats(resp.Results, s.rules)
		for reason, n := range stats.Dropped {
			metrics.FilterDropped.WithLabelValues(string(reason)).Add(float64(n))
		}
		fp = filteredPage{
			Page:         resp.Page,
			TotalPages:   resp.TotalPages,
			TotalResults: resp.TotalResults,
			Filtered:     stats.Total(),
			Results:      kept,
		}
		s.cache.set(ctx, cacheKey, fp, searchCacheTTL)
	}
	metrics.SearchRequests.WithLabelValues("ok").Inc()

	ids := make([]int, 0, len(fp.Results))
	for _, r := range fp.Results {
		ids = append(ids, r.ID)
	}
	viewerMap := loadViewerPosters(ctx, s.posters, viewerID, ids)

	items := make([]models.SearchItem, 0, len(fp.Results))
	for _, r := range fp.Results {
		items = append(items, models.SearchItem{
			ID:          r.ID,
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
			Popularity:  r.Popularity,
			VoteAverage: r.VoteAverage,
			PosterURL:   s.resolver.Resolve(r.Ref(), viewerMap, s.size),
		})
	}

	return &models.SearchResponse{
		Query:        query,
		Page:         fp.Page,
		TotalPages:   fp.TotalPages,
		TotalResults: fp.TotalResults,
		Filtered:     fp.Filtered,
		Data:         items,
	}, nil
}

// loadViewerPosters fetches the viewer's poster map. Failures degrade to no overrides.
func loadViewerPosters(ctx context.Context, store PosterStore, viewerID string, ids []int) models.ViewerPosterMap {
	if viewerID == "" || len(ids) == 0 {
		return nil
	}
	m, err := store.GetViewerPosters(ctx, viewerID, ids)
	if err != nil {
		slog.Warn("viewer posters unavailable", "viewer_id", viewerID, "error", err)
		return nil
	}
	return m
}
