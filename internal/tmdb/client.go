package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"scene-service/internal/models"
)

// Client is the TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outbound requests per second. Zero or less disables the cap.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetries sets the total number of attempts for retryable failures.
func WithRetries(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = max(attempts, 1)
		c.retryDelay = delay
	}
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
		attempts:   3,
		retryDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---- TMDB Response Types ----

// SearchResponse is the TMDB search/movie response.
type SearchResponse struct {
	Page         int                          `json:"page"`
	Results      []models.CatalogSearchResult `json:"results"`
	TotalPages   int                          `json:"total_pages"`
	TotalResults int                          `json:"total_results"`
}

// MovieDetail is the detailed movie info from TMDB.
type MovieDetail struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	OriginalLanguage string  `json:"original_language"`
	Runtime          int     `json:"runtime"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`
}

// StatusError is returned when TMDB answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDB API returned status %d: %s", e.Code, e.Body)
}

// ---- Client Methods ----

// SearchMovies queries the TMDB movie search endpoint. Adult results are requested
// excluded, but callers must still run the content filter.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))
	params.Set("include_adult", "false")

	slog.Debug("fetching TMDB search", "query", query, "page", page)
	var result SearchResponse
	if err := c.getJSON(ctx, "/search/movie", params, &result); err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	if result.Results == nil {
		result.Results = []models.CatalogSearchResult{}
	}
	return &result, nil
}

// GetMovieDetail fetches detailed movie info from TMDB.
func (c *Client) GetMovieDetail(ctx context.Context, tmdbID int) (*MovieDetail, error) {
	slog.Debug("fetching TMDB movie detail", "tmdb_id", tmdbID)
	var result MovieDetail
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", tmdbID), url.Values{}, &result); err != nil {
		return nil, fmt.Errorf("get movie %d: %w", tmdbID, err)
	}
	return &result, nil
}

// getJSON performs a throttled GET and decodes the body into out. 429 and 5xx responses
// and transport errors are retried with backoff.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("api_key", c.apiKey)
	target := c.baseURL + endpoint + "?" + params.Encode()

	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.http.Do(req)
			if err != nil {
				return fmt.Errorf("HTTP request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				statusErr := &StatusError{Code: resp.StatusCode, Body: string(body)}
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return statusErr
				}
				return retry.Unrecoverable(statusErr)
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("retrying TMDB request", "endpoint", endpoint, "attempt", n+1, "error", err)
		}),
	)
}
