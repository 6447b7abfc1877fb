package models

// MovieRef is a catalog movie as it appears in search results, list items, logs and favorites.
type MovieRef struct {
	ID               int    `json:"id"`
	Title            string `json:"title,omitempty"`
	PosterPath       string `json:"poster_path,omitempty"`
	NestedPosterPath string `json:"-"`
	PosterAbsolute   string `json:"poster_url,omitempty"`
	PosterOverride   string `json:"poster_override,omitempty"`
}

// ViewerPosterMap maps a stringified catalog id to the viewer's custom poster URL.
type ViewerPosterMap map[string]string

// CatalogSearchResult is a raw movie from the catalog search endpoint.
type CatalogSearchResult struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	PosterPath       string  `json:"poster_path"`
	VoteCount        int     `json:"vote_count"`
	VoteAverage      float64 `json:"vote_average"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult"`
}

// Ref returns the poster-relevant view of a search result.
func (r CatalogSearchResult) Ref() MovieRef {
	return MovieRef{ID: r.ID, Title: r.Title, PosterPath: r.PosterPath}
}

// PayloadMovie is the minimal movie representation sent to the backend for persistence.
type PayloadMovie struct {
	ID             int    `json:"id"`
	Title          string `json:"title,omitempty"`
	PosterPath     string `json:"poster_path,omitempty"`
	PosterURL      string `json:"poster_url,omitempty"`
	PosterOverride string `json:"poster_override,omitempty"`
}

// SearchItem is the response shape for a single search hit.
type SearchItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	PosterURL   string  `json:"poster_url"`
}

// SearchResponse is the paginated search response.
type SearchResponse struct {
	Query        string       `json:"query"`
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
	Filtered     int          `json:"filtered"`
	Data         []SearchItem `json:"data"`
}

const (
	TMDBImageBase     = "https://image.tmdb.org/t/p"
	PlaceholderPoster = "https://scene.app/static/poster-placeholder.png"
)
