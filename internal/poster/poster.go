package poster

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"scene-service/internal/models"
)

// Size is a catalog image size token.
type Size string

const (
	SizeThumb    Size = "w300"
	SizeDetail   Size = "w500"
	SizeOriginal Size = "original"
)

// Resolver picks the single image URL to show for a movie.
// It holds only configuration and is safe for concurrent use.
type Resolver struct {
	imageBaseURL string
	placeholder  string
}

// NewResolver creates a Resolver. Empty arguments fall back to the TMDB CDN and the
// built-in placeholder.
func NewResolver(imageBaseURL, placeholder string) *Resolver {
	imageBaseURL = strings.TrimRight(strings.TrimSpace(imageBaseURL), "/")
	if imageBaseURL == "" {
		imageBaseURL = models.TMDBImageBase
	}
	if strings.TrimSpace(placeholder) == "" {
		placeholder = models.PlaceholderPoster
	}
	return &Resolver{imageBaseURL: imageBaseURL, placeholder: placeholder}
}

// Resolve returns the poster URL for ref. Precedence:
//  1. the viewer's own poster for ref.ID
//  2. the item-level override
//  3. an absolute poster URL
//  4. a catalog-relative path (direct before nested), at the given size
//  5. the placeholder
func (r *Resolver) Resolve(ref models.MovieRef, viewer models.ViewerPosterMap, size Size) string {
	if ref.ID > 0 && viewer != nil {
		if u := strings.TrimSpace(viewer[strconv.Itoa(ref.ID)]); u != "" {
			return u
		}
	}
	if u := strings.TrimSpace(ref.PosterOverride); u != "" {
		return u
	}
	if u := strings.TrimSpace(ref.PosterAbsolute); IsHTTPURL(u) {
		return u
	}
	for _, p := range []string{ref.PosterPath, ref.NestedPosterPath} {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if IsHTTPURL(p) {
			return p
		}
		return r.imageURL(p, size)
	}
	return r.placeholder
}

// ToPayloadMovie builds the persisted form of ref. A catalog-relative path is preferred
// over an absolute URL so the full URL can be rebuilt later at whatever size and CDN is
// current. An explicit override is passed through unchanged.
func (r *Resolver) ToPayloadMovie(ref models.MovieRef) models.PayloadMovie {
	out := models.PayloadMovie{
		ID:             ref.ID,
		Title:          ref.Title,
		PosterOverride: ref.PosterOverride,
	}

	var absolute string
	for _, p := range []string{ref.PosterPath, ref.NestedPosterPath, ref.PosterAbsolute} {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
			continue
		case !IsHTTPURL(p):
			out.PosterPath = ensureLeadingSlash(p)
			return out
		}
		if rel, ok := r.relativePath(p); ok {
			out.PosterPath = rel
			return out
		}
		if absolute == "" {
			absolute = p
		}
	}
	out.PosterURL = absolute
	return out
}

func (r *Resolver) imageURL(path string, size Size) string {
	if size == "" {
		size = SizeDetail
	}
	return fmt.Sprintf("%s/%s/%s", r.imageBaseURL, size, strings.TrimLeft(path, "/"))
}

// relativePath extracts "/abc.jpg" from "<base>/<size>/abc.jpg", where base is the
// configured CDN or the TMDB one.
func (r *Resolver) relativePath(u string) (string, bool) {
	rest, ok := strings.CutPrefix(u, r.imageBaseURL+"/")
	if !ok {
		rest, ok = strings.CutPrefix(u, models.TMDBImageBase+"/")
	}
	if !ok {
		return "", false
	}
	_, file, ok := strings.Cut(rest, "/")
	if !ok || file == "" || strings.Contains(file, "/") {
		return "", false
	}
	return "/" + file, true
}

// IsHTTPURL reports whether s starts with an http or https scheme.
func IsHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return (strings.HasPrefix(lower, "http://") && len(s) > len("http://")) ||
		(strings.HasPrefix(lower, "https://") && len(s) > len("https://"))
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// DecodeViewerPosterMap decodes a poster batch response. Entries whose value is not a
// non-empty string are dropped.
func DecodeViewerPosterMap(raw []byte) (models.ViewerPosterMap, error) {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode poster map: %w", err)
	}
	out := make(models.ViewerPosterMap, len(decoded))
	for k, v := range decoded {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out[k] = s
		}
	}
	return out, nil
}
