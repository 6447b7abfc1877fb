// Package movieref turns the many movie shapes the backend and clients send into a MovieRef.
package movieref

import (
	"strings"

	"github.com/spf13/cast"

	"scene-service/internal/models"
	"scene-service/internal/poster"
)

// Field priority lists. First present, usable value wins.
var (
	idKeys       = []string{"id", "tmdbId", "tmdb_id", "movieId", "movie_id", "_id"}
	overrideKeys = []string{"poster_override", "posterOverride", "custom_poster", "customPoster"}
	absoluteKeys = []string{"poster_url", "posterUrl", "posterURL", "poster"}
	pathKeys     = []string{"poster_path", "posterPath"}
)

// NormalizeMovieRef builds a MovieRef from a decoded JSON object. A nested "movie"
// object supplies the id and poster path when the top level does not.
func NormalizeMovieRef(raw map[string]any) models.MovieRef {
	var ref models.MovieRef
	if raw == nil {
		return ref
	}
	nested, _ := raw["movie"].(map[string]any)

	ref.ID = firstID(raw, idKeys)
	if ref.ID == 0 && nested != nil {
		ref.ID = firstID(nested, idKeys)
	}
	if ref.ID == 0 {
		// "movie" may itself be the bare id
		if id, ok := models.FlexIDFrom(scalar(raw["movie"])).Int(); ok {
			ref.ID = id
		}
	}

	ref.Title = firstString(raw, []string{"title", "name"})
	if ref.Title == "" && nested != nil {
		ref.Title = firstString(nested, []string{"title", "name"})
	}
	ref.PosterOverride = firstString(raw, overrideKeys)
	ref.PosterAbsolute = firstString(raw, absoluteKeys)
	ref.PosterPath = firstString(raw, pathKeys)
	if ref.PosterAbsolute != "" && !poster.IsHTTPURL(ref.PosterAbsolute) {
		// a relative value under a url key ("poster": "/abc.jpg") is a path
		if ref.PosterPath == "" {
			ref.PosterPath = ref.PosterAbsolute
		}
		ref.PosterAbsolute = ""
	}
	if nested != nil {
		ref.NestedPosterPath = firstString(nested, pathKeys)
	}
	return ref
}

// MovieID resolves a catalog id from an already-decoded value of unknown shape.
func MovieID(v any) (int, bool) {
	if m, ok := v.(map[string]any); ok {
		id := NormalizeMovieRef(m).ID
		return id, id > 0
	}
	return models.FlexIDFrom(scalar(v)).Int()
}

func firstID(m map[string]any, keys []string) int {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if id, ok := models.FlexIDFrom(scalar(v)).Int(); ok {
			return id
		}
	}
	return 0
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// scalar drops maps, slices and booleans so they are never read as ids.
func scalar(v any) any {
	switch v.(type) {
	case map[string]any, []any, bool:
		return nil
	}
	return v
}
