// Package feed collapses activity logs into one card per user and movie.
package feed

import (
	"log/slog"
	"slices"

	"scene-service/internal/models"
)

// DefaultPageSize is the number of cards per carousel page.
const DefaultPageSize = 6

type groupKey struct {
	userID  string
	movieID int
}

// ResolveMovieID returns the catalog id an entry refers to, trying the explicit movie_id,
// then the nested movie object's id, then a bare movie reference.
func ResolveMovieID(e models.ActivityLogEntry) (int, bool) {
	if id, ok := e.MovieID.Int(); ok {
		return id, true
	}
	if e.Movie != nil {
		if id, ok := e.Movie.ID.Int(); ok {
			return id, true
		}
		if id, ok := e.Movie.Ref.Int(); ok {
			return id, true
		}
	}
	return 0, false
}

// Dedupe keeps one representative entry per (user, movie). A group sits where its first
// entry was seen; the entry shown there is the most informative one in the group.
// Entries without a resolvable movie id are dropped.
func Dedupe(entries []models.ActivityLogEntry) []models.ActivityLogEntry {
	out := make([]models.ActivityLogEntry, 0, len(entries))
	index := make(map[groupKey]int, len(entries))

	for _, e := range entries {
		movieID, ok := ResolveMovieID(e)
		if !ok {
			slog.Debug("skipping feed entry without movie id", "entry_id", e.ID, "user_id", e.UserID)
			continue
		}
		k := groupKey{userID: e.UserID, movieID: movieID}
		if i, seen := index[k]; seen {
			if preferred(e, out[i]) {
				out[i] = e
			}
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}

// informativeness orders review > rating > rewatch > bare log.
func informativeness(e models.ActivityLogEntry) int {
	switch {
	case e.HasReview():
		return 3
	case e.HasRating():
		return 2
	case e.HasRewatch():
		return 1
	default:
		return 0
	}
}

// preferred reports whether candidate should replace current. Equal rank goes to the
// newer entry; an exact tie keeps current.
func preferred(candidate, current models.ActivityLogEntry) bool {
	rc, rs := informativeness(candidate), informativeness(current)
	if rc != rs {
		return rc > rs
	}
	return candidate.CreatedAt.After(current.CreatedAt)
}

// SortByRecency returns a copy of entries ordered newest first. Equal timestamps keep
// their relative order.
func SortByRecency(entries []models.ActivityLogEntry) []models.ActivityLogEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b models.ActivityLogEntry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Chunk splits items into consecutive pages of size. A non-positive size means
// DefaultPageSize.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultPageSize
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// Page returns the 1-based page of items and the total page count. Out-of-range pages
// are empty.
func Page[T any](items []T, page, size int) ([]T, int) {
	chunks := Chunk(items, size)
	if page < 1 || page > len(chunks) {
		return []T{}, len(chunks)
	}
	return chunks[page-1], len(chunks)
}
