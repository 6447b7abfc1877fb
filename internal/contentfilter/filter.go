package contentfilter

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scene-service/internal/models"
)

const (
	// MinVoteCount is the exclusive lower bound on catalog votes for any result.
	MinVoteCount = 10

	// JapaneseMinVotes applies to results whose original language is "ja".
	JapaneseMinVotes = 2500

	// OtherLanguageMinVotes applies to results in one of Rules.OtherLanguages.
	OtherLanguageMinVotes = 5000

	// exemptLanguage is never held to OtherLanguageMinVotes.
	exemptLanguage = "ar"
)

// Reason names the predicate that excluded a result.
type Reason string

const (
	ReasonLowVotes         Reason = "low_votes"
	ReasonNoPoster         Reason = "no_poster"
	ReasonAdult            Reason = "adult"
	ReasonBlocked          Reason = "blocked"
	ReasonJapaneseVotes    Reason = "ja_votes"
	ReasonOtherLangVotes   Reason = "other_language_votes"
	ReasonRegionalLanguage Reason = "regional_language"
)

// Rules holds the operator-curated lists the filter checks against.
type Rules struct {
	BlockedIDs        map[int]struct{}
	BannedTerms       []string
	OtherLanguages    map[string]struct{}
	RegionalLanguages map[string]struct{}
}

// Stats counts excluded results by reason.
type Stats struct {
	Kept    int
	Dropped map[Reason]int
}

// Total returns the number of excluded results.
func (s Stats) Total() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// DefaultRules returns the built-in lists.
func DefaultRules() Rules {
	return Rules{
		BlockedIDs: setOf(
			// mis-flagged titles reported by moderators
			1064028, 1029575, 940551, 1184918, 1226578,
		),
		BannedTerms: []string{
			"porn", "porno", "xxx", "hentai", "erotic", "erotica",
			"nsfw", "nude", "nudity", "onlyfans", "playboy",
		},
		OtherLanguages: setOf(
			"ar", "fr", "de", "es", "it", "pt", "ru", "zh", "cn", "ko", "hi",
			"tr", "pl", "nl", "sv", "da", "no", "fi", "th", "id", "fa",
			"he", "cs", "hu", "el", "ro", "uk", "vi", "tl", "ms",
		),
		RegionalLanguages: setOf(
			"ta", "te", "ml", "kn", "bn", "mr", "pa", "gu", "or", "as",
		),
	}
}

// WithExtra returns a copy of r with additional blocked ids and banned terms.
func (r Rules) WithExtra(blockedIDs []int, bannedTerms []string) Rules {
	out := r
	out.BlockedIDs = make(map[int]struct{}, len(r.BlockedIDs)+len(blockedIDs))
	for id := range r.BlockedIDs {
		out.BlockedIDs[id] = struct{}{}
	}
	for _, id := range blockedIDs {
		out.BlockedIDs[id] = struct{}{}
	}
	out.BannedTerms = append(append([]string(nil), r.BannedTerms...), bannedTerms...)
	return out
}

// Filter returns the results that are safe to display, in their original order.
func Filter(results []models.CatalogSearchResult, rules Rules) []models.CatalogSearchResult {
	kept, _ := FilterWithStats(results, rules)
	return kept
}

// FilterWithStats is Filter plus a per-reason count of what was excluded.
func FilterWithStats(results []models.CatalogSearchResult, rules Rules) ([]models.CatalogSearchResult, Stats) {
	stats := Stats{Dropped: make(map[Reason]int)}
	kept := make([]models.CatalogSearchResult, 0, len(results))
	for _, r := range results {
		if reason, ok := Check(r, rules); !ok {
			stats.Dropped[reason]++
			continue
		}
		kept = append(kept, r)
	}
	stats.Kept = len(kept)
	return kept, stats
}

// Check reports whether a single result passes every predicate, and if not, the first one
// it failed.
func Check(r models.CatalogSearchResult, rules Rules) (Reason, bool) {
	if r.VoteCount <= MinVoteCount {
		return ReasonLowVotes, false
	}
	if strings.TrimSpace(r.PosterPath) == "" {
		return ReasonNoPoster, false
	}
	if r.Adult {
		return ReasonAdult, false
	}
	if _, blocked := rules.BlockedIDs[r.ID]; blocked {
		return ReasonBlocked, false
	}

	// unknown language only has to pass the checks above
	lang := strings.ToLower(strings.TrimSpace(r.OriginalLanguage))
	if lang == "" {
		return "", true
	}
	if lang == "ja" && r.VoteCount < JapaneseMinVotes {
		return ReasonJapaneseVotes, false
	}
	if _, other := rules.OtherLanguages[lang]; other && lang != exemptLanguage && r.VoteCount < OtherLanguageMinVotes {
		return ReasonOtherLangVotes, false
	}
	if _, regional := rules.RegionalLanguages[lang]; regional {
		return ReasonRegionalLanguage, false
	}
	return "", true
}

// IsQueryBanned reports whether the query contains any banned term. Matching is
// case-insensitive and ignores diacritics.
func IsQueryBanned(query string, terms []string) bool {
	folded := fold(query)
	if folded == "" {
		return false
	}
	for _, term := range terms {
		t := fold(term)
		if t != "" && strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Lower(language.Und).String(unidecode.Unidecode(strings.TrimSpace(s)))
}

func setOf[T comparable](vals ...T) map[T]struct{} {
	m := make(map[T]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
