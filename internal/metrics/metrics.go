// Package metrics exposes Prometheus counters for search filtering and feed building.
package metrics

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scene",
		Name:      "search_requests_total",
		Help:      "Catalog searches by outcome.",
	}, []string{"outcome"})

	FilterDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scene",
		Name:      "filter_dropped_total",
		Help:      "Catalog results removed by the content filter, by reason.",
	}, []string{"reason"})

	FeedEntriesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scene",
		Name:      "feed_entries_skipped_total",
		Help:      "Activity logs dropped from feeds because no movie id could be resolved.",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scene",
		Name:      "cache_lookups_total",
		Help:      "Redis cache lookups by result.",
	}, []string{"result"})
)

// Handler serves the default registry.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
