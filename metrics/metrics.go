// ABOUTME: Prometheus collectors for the aggregation worker.
// ABOUTME: Exposed on the ops server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts completed feed ticks by result
	// (success, transient_error, db_error, internal_error).
	TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aggregator",
		Name:      "ticks_total",
		Help:      "Completed feed polling ticks by result.",
	}, []string{"result"})

	// ItemsPublished counts items published to category channels.
	ItemsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aggregator",
		Name:      "items_published_total",
		Help:      "Items published to per-category channels.",
	})

	// CommandsTotal counts inbound control commands by cmd name, with
	// "unknown" and "malformed" for rejected payloads.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aggregator",
		Name:      "commands_total",
		Help:      "Inbound control commands by command name.",
	}, []string{"cmd"})

	// ActiveFeeds tracks the number of feeds with a live timer.
	ActiveFeeds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "aggregator",
		Name:      "active_feeds",
		Help:      "Feeds currently scheduled for polling.",
	})
)
