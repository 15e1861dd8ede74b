// Package metrics holds the relay's Prometheus collectors. They are registered on
// the default registry, which is the one fiberprometheus serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_relay"

var (
	ActiveSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of open websocket sessions by role.",
	}, []string{"role"})

	PublishedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "published_events_total",
		Help:      "Events published on the relay bus by kind.",
	}, []string{"kind"})

	ClosedSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "closed_sessions_total",
		Help:      "Sessions closed by the server, by close code.",
	}, []string{"code"})

	RateLimitTrips = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_trips_total",
		Help:      "Speech connections closed because the rate bucket tripped.",
	})

	TranslationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translation_failures_total",
		Help:      "Failed translation requests.",
	})

	StaleTranslations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_translations_total",
		Help:      "Translations discarded because their session ended first.",
	})

	TranslationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "translation_duration_seconds",
		Help:      "Latency of translation requests.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	TranslatedCharacters = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translated_characters_total",
		Help:      "Characters sent for translation.",
	})

	DroppedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dropped_messages_total",
		Help:      "Outbound messages dropped because a session outbox was full.",
	}, []string{"role"})
)
