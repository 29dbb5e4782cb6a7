package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer engine metrics
	IntentsApplied   *prometheus.CounterVec
	IntentsReplayed  *prometheus.CounterVec
	IntentsFailed    *prometheus.CounterVec
	VersionConflicts prometheus.Counter
	ApplyDuration    *prometheus.HistogramVec
	LegAmount        *prometheus.HistogramVec

	// Webhook metrics
	WebhookEvents *prometheus.CounterVec

	// Wallet metrics
	WalletsCreated *prometheus.CounterVec

	// Idempotency metrics
	MarkersCleaned prometheus.Counter

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec
	OutboxFailures  *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Transfer engine metrics
		IntentsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_intents_applied_total",
				Help: "Total number of transfer intents applied",
			},
			[]string{"kind"},
		),
		IntentsReplayed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_intents_replayed_total",
				Help: "Total number of duplicate intents answered from stored records",
			},
			[]string{"kind"},
		),
		IntentsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_intents_failed_total",
				Help: "Total number of failed transfer intents by class and reason",
			},
			[]string{"kind", "class", "reason"},
		),
		VersionConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletsettle_wallet_version_conflicts_total",
			Help: "Total number of optimistic concurrency conflicts on wallets",
		}),
		ApplyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletsettle_apply_duration_seconds",
				Help:    "Duration of applied transfer intents",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		LegAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletsettle_leg_amount_minor_units",
				Help:    "Leg amounts in minor units",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"kind"},
		),

		// Webhook metrics
		WebhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_webhook_events_total",
				Help: "Total inbound events by event name and outcome",
			},
			[]string{"event", "outcome"},
		),

		// Wallet metrics
		WalletsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_wallets_created_total",
				Help: "Total number of wallets created",
			},
			[]string{"owner_kind"},
		),

		// Idempotency metrics
		MarkersCleaned: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletsettle_idempotency_markers_cleaned_total",
			Help: "Total number of applied idempotency markers removed",
		}),

		// Outbox metrics
		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_outbox_published_total",
				Help: "Total outbox events published",
			},
			[]string{"event_type"},
		),
		OutboxFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_outbox_failures_total",
				Help: "Total outbox events that failed to publish",
			},
			[]string{"event_type"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletsettle_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "walletsettle_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"path"},
		),
	}
}
