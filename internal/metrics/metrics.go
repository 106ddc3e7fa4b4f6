package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carrental"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route and status code.",
		},
		[]string{"method", "route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of rental orders created.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_conflicts_total",
			Help:      "Count of bookings rejected for overlapping an active order.",
		},
	)

	orderActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_actions_total",
			Help:      "Count of staff order actions by action and result.",
		},
		[]string{"action", "result"},
	)

	autoCancels = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_cancel_total",
			Help:      "Count of deposit auto-cancel attempts by result.",
		},
		[]string{"result"},
	)

	paymentRedirects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_redirects_total",
			Help:      "Count of gateway browser returns by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	paymentsSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_settled_total",
			Help:      "Count of gateway callbacks applied, by provider and status.",
		},
		[]string{"provider", "status"},
	)

	legacySynced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_sync_records_total",
			Help:      "Count of records imported from the legacy backend.",
		},
		[]string{"entity", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			ordersCreated, bookingConflicts, orderActions, autoCancels,
			paymentRedirects, paymentsSettled, legacySynced,
		)
	})
}

func ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func IncOrderCreated() {
	ordersCreated.Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncOrderAction(action, result string) {
	orderActions.WithLabelValues(action, result).Inc()
}

func IncAutoCancel(result string) {
	autoCancels.WithLabelValues(result).Inc()
}

func IncPaymentRedirect(provider, outcome string) {
	if provider == "" {
		provider = "unknown"
	}
	paymentRedirects.WithLabelValues(provider, outcome).Inc()
}

func IncPaymentSettled(provider, status string) {
	paymentsSettled.WithLabelValues(provider, status).Inc()
}

func IncLegacySynced(entity, result string) {
	legacySynced.WithLabelValues(entity, result).Inc()
}
