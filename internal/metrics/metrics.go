// Package metrics defines and registers all custom Prometheus metrics for the
// PULSEPR storefront client. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto; the console exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Backend gateway metrics ───────────────────────────────────────────────────

// BackendRequestsTotal counts calls made to the REST backend.
// Labels:
//   - method: HTTP method
//   - route: route template (e.g. "/api/cart/:itemId")
//   - status: response status code, or "network_error" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the backend API.",
	},
	[]string{"method", "route", "status"},
)

// BackendRequestDuration measures backend round trips.
// Labels:
//   - method: HTTP method
//   - route: route template
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API round trips.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// UnauthorizedTotal counts 401 responses that ended the session.
var UnauthorizedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unauthorized_total",
		Help:      "Total number of backend 401 responses that invalidated the session.",
	},
)

// ── Checkout metrics ──────────────────────────────────────────────────────────

// CheckoutAttemptsTotal counts checkout attempts that reached a terminal state.
// Label:
//   - outcome: "succeeded", "verification_failed", "cancelled_by_user",
//     "payment_failed" or "initiation_failed"
var CheckoutAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_attempts_total",
		Help:      "Total number of checkout attempts, by terminal outcome.",
	},
	[]string{"outcome"},
)

// VerificationGuardTotal counts verification guard decisions.
// Label:
//   - result: "claimed" (first submission), "duplicate" (blocked) or "error"
var VerificationGuardTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_guard_total",
		Help:      "Total number of verification guard checks, by result.",
	},
	[]string{"result"},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartMutationsTotal counts cart mutations sent to the backend.
// Labels:
//   - op: "add", "update" or "remove"
//   - result: "ok" or "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by operation and result.",
	},
	[]string{"op", "result"},
)
