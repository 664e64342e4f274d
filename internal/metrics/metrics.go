package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parsshop",
		Name:      "orders_created_total",
		Help:      "Orders committed, by payment type.",
	}, []string{"payment_type"})

	PaymentsVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parsshop",
		Name:      "payments_verified_total",
		Help:      "Gateway verifications, by outcome.",
	}, []string{"outcome"})

	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parsshop",
		Name:      "gateway_requests_total",
		Help:      "Payment session requests sent to the gateway, by outcome.",
	}, []string{"outcome"})

	SweeperRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parsshop",
		Name:      "sweeper_runs_total",
		Help:      "Reconciliation sweeps executed.",
	})

	SweeperSettled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parsshop",
		Name:      "sweeper_settled_total",
		Help:      "Stale orders the sweeper settled as paid.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parsshop",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

// Handler serves the scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
