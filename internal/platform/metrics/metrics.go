// Package metrics declares the storefront's Prometheus collectors.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BackendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_requests_total",
		Help: "Requests sent to the rental backend, by operation and outcome.",
	}, []string{"operation", "outcome"})

	BackendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_request_duration_seconds",
		Help:    "Latency of requests sent to the rental backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	TokenFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_token_fetches_total",
		Help: "Bearer token acquisitions, by outcome.",
	}, []string{"outcome"})

	BookingsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_bookings_submitted_total",
		Help: "Booking submissions, by outcome.",
	}, []string{"outcome"})

	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_bookings_cancelled_total",
		Help: "Bookings cancelled through the storefront.",
	})

	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_payments_recorded_total",
		Help: "Payment events processed, by outcome.",
	}, []string{"outcome"})
)

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
