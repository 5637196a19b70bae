// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "portal_api_request_duration_seconds",
			Help: "Duration of backend API requests in seconds",
		},
		[]string{"endpoint"},
	)

	TokenRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_token_refreshes_total",
			Help: "Total number of access-token refresh attempts",
		},
		[]string{"result"},
	)

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_cache_hits_total",
			Help: "GET-response cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	ForcedLogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_forced_logouts_total",
			Help: "Sessions ended by idle timeout or refresh failure",
		},
	)
)
