// Package telemetry provides application-level observability for the hub web front-end.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// served by the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<HUBWEB_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Hub API call counters and latency, labelled by client operation and error kind
//   - Page render outcomes, labelled by page and load status
//   - Authentication redirects triggered by expired hub sessions
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /packages/:kind/:repo/:name)
// rather than the raw request URL. Hub API metrics use the operation name
// (e.g. "SearchPackages") rather than the request path for the same reason.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Hub API metrics, recorded by the fetch wrapper for every upstream call.
//
// HubAPIRequestsTotal carries {operation, kind}. kind is "ok" for 2xx responses
// and the error kind otherwise ("unauthorized", "forbidden", "not_found", "other").
//
// Example PromQL queries:
//   - Upstream error ratio:  sum(rate(hub_api_requests_total{kind!="ok"}[5m])) / sum(rate(hub_api_requests_total[5m]))
//   - Slowest operations:    topk(5, histogram_quantile(0.95, sum by (operation, le) (rate(hub_api_request_duration_seconds_bucket[5m]))))
var (
	HubAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_api_requests_total",
			Help: "Total number of hub API calls, by client operation and outcome kind.",
		},
		[]string{"operation", "kind"},
	)

	HubAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hub_api_request_duration_seconds",
			Help:    "Histogram of hub API call latencies, by client operation.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// ViewLoadsTotal counts tri-state loads by page section and final status
// ("ready", "empty", "failed", "unauthorized").
var ViewLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "view_loads_total",
		Help: "Total number of page data loads, by view and resulting status.",
	},
	[]string{"view", "status"},
)

// AuthRedirectsTotal is incremented every time a page escalates an
// unauthorized API response into a redirect to the login page.
var AuthRedirectsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_redirects_total",
		Help: "Total number of redirects to the login page caused by unauthorized hub API responses.",
	},
)
