package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var httpRequestsTotal = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "http_requests_total",
	Help: "Total number of HTTP requests handled",
}, []string{"method", "path", "status_code"}))

var httpRequestLatency = makeCollector(prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    metricPrefix + "http_request_latency_seconds",
	Help:    "Histogram of HTTP request latencies in seconds",
	Buckets: defaultBuckets,
}, []string{"method", "path"}))

var pageViews = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "page_views_count",
	Help: "Total number of page loads served, by selected view",
}, []string{"view"}))

// RecordHTTPRequest records an HTTP request being handled. path should be the
// route template, not the raw URL, to keep label cardinality bounded.
func RecordHTTPRequest(method, path string, statusCode int, latencySec float64) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	if latencySec > 0 {
		httpRequestLatency.WithLabelValues(method, path).Observe(latencySec)
	}
}

// RecordPageView records a page load resolved to view
func RecordPageView(view string) {
	pageViews.WithLabelValues(view).Inc()
}
