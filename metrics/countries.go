package metrics

import "github.com/prometheus/client_golang/prometheus"

var countryLookups = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "country_lookups_count",
	Help: "Total number of country lookups, by where the answer came from",
}, []string{"kind", "source"}))

var countryAPIRequests = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "country_api_requests_count",
	Help: "Total number of requests made to the external country API",
}, []string{"endpoint", "status"}))

var countryAPILatency = makeCollector(prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:    metricPrefix + "country_api_latency_seconds",
	Help:    "Histogram of external country API latencies in seconds",
	Buckets: defaultBuckets,
}, []string{"endpoint"}))

var countryAPIRetries = makeCollector(prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: metricPrefix + "country_api_retries_count",
	Help: "Total number of retried external country API requests",
}, []string{"endpoint"}))

var countryCacheEntries = makeCollector(prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: metricPrefix + "country_cache_entries",
	Help: "Current number of entries in the country caches",
}, []string{"cache"}))

// RecordCountryLookup records where a lookup of kind (info, prefix, all) was answered from
func RecordCountryLookup(kind, source string) {
	countryLookups.WithLabelValues(kind, source).Inc()
}

// RecordCountryAPIRequest records a request to the external country API
func RecordCountryAPIRequest(endpoint string, success bool, latencySec float64) {
	countryAPIRequests.WithLabelValues(endpoint, statusLabel(success)).Inc()
	if latencySec > 0 {
		countryAPILatency.WithLabelValues(endpoint).Observe(latencySec)
	}
}

// RecordCountryAPIRetry records a retry of an external country API request
func RecordCountryAPIRetry(endpoint string) {
	countryAPIRetries.WithLabelValues(endpoint).Inc()
}

// SetCountryCacheEntries records the size of a country cache
func SetCountryCacheEntries(cache string, entries int) {
	countryCacheEntries.WithLabelValues(cache).Set(float64(entries))
}
