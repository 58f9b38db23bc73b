package metrics

import "github.com/prometheus/client_golang/prometheus"

const metricPrefix = "countrybot_"

var defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// makeCollector registers c with the default registry and returns it
func makeCollector[T prometheus.Collector](c T) T {
	prometheus.MustRegister(c)
	return c
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
