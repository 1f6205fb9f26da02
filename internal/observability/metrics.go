package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	storeOperationsTotal  *prometheus.CounterVec
	storeOperationSeconds *prometheus.HistogramVec
	storeReorderPartial   *prometheus.CounterVec
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors used by stores and the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		storeOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of store operations by entity, operation, mode and outcome.",
		}, []string{"entity", "op", "mode", "outcome"})

		storeOperationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "store_operation_seconds",
			Help:    "Latency distribution for remote store calls.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"entity", "op"})

		storeReorderPartial = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_reorder_partial_total",
			Help: "Total number of reorders that failed after persisting some rows.",
		}, []string{"entity"})

		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(storeOperationsTotal, storeOperationSeconds, storeReorderPartial, apiRequestsTotal, apiLatencySeconds)
	})
}

// StoreOperations exposes the counter for store operations.
func StoreOperations() *prometheus.CounterVec {
	RegisterMetrics()
	return storeOperationsTotal
}

// StoreLatency exposes the latency histogram for remote store calls.
func StoreLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return storeOperationSeconds
}

// StoreReorderPartial exposes the counter for partially applied reorders.
func StoreReorderPartial() *prometheus.CounterVec {
	RegisterMetrics()
	return storeReorderPartial
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}
