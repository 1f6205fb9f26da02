package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapeOnce    sync.Once
	scrapeHandler fiber.Handler
)

// MetricsHandler serves the store and API collectors in the Prometheus text or
// OpenMetrics format. Scrapes are themselves counted.
func MetricsHandler() fiber.Handler {
	scrapeOnce.Do(func() {
		RegisterMetrics()
		handler := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			EnableOpenMetrics:   true,
			MaxRequestsInFlight: 4,
		})
		scrapeHandler = adaptor.HTTPHandler(promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer, handler))
	})
	return scrapeHandler
}
