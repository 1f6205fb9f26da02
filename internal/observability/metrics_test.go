package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerServesScrape(t *testing.T) {
	APIRequests().WithLabelValues("GET", "/api/v1/health", "200").Inc()
	StoreOperations().WithLabelValues("goal", "create", "demo", "ok").Inc()

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "api_requests_total")
	require.Contains(t, string(body), `store_operations_total{entity="goal",mode="demo",op="create",outcome="ok"}`)
}
