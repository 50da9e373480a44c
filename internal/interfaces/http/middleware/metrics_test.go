package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/profilegateway/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestHTTPMetricsWithMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	r := gin.New()
	r.Use(HTTPMetricsWithMeter(meter, true))
	r.GET("/api/customers/:id", func(c *gin.Context) {
		if c.Param("id") == "404" {
			c.Set(ErrorCodeKey, "ERR_NOT_FOUND")
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/api/customers/1", "/api/customers/2", "/api/customers/404"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	metrics := collect(t, reader)

	total, ok := metrics["http_server_request_total"]
	require.True(t, ok)
	byStatus := map[int64]int64{}
	for _, dp := range total.Data.(metricdata.Sum[int64]).DataPoints {
		route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
		assert.Equal(t, "/api/customers/:id", route.AsString())

		status, _ := dp.Attributes.Value(telemetry.AttrHTTPStatusCode)
		byStatus[status.AsInt64()] += dp.Value

		if status.AsInt64() == http.StatusNotFound {
			code, ok := dp.Attributes.Value(telemetry.AttrErrorCode)
			assert.True(t, ok)
			assert.Equal(t, "ERR_NOT_FOUND", code.AsString())
		}
	}
	assert.Equal(t, int64(2), byStatus[http.StatusOK])
	assert.Equal(t, int64(1), byStatus[http.StatusNotFound])

	duration := metrics["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.Len(t, duration.DataPoints, 1)
	assert.Equal(t, uint64(3), duration.DataPoints[0].Count)

	active := metrics["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.Len(t, active.DataPoints, 1)
	assert.Equal(t, int64(0), active.DataPoints[0].Value)
}

func TestHTTPMetrics_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: false}))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoutePattern_Unmatched(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	r := gin.New()
	r.Use(HTTPMetricsWithMeter(meter, true))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	total := collect(t, reader)["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.Len(t, total.DataPoints, 1)
	route, _ := total.DataPoints[0].Attributes.Value(telemetry.AttrHTTPRoute)
	assert.Equal(t, "unknown", route.AsString())
}
