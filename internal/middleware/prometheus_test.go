package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"photoflow/internal/metrics"
	appmiddleware "photoflow/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func newInstrumentedEcho() *echo.Echo {
	e := echo.New()
	e.Use(appmiddleware.PrometheusMetrics)

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/v1/photos/:id", ok)
	e.GET("/metrics", ok)
	e.GET("/storage/:file", ok)

	return e
}

func TestPrometheusMetrics_CountsByRouteTemplate(t *testing.T) {
	e := newInstrumentedEcho()

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/photos/:id", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/photos/123", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestPrometheusMetrics_SkipsScrapeEndpoint(t *testing.T) {
	e := newInstrumentedEcho()

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/metrics", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before, testutil.ToFloat64(counter))
}

func TestPrometheusMetrics_SkipsStaticBucket(t *testing.T) {
	e := newInstrumentedEcho()

	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/storage/:file", "200")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/storage/a.jpg", nil)
	e.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before, testutil.ToFloat64(counter))
}
