package middleware

import (
	"strconv"
	"strings"
	"time"

	"photoflow/internal/metrics"

	"github.com/labstack/echo/v4"
)

// PrometheusMetrics records request counts and latency per route template.
// The scrape endpoint is not observed (it would count its own scrapes) and
// neither is the static photo bucket, whose traffic would drown the API
// latency histogram.
func PrometheusMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		route := c.Path()
		if route == "/metrics" || strings.HasPrefix(route, "/storage") {
			return next(c)
		}

		start := time.Now()
		err := next(c)
		duration := time.Since(start).Seconds()

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request().Method,
			route,
			strconv.Itoa(c.Response().Status),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request().Method,
			route,
		).Observe(duration)

		return err
	}
}
