package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"shipment-tracker/internal/metrics"
)

// MetricsMiddleware records every request by its route pattern.
func MetricsMiddleware(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.Observe(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
