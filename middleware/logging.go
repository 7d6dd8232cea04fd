package middleware

import (
	"strconv"
	"time"

	"sample-app/logger"
	"sample-app/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// unmatchedEndpoint labels requests that hit no route, keeping metric
// cardinality bounded
const unmatchedEndpoint = "unmatched"

// LoggingMiddleware logs every request and records request metrics
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		elapsed := time.Since(start)
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = unmatchedEndpoint
		}
		status := c.Writer.Status()

		metrics.RequestsTotal.WithLabelValues(endpoint, c.Request.Method, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(endpoint, c.Request.Method).Observe(elapsed.Seconds())

		logger.Logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.String("query", c.Request.URL.RawQuery),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", elapsed),
		)
	}
}
