package handlers

import (
	"net/http"

	"sample-app/logger"
	"sample-app/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// isoMillis matches the millisecond UTC timestamps clients already parse
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Liveness returns the process status without touching the store
// GET /
//
// Response:
//   200: {"status": "healthy", "message": "...", "environment": "development", "timestamp": "...", "version": "1.0.0"}
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"message":     AppMessage,
		"environment": h.cfg.EnvironmentName(),
		"timestamp":   h.now().UTC().Format(isoMillis),
		"version":     AppVersion,
	})
}

// DBHealth checks that the store answers a trivial query
// GET /health/db
//
// Response:
//   200: {"status": "healthy", "database": {"connected": true, "time": "...", "version": "..."}}
//   503: {"status": "unhealthy", "database": {"connected": false, "error": "..."}}
func (h *Handler) DBHealth(c *gin.Context) {
	health, err := h.store.Health(c.Request.Context())
	if err != nil {
		metrics.DBHealthUp.Set(0)
		logStoreError("health/db", err, "Database health check failed")
		c.JSON(storeErrorStatus(routeHealth, err), gin.H{
			"status": "unhealthy",
			"database": gin.H{
				"connected": false,
				"error":     h.errorMessage(err),
			},
		})
		return
	}

	metrics.DBHealthUp.Set(1)
	logger.Logger.Debug("Database health check passed",
		zap.String(LogFieldEndpoint, "health/db"),
		zap.String("version", health.Version),
	)
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"database": gin.H{
			"connected": true,
			"time":      health.Time,
			"version":   health.Version,
		},
	})
}
