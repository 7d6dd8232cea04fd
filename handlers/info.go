package handlers

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

// Info reports process and environment facts for debugging
// GET /api/info
func (h *Handler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Environment:        h.cfg.Environment,
		GoVersion:          runtime.Version(),
		Platform:           runtime.GOOS,
		Arch:               runtime.GOARCH,
		AppInsights:        h.cfg.AppInsightsConfigured,
		DatabaseConfigured: h.cfg.Database.Configured(),
	})
}
