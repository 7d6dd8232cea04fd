package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NotFound answers every unmatched route or method with the requested path
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "Not found",
		"path":  c.Request.URL.Path,
	})
}
