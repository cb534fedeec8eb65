package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles liveness probes.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
