package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const rootMessage = "SMM Panel API is running"

// Root GET /.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": rootMessage})
}

// Health GET RouteGroup + HealthRoute.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
}
