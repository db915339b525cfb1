package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 until the database answers a ping.
func Ready(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /readyz", "database not configured")
			return
		}
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, "GET /readyz", "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
