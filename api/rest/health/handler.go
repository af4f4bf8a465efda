package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName = "biolink-identity-stub"
	version     = "1.0.0"
)

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: version,
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
