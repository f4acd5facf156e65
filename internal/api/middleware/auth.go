package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader is the header carrying the API key
const APIKeyHeader = "X-API-Key"

// APIKeyMiddleware validates the configured API key on every request.
// An empty configured key disables the check, which is the local
// single-user setup.
func APIKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		provided := c.GetHeader(APIKeyHeader)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH_FAILED",
					"message": "API key is required",
				},
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "AUTH_FAILED",
					"message": "Invalid API key",
				},
			})
			return
		}

		c.Next()
	}
}
