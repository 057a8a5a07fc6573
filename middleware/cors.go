package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const allowedHeaders = "authorization, x-client-info, apikey, content-type"

// CORS lets the static site call the API from any origin. Preflight requests
// are answered directly.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", allowedHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
