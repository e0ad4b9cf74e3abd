package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"pdp-recon/internal/logger"
)

// LoggerMiddleware writes one line per request to the application log
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if status >= 500 {
			logger.Error("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}
