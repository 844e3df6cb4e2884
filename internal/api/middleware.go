package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/habitd/internal/logger"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		keyvals := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= 500:
			logger.Error("Request failed", append(keyvals, "errors", c.Errors.String())...)
		case status >= 400:
			logger.Warn("Request rejected", keyvals...)
		default:
			logger.Info("Request handled", keyvals...)
		}
	}
}

// requestTimeout attaches a deadline to the request context; store calls
// observe it through the context they receive.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
