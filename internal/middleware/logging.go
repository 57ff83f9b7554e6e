package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"regauth/internal/metrics"
)

// RequestLogger logs every request with slog and reports it to rec.
func RequestLogger(rec metrics.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		took := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RecordHTTPRequest(c.Request.Method, route, status, took)

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "[http] request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"took", took,
			"ip", c.ClientIP(),
		)
	}
}
