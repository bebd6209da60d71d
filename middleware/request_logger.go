package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/melaka-ybbae/pnl-ai-sync/pkg/logger"
)

// RequestLogger writes one access line per request. Request id, workspace and
// user come from the request context, which the auth middleware fills in
// further down the chain. Health checks are not logged.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
			"client_ip", c.ClientIP(),
		}
		if query != "" && !strings.Contains(query, "token=") {
			attrs = append(attrs, "query", query)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		msg := "request completed"
		if strings.HasPrefix(c.Writer.Header().Get("Content-Type"), "text/event-stream") {
			msg = "stream closed"
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.Error(ctx, msg, attrs...)
		case status >= 400:
			logger.Warn(ctx, msg, attrs...)
		default:
			logger.Info(ctx, msg, attrs...)
		}
	}
}
