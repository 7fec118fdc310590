package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/valpere/frank/internal/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID gives every request an ID, taken from X-Request-ID when the
// caller supplies one. The ID is stored in the request context for logging
// and doubles as the refinement run ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := logger.WithFields(c.Request.Context(), logger.Fields{RunID: id, Component: "server"})
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			l.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			l.WarnContext(ctx, "request error", attrs...)
		default:
			l.InfoContext(ctx, "request", attrs...)
		}
	}
}
