package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gopherauth/internal/metrics"
	"gopherauth/internal/transport/http/response"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(response.ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLog logs each request and records it in the HTTP metrics.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)

		route := c.FullPath()
		if route != "/metrics" {
			metrics.RecordRequest(c.Request.Method, route, c.Writer.Status(), dur.Seconds())
		}
		slog.Info("request",
			"request_id", c.GetString(response.ContextRequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", dur.Milliseconds(),
			"size", c.Writer.Size(),
			"client_ip", c.ClientIP())
	}
}

// Recovery logs panics with the request id and answers 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		slog.Error("panic recovered",
			"request_id", c.GetString(response.ContextRequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"panic", fmt.Sprint(rec),
			"stack", string(debug.Stack()))
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
