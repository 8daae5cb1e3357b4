package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the key used to store request ID in context
const RequestIDKey = "request_id"

// RequestID middleware adds a unique request ID to each request.
// An X-Request-ID sent by the caller or the function host is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger logs one line per request with its outcome
func StructuredLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logrus.Fields{
			"request_id":    c.GetString(RequestIDKey),
			"method":        c.Request.Method,
			"path":          path,
			"route":         c.FullPath(),
			"status_code":   status,
			"latency_ms":    float64(latency.Nanoseconds()) / 1000000,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"response_size": c.Writer.Size(),
		}

		if raw != "" {
			fields["query"] = raw
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error("Server error")
		case status >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// AuditLogger records every write made through the contacts resource
func AuditLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		operation := auditOperation(c.Request.Method, c.Param("id"))
		if operation == "" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"audit":          true,
			"request_id":     c.GetString(RequestIDKey),
			"operation":      operation,
			"resource_type":  "contact",
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"status_code":    c.Writer.Status(),
			"client_ip":      c.ClientIP(),
			"operation_time": time.Since(start).Milliseconds(),
		}

		if id := c.Param("id"); id != "" {
			fields["resource_id"] = id
		}

		logger.WithFields(fields).Info("Audit log")
	}
}

// auditOperation names the write a request performs, or "" for reads.
// GET reset rewrites the whole table so it is audited too.
func auditOperation(method, id string) string {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut:
		return "UPDATE"
	case http.MethodDelete:
		if id == "all" {
			return "DELETE_ALL"
		}
		return "DELETE"
	case http.MethodGet:
		if id == "reset" {
			return "RESET"
		}
	}
	return ""
}
