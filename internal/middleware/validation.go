package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultMaxBodySize caps contact payloads
const DefaultMaxBodySize int64 = 1 << 20

// ErrorResponse is the body middleware writes when it rejects a request
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

func reject(c *gin.Context, status int, title, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     title,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// RateLimiter implements a process-wide token bucket.
// A non-positive rate disables limiting.
func RateLimiter(requestsPerSecond float64, burstSize int, logger *logrus.Logger) gin.HandlerFunc {
	if requestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString(RequestIDKey),
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
			}).Warn("Rate limit exceeded")

			reject(c, http.StatusTooManyRequests, "Rate limit exceeded",
				fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond))
			return
		}
		c.Next()
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// swagger UI loads inline scripts
		if c.FullPath() != "/swagger/*any" {
			c.Header("Content-Security-Policy", "default-src 'none'")
		}

		c.Next()
	}
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			reject(c, http.StatusRequestEntityTooLarge, "Request too large",
				fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", c.Request.ContentLength, maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
