// Package middleware provides the gin middleware chain of the retail API.
package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retail/backend/internal/interfaces/http/dto"
)

const (
	// RequestIDKey is the gin context key holding the request id
	RequestIDKey = "request_id"
	// HeaderRequestID carries the request id in both directions
	HeaderRequestID = "X-Request-ID"
	// MaxRequestIDLength bounds client supplied request ids
	MaxRequestIDLength = 128
)

// RequestID adds a request id to each request, reusing the client's one
// when it is present and short enough
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(HeaderRequestID, requestID)
		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// abortWithError stops the chain with the standard error envelope. The
// status follows the error code.
func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// SecurityConfig holds configuration for security headers
type SecurityConfig struct {
	HSTSEnabled       bool
	HSTSMaxAge        int // seconds
	CSPDirective      string
	PermissionsPolicy string
}

// DefaultSecurityConfig returns settings for an API that serves no pages
// apart from receipts and the API docs
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSEnabled:       false,
		HSTSMaxAge:        31536000,
		CSPDirective:      "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'",
		PermissionsPolicy: "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
	}
}

// Secure adds security headers using DefaultSecurityConfig
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers to every response
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	var hsts string
	if cfg.HSTSEnabled {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if cfg.CSPDirective != "" {
			h.Set("Content-Security-Policy", cfg.CSPDirective)
		}
		if cfg.PermissionsPolicy != "" {
			h.Set("Permissions-Policy", cfg.PermissionsPolicy)
		}
		if hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}

// NoRoute answers unknown routes with the standard error envelope
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWithError(c, dto.ErrCodeNotFound, fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path))
	}
}

// NoMethod answers a known route called with the wrong verb
func NoMethod() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Method not allowed", GetRequestID(c)))
	}
}
