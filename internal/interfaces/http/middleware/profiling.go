package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/infrastructure/telemetry"
)

// Profiling attaches route and method labels to the CPU samples taken
// while the request runs. Health and docs routes stay unlabelled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	skip := []string{"/health", "/ready"}
	skipPrefixes := []string{"/swagger", "/receipts"}

	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, skip, skipPrefixes) {
			c.Next()
			return
		}
		labels := map[string]string{telemetry.LabelMethod: c.Request.Method}
		if route := c.FullPath(); route != "" {
			labels[telemetry.LabelRoute] = route
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
