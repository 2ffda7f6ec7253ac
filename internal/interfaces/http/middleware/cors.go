package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/infrastructure/config"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Origin", "Content-Type", "Authorization", HeaderRequestID, "Accept"}
	corsExposeHeaders  = []string{HeaderRequestID, HeaderRateLimitLimit, HeaderRateLimitRemaining, "Retry-After"}
)

// CORS builds the cross-origin policy from the HTTP settings. No configured
// origins means cross-origin requests get no CORS headers at all, so
// browsers refuse them. A "*" entry allows every origin without credentials.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	if len(cfg.CORSAllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cc := cors.Config{
		AllowMethods:  orDefault(cfg.CORSAllowMethods, defaultCORSMethods),
		AllowHeaders:  orDefault(cfg.CORSAllowHeaders, defaultCORSHeaders),
		ExposeHeaders: corsExposeHeaders,
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(cfg.CORSAllowOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.CORSAllowOrigins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}
