package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/retail/backend/internal/infrastructure/logger"
	"github.com/retail/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ReceiptsPath is where locally archived receipts are served from
const ReceiptsPath = "/receipts"

// Config holds what the engine needs besides the handlers
type Config struct {
	Service          string
	APIVersion       string
	HTTP             config.HTTPConfig
	Swagger          config.SwaggerConfig
	TracingEnabled   bool
	ProfilingEnabled bool
	Meter            metric.Meter            // nil disables HTTP metrics
	Authenticator    middleware.Authenticator // nil disables authentication
	ReceiptDir       string                   // served under ReceiptsPath when set
	Logger           *zap.Logger
}

// New builds the gin engine with the full middleware chain, the API routes
// and the operational endpoints
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(cfg.Service, cfg.TracingEnabled))
	engine.Use(middleware.SpanEnricher())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.HTTP))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
		}
		engine.Use(metrics)
	}
	authEnabled := cfg.Authenticator != nil
	if authEnabled {
		jwtCfg := middleware.DefaultJWTConfig(cfg.Authenticator)
		jwtCfg.Logger = log
		engine.Use(middleware.JWTAuthWithConfig(jwtCfg))
	}
	engine.Use(middleware.Profiling(cfg.ProfilingEnabled))

	engine.NoRoute(middleware.NoRoute())
	engine.NoMethod(middleware.NoMethod())

	engine.GET("/swagger/*any", middleware.SwaggerProtection(cfg.Swagger), ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.ReceiptDir != "" {
		engine.Static(ReceiptsPath, cfg.ReceiptDir)
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.GET("/ready", h.System.Ready)
	}

	var opts []RouterOption
	if cfg.APIVersion != "" {
		opts = append(opts, WithAPIVersion(cfg.APIVersion))
	}
	r := NewRouter(engine, opts...)
	for _, group := range DomainGroups(h, authEnabled) {
		r.Register(group)
	}
	r.Setup()

	log.Info("HTTP routes registered",
		zap.String("base_path", r.BasePath()),
		zap.Int("routes", len(engine.Routes())),
		zap.Bool("auth_enabled", authEnabled),
	)
	return engine, nil
}
