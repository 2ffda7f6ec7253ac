package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/identity"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/auth"
	"github.com/retail/backend/internal/infrastructure/logger"
	"github.com/retail/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleKey     = "jwt_role"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// Authenticator validates an access token, including revocation
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Authenticator    Authenticator
	SkipPaths        []string
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultJWTConfig skips health checks, login and the API docs
func DefaultJWTConfig(authenticator Authenticator) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Authenticator: authenticator,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/receipts",
		},
	}
}

// JWTAuth authenticates the bearer token with DefaultJWTConfig
func JWTAuth(authenticator Authenticator) gin.HandlerFunc {
	return JWTAuthWithConfig(DefaultJWTConfig(authenticator))
}

// JWTAuthWithConfig authenticates the bearer token and makes the token's
// user the actor of everything the request does
func JWTAuthWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path, cfg.SkipPaths, cfg.SkipPathPrefixes) {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			abortWithError(c, dto.ErrCodeUnauthorized, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			code := dto.NormalizeErrorCode(shared.ErrorCode(err))
			if code == "" {
				code = dto.ErrCodeTokenInvalid
			}
			log.Warn("JWT authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.String("code", code),
				zap.Error(err),
			)
			abortWithError(c, code, authErrorMessage(code))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Set(JWTRoleKey, claims.Role)

		ctx := shared.WithActor(c.Request.Context(), claims.Actor())
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole lets through users whose role includes min. It must run after
// JWTAuth; a request without claims is unauthenticated.
func RequireRole(min identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.Role.Includes(min) {
			abortWithError(c, dto.ErrCodeForbidden, "Role "+string(min)+" or higher is required")
			return
		}
		c.Next()
	}
}

// GetJWTClaims returns the claims stored by JWTAuth, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.UserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func skipPath(path string, paths, prefixes []string) bool {
	for _, p := range paths {
		if path == p {
			return true
		}
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func authErrorMessage(code string) string {
	switch code {
	case dto.ErrCodeTokenExpired:
		return "Token has expired"
	case dto.ErrCodeTokenRevoked:
		return "Token has been revoked"
	case dto.ErrCodePersistence:
		return "Authentication is temporarily unavailable"
	default:
		return "Invalid token"
	}
}
