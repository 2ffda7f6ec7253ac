package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/identity"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Authentication error codes
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenRevoked       = "TOKEN_REVOKED"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
	BcryptCost       int
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if blacklist == nil {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	s.logger.Info("Login attempt", zap.String("username", req.Username))

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to load user during login", zap.Error(err))
			return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to load user", err)
		}
		s.logger.Warn("User not found during login", zap.String("username", req.Username))
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	}

	if !user.CanLogin() {
		if user.IsLocked() {
			s.logger.Warn("Login attempt for locked account", zap.String("username", req.Username))
			return nil, shared.NewDomainError(CodeAccountLocked, "Account is locked. Please try again later")
		}
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", req.Username))
		return nil, shared.NewDomainError(CodeAccountInactive, "Account has been deactivated")
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}

		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", req.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError(CodeAccountLocked, "Too many failed login attempts. Account has been locked")
		}

		s.logger.Warn("Invalid password attempt",
			zap.String("username", req.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to generate authentication tokens", err)
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// the tokens are already valid; bookkeeping loss only affects last_login_at
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The role is read
// from the user record, so a role change takes effect on the next refresh.
// The old refresh token is revoked.
func (s *AuthService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.checkRevocation(ctx, claims); err != nil {
		return nil, err
	}

	userID, _ := claims.UserUUID()
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeTokenInvalid, "User no longer exists")
		}
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to load user", err)
	}
	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError(CodeAccountInactive, "Account is no longer active")
	}

	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to generate authentication tokens", err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke rotated refresh token", zap.Error(err))
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))

	return &LoginResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}

// Authenticate validates an access token and checks it against the blacklist.
// It is the single entry point used by the HTTP middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.checkRevocation(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Logout revokes the caller's access token until it would have expired
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI != "" {
		if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.RemainingTTL); err != nil {
			s.logger.Error("Failed to revoke token on logout", zap.Error(err))
			return shared.WrapDomainError(shared.CodePersistence, "Failed to revoke token", err)
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser retrieves the authenticated user's record
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "User not found")
		}
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to load user", err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword changes a user's password after verifying the old one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.CodeNotFound, "User not found")
		}
		return shared.WrapDomainError(shared.CodePersistence, "Failed to load user", err)
	}

	if !user.VerifyPassword(req.OldPassword) {
		return shared.NewDomainError(CodeInvalidCredentials, "Current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword, s.config.BcryptCost); err != nil {
		return err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user after password change", zap.Error(err))
		return shared.WrapDomainError(shared.CodePersistence, "Failed to update password", err)
	}

	s.logger.Info("User password changed", zap.String("user_id", userID.String()))
	return nil
}

func (s *AuthService) checkRevocation(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Token blacklist lookup failed", zap.Error(err))
		return shared.WrapDomainError(shared.CodePersistence, "Failed to check token revocation", err)
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAtTime())
		if err != nil {
			s.logger.Error("User revocation lookup failed", zap.Error(err))
			return shared.WrapDomainError(shared.CodePersistence, "Failed to check token revocation", err)
		}
	}
	if revoked {
		return shared.WrapDomainError(CodeTokenRevoked, "Token has been revoked", auth.ErrTokenBlacklisted)
	}
	return nil
}

func tokenError(err error) error {
	if errors.Is(err, auth.ErrExpiredToken) {
		return shared.WrapDomainError(CodeTokenExpired, "Token has expired", err)
	}
	return shared.WrapDomainError(CodeTokenInvalid, "Invalid token", err)
}
