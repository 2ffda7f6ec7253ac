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

// UserServiceConfig holds the tunables of UserService
type UserServiceConfig struct {
	BcryptCost int
	// RevocationTTL must cover the longest-lived token, the refresh token
	RevocationTTL time.Duration
}

// UserService handles user management operations
type UserService struct {
	userRepo  identity.UserRepository
	blacklist auth.TokenBlacklist
	config    UserServiceConfig
	logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	config UserServiceConfig,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  userRepo,
		blacklist: blacklist,
		config:    config,
		logger:    logger,
	}
}

// Create creates a new till user
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to check username", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Username "+req.Username+" is taken")
	}

	user, err := identity.NewUser(req.Username, req.DisplayName, req.Password, req.Role, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if shared.IsDomainError(err) {
			return nil, err
		}
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to create user", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List lists users with pagination
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	if f.OrderBy == "" {
		f.OrderBy, f.OrderDir = "username", "asc"
	}

	users, err := s.userRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, shared.WrapDomainError(shared.CodePersistence, "Failed to list users", err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, shared.WrapDomainError(shared.CodePersistence, "Failed to count users", err)
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	return items, total, nil
}

// Deactivate disables a user and revokes every token already issued to it.
// Users cannot deactivate themselves.
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	if actor, ok := shared.ActorFromContext(ctx); ok && actor.ID == id {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Users cannot deactivate themselves")
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := user.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to deactivate user", err)
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, id.String(), s.config.RevocationTTL); err != nil {
			// the account itself is disabled; refresh will fail on CanLogin
			s.logger.Error("Failed to revoke tokens of deactivated user",
				zap.String("user_id", id.String()), zap.Error(err))
		}
	}

	s.logger.Info("User deactivated", zap.String("user_id", id.String()))
	resp := ToUserResponse(user)
	return &resp, nil
}

// BootstrapAdmin creates the first administrator when the user table is
// empty. It is a no-op otherwise and reports whether a user was created.
func (s *UserService) BootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, shared.WrapDomainError(shared.CodePersistence, "Failed to count users", err)
	}
	if count > 0 {
		return false, nil
	}
	if username == "" || password == "" {
		return false, shared.NewDomainError(shared.CodeValidation, "Admin username and password are required on first start")
	}

	if _, err := s.Create(ctx, CreateUserRequest{
		Username:    username,
		DisplayName: "Administrator",
		Password:    password,
		Role:        identity.RoleAdmin,
	}); err != nil {
		return false, err
	}
	s.logger.Warn("Bootstrap administrator created; change its password", zap.String("username", username))
	return true, nil
}

func (s *UserService) find(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, "User not found")
		}
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to load user", err)
	}
	return user, nil
}
