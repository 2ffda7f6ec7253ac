package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/identity"
)

// LoginRequest contains the credentials for user login
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=72"`
}

// LoginResponse contains the issued tokens and the authenticated user
type LoginResponse struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// RefreshTokenRequest contains the refresh token to exchange
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the access token being retired
type LogoutInput struct {
	UserID       uuid.UUID
	TokenJTI     string
	RemainingTTL time.Duration
}

// ChangePasswordRequest contains the input for password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// CreateUserRequest contains the input for creating a till user
type CreateUserRequest struct {
	Username    string        `json:"username" binding:"required,min=3,max=100"`
	DisplayName string        `json:"display_name" binding:"max=200"`
	Password    string        `json:"password" binding:"required,min=8,max=72"`
	Role        identity.Role `json:"role" binding:"required,oneof=CASHIER MANAGER ADMIN"`
}

// UserListFilter represents filter options for the user list
type UserListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UserResponse represents a till user without credentials
type UserResponse struct {
	ID          uuid.UUID           `json:"id"`
	Username    string              `json:"username"`
	DisplayName string              `json:"display_name"`
	Role        identity.Role       `json:"role"`
	Status      identity.UserStatus `json:"status"`
	LastLoginAt *time.Time          `json:"last_login_at,omitempty"`
	LockedUntil *time.Time          `json:"locked_until,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      u.Status,
		LastLoginAt: u.LastLoginAt,
		LockedUntil: u.LockedUntil,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
