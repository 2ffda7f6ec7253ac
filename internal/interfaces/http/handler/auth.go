package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/retail/backend/internal/application/identity"
	"github.com/retail/backend/internal/interfaces/http/middleware"
)

// AuthService covers login, token exchange and the caller's own account
type AuthService interface {
	Login(ctx context.Context, req appidentity.LoginRequest) (*appidentity.LoginResponse, error)
	RefreshToken(ctx context.Context, req appidentity.RefreshTokenRequest) (*appidentity.LoginResponse, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*appidentity.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req appidentity.ChangePasswordRequest) error
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	auth AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary      Log in
// @Description  Exchange a username and password for an access and a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=appidentity.LoginResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      423 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a new token pair. The old refresh token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=appidentity.LoginResponse}
// @Failure      401 {object} ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req appidentity.RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Log out
// @Description  Revoke the access token used for this request
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := claims.UserUUID()
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	err = h.auth.Logout(c.Request.Context(), appidentity.LogoutInput{
		UserID:       userID,
		TokenJTI:     claims.ID,
		RemainingTTL: claims.RemainingTTL(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	user, err := h.auth.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.ChangePasswordRequest true "Old and new password"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req appidentity.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
