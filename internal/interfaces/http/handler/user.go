package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/retail/backend/internal/application/identity"
	"github.com/retail/backend/internal/interfaces/http/dto"
	"github.com/retail/backend/internal/interfaces/http/middleware"
)

// UserService manages till user accounts
type UserService interface {
	Create(ctx context.Context, req appidentity.CreateUserRequest) (*appidentity.UserResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*appidentity.UserResponse, error)
	List(ctx context.Context, filter appidentity.UserListFilter) ([]appidentity.UserResponse, int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*appidentity.UserResponse, error)
}

// UserHandler handles user administration endpoints
type UserHandler struct {
	BaseHandler
	users UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body appidentity.CreateUserRequest true "User creation request"
// @Success      201 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req appidentity.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// List godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        order_by  query string false "Sort field"
// @Param        order_dir query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]appidentity.UserResponse}
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter appidentity.UserListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	users, total, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, users, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Deactivate godoc
// @Summary      Deactivate a user
// @Description  The user can no longer log in. Users cannot deactivate themselves.
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id}/deactivate [post]
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if self, ok := middleware.GetUserID(c); ok && self == id {
		h.ErrorWithCode(c, dto.ErrCodeInvalidState, "Cannot deactivate your own account")
		return
	}
	user, err := h.users.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
