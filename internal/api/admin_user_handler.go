package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bankcards-api/internal/api/shared"
	"github.com/phrazzld/bankcards-api/internal/domain"
	"github.com/phrazzld/bankcards-api/internal/platform/logger"
	"github.com/phrazzld/bankcards-api/internal/service"
)

// AdminUserHandler serves the user management endpoints for administrators.
type AdminUserHandler struct {
	userService service.UserService
	pagination  Pagination
	logger      *slog.Logger
}

// NewAdminUserHandler creates a new AdminUserHandler.
func NewAdminUserHandler(userService service.UserService, pagination Pagination, logger *slog.Logger) *AdminUserHandler {
	if userService == nil {
		// ALLOW-PANIC: constructor wiring error
		panic("userService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminUserHandler{
		userService: userService,
		pagination:  pagination,
		logger:      logger.With(slog.String("component", "admin_user_handler")),
	}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r, h.pagination.AdminDefaultSize, h.pagination.MaxSize)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	users, err := h.userService.ListUsers(r.Context(), search, page)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.NewPageResponse(users, newUserResponse))
}

// GetUser handles GET /api/admin/users/{id}.
func (h *AdminUserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(*user))
}

// UpdateUser handles POST /api/admin/users/{id}.
func (h *AdminUserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("role", "must be one of: USER ADMIN", err))
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), userID, service.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Enabled:  *req.Enabled,
		Role:     role,
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(*user))
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *AdminUserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.userService.DeleteUser(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user deleted",
		slog.String("user_id", userID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// BlockUser handles PATCH /api/admin/users/{id}/block.
func (h *AdminUserHandler) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, h.userService.BlockUser)
}

// UnblockUser handles PATCH /api/admin/users/{id}/unblock.
func (h *AdminUserHandler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.setEnabled(w, r, h.userService.UnblockUser)
}

func (h *AdminUserHandler) setEnabled(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, id uuid.UUID) error,
) {
	userID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := apply(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
