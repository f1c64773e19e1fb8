package handlers

import (
	"fmt"
	"net/http"

	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/identity"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/middleware"
	"github.com/hongminglow/accounts-be/internal/models/dto"
)

// AdminHandler serves the token-authenticated account management endpoints.
type AdminHandler struct {
	svc      *identity.Service
	failWith func(http.ResponseWriter, *http.Request, error)
}

func NewAdminHandler(svc *identity.Service, log logging.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, failWith: ServiceErrorWriter(log)}
}

// Register attaches the admin routes behind token authentication. The admin
// role itself is checked by the service.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	protect := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireToken(h.svc, h.failWith, fn)
	}
	mux.Handle("GET /api/auth/users/{$}", protect(h.handleListUsers))
	mux.Handle("POST /api/auth/change-role/{$}", protect(h.handleChangeRole))
	mux.Handle("POST /api/auth/toggle-status/{$}", protect(h.handleToggleStatus))
}

func (h *AdminHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	acting, _ := middleware.AccountFromContext(r.Context())

	accounts, err := h.svc.ListAccounts(r.Context(), acting)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.AccountListResponse{
		Success: true,
		Users:   dto.NewAccounts(accounts),
	})
}

func (h *AdminHandler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	acting, _ := middleware.AccountFromContext(r.Context())

	var req dto.ChangeRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	role, err := h.svc.ChangeRole(r.Context(), acting, int64(req.UserID), req.NewRole)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	respond.OK(w, fmt.Sprintf("User role updated to %s successfully", role))
}

func (h *AdminHandler) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	acting, _ := middleware.AccountFromContext(r.Context())

	var req dto.ToggleStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	active, err := h.svc.ToggleStatus(r.Context(), acting, int64(req.UserID))
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	respond.JSON(w, http.StatusOK, dto.ToggleStatusResponse{
		Success:  true,
		Message:  fmt.Sprintf("User %s successfully", state),
		IsActive: active,
	})
}
