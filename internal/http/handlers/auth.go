package handlers

import (
	"net/http"

	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/identity"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/models/dto"
)

const (
	msgRegistered = "Registration successful! You can now login with your credentials."
	msgLoggedIn   = "Login successful"
)

// AuthHandler owns the public register/login endpoints.
type AuthHandler struct {
	svc      *identity.Service
	failWith func(http.ResponseWriter, *http.Request, error)
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *identity.Service, log logging.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, failWith: ServiceErrorWriter(log)}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register/{$}", h.handleRegister)
	mux.HandleFunc("POST /api/auth/login/{$}", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.svc.Register(r.Context(), identity.RegisterInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		ContactNumber: req.Mobile,
	})
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, dto.RegisterResponse{
		Success: true,
		Message: msgRegistered,
		User:    dto.NewAccount(created),
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, key, err := h.svc.Login(r.Context(), req.Identifier(), req.Password)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, dto.LoginResponse{
		Success: true,
		Message: msgLoggedIn,
		Token:   key,
		User:    dto.NewAccount(account),
	})
}
