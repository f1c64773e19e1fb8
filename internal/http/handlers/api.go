package handlers

import (
	"net/http"

	"github.com/hongminglow/accounts-be/internal/http/respond"
)

var endpoints = []string{
	"/api/",
	"/api/test/",
	"/api/auth/register/",
	"/api/auth/login/",
	"/api/auth/users/",
	"/api/auth/change-role/",
	"/api/auth/toggle-status/",
}

// APIHandler serves the API overview and the echo test endpoint.
type APIHandler struct{}

func NewAPIHandler() *APIHandler {
	return &APIHandler{}
}

func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{$}", h.handleOverview)
	mux.HandleFunc("GET /api/test/{$}", h.handleTestGet)
	mux.HandleFunc("POST /api/test/{$}", h.handleTestPost)
}

func (h *APIHandler) handleOverview(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":   "Hello from the accounts API!",
		"status":    "success",
		"endpoints": endpoints,
	})
}

func (h *APIHandler) handleTestGet(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "GET request successful",
		"method":  http.MethodGet,
	})
}

func (h *APIHandler) handleTestPost(w http.ResponseWriter, r *http.Request) {
	var received any
	if !decodeJSON(w, r, &received) {
		return
	}
	if received == nil {
		received = map[string]any{}
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"message":       "POST request successful",
		"method":        http.MethodPost,
		"received_data": received,
	})
}
