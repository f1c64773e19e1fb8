package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/config"
	"github.com/hongminglow/accounts-be/internal/identity"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/middleware"
	"github.com/hongminglow/accounts-be/internal/storage/memory"
)

func TestHandler_ChainsMiddleware(t *testing.T) {
	log := logging.Discard()
	svc, err := identity.NewService(memory.NewStore(), auth.NewBcryptHasher(bcrypt.MinCost),
		auth.NewPasswordPolicy(8), auth.NewTokenGenerator(), log)
	require.NoError(t, err)

	h := Handler(config.Config{CORSOrigins: []string{"http://localhost:5173"}}, svc, log)

	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/users/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
