package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/accounts-be/internal/models"
)

type stubAuthenticator map[string]models.Account

var errBadToken = errors.New("bad token")

func (s stubAuthenticator) Authenticate(_ context.Context, key string) (models.Account, error) {
	if acc, ok := s[key]; ok {
		return acc, nil
	}
	return models.Account{}, errBadToken
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Token abc123", "abc123"},
		{"token abc123", "abc123"},
		{"Bearer abc123", "abc123"},
		{"  Token   abc123  ", "abc123"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Token", ""},
		{"Token a b", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, TokenFromHeader(tc.header), tc.header)
	}
}

func TestRequireToken(t *testing.T) {
	alice := models.Account{ID: 7, Username: "alice", IsActive: true}
	authn := stubAuthenticator{"good": alice}

	var failed error
	fail := func(w http.ResponseWriter, _ *http.Request, err error) {
		failed = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	h := RequireToken(authn, fail, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := AccountFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, alice, acc)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/users/", nil)
	req.Header.Set("Authorization", "Token good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, failed)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/users/", nil)
	req.Header.Set("Authorization", "Token nope")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.ErrorIs(t, failed, errBadToken)
}

func TestAccountFromContext_Missing(t *testing.T) {
	_, ok := AccountFromContext(context.Background())
	assert.False(t, ok)
}
