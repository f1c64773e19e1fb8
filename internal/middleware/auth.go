package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/accounts-be/internal/models"
)

// Authenticator resolves a token key to the account that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (models.Account, error)
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type accountKey struct{}

// WithAccount stores the authenticated account in ctx.
func WithAccount(ctx context.Context, account models.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the account stored by RequireToken.
func AccountFromContext(ctx context.Context) (models.Account, bool) {
	account, ok := ctx.Value(accountKey{}).(models.Account)
	return account, ok
}

// RequireToken authenticates the Authorization header and rejects the
// request through fail when no active account owns the presented key.
func RequireToken(authn Authenticator, fail ErrorWriter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := authn.Authenticate(r.Context(), TokenFromHeader(r.Header.Get("Authorization")))
		if err != nil {
			fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
	})
}

// TokenFromHeader extracts the key from "Token <key>" or "Bearer <key>".
// Any other shape yields an empty key.
func TokenFromHeader(header string) string {
	scheme, key, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	if !strings.EqualFold(scheme, "Token") && !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	key = strings.TrimSpace(key)
	if strings.ContainsAny(key, " \t") {
		return ""
	}
	return key
}
