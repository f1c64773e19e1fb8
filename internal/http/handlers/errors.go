package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/identity"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/models/dto"
)

const (
	msgInvalidJSON      = "Invalid JSON payload"
	msgInvalidAccountID = "User ID must be a positive integer"
	maxBodyBytes        = 1 << 20
)

var errTrailingData = errors.New("unexpected data after JSON value")

// statusFor maps a service error kind to its HTTP status.
func statusFor(kind identity.Kind) int {
	switch kind {
	case identity.KindMissingField, identity.KindUsernameTaken, identity.KindEmailTaken, identity.KindPolicyViolation:
		return http.StatusBadRequest
	case identity.KindInvalidCredentials, identity.KindAccountDeactivated, identity.KindUnauthenticated:
		return http.StatusUnauthorized
	case identity.KindForbidden:
		return http.StatusForbidden
	case identity.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ServiceErrorWriter returns a function that renders identity errors as
// {success:false, message} responses and logs internal causes.
func ServiceErrorWriter(log logging.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		kind := identity.KindOf(err)
		if kind == identity.KindInternal {
			log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		}
		respond.Error(w, statusFor(kind), identity.PublicMessage(err))
	}
}

// decodeJSON reads a single JSON value from the request body. An empty body
// decodes as an empty object; anything after the first value is rejected. On
// failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		if extra := dec.Decode(&struct{}{}); !errors.Is(extra, io.EOF) {
			err = errTrailingData
		}
	}
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return true
	case errors.Is(err, dto.ErrInvalidAccountID):
		respond.Error(w, http.StatusBadRequest, msgInvalidAccountID)
	default:
		respond.Error(w, http.StatusBadRequest, msgInvalidJSON)
	}
	return false
}
