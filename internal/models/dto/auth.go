package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/accounts-be/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// LoginRequest accepts the login identifier as either "userid" or "username".
type LoginRequest struct {
	UserID   string `json:"userid"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identifier returns the supplied login name, preferring "userid".
func (r LoginRequest) Identifier() string {
	if r.UserID != "" {
		return r.UserID
	}
	return r.Username
}

type ChangeRoleRequest struct {
	UserID  AccountID `json:"userId"`
	NewRole string    `json:"newRole"`
}

type ToggleStatusRequest struct {
	UserID AccountID `json:"userId"`
}

// AccountID is an account id that decodes from a JSON number or string.
// Zero means absent.
type AccountID int64

// ErrInvalidAccountID is returned when a user id is neither empty nor a positive integer.
var ErrInvalidAccountID = errors.New("invalid user id")

func (id *AccountID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*id = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return ErrInvalidAccountID
	}
	*id = AccountID(n)
	return nil
}

// Account is the public JSON shape of an account. It never carries the
// password hash or token key.
type Account struct {
	ID        string `json:"id"`
	UserID    string `json:"userid"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	IsActive  bool   `json:"isActive"`
}

// NewAccount renders a models.Account for API responses.
func NewAccount(a models.Account) Account {
	return Account{
		ID:        strconv.FormatInt(a.ID, 10),
		UserID:    a.Username,
		Username:  a.Username,
		Email:     a.Email,
		Mobile:    a.ContactNumber,
		Role:      a.Role.String(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339Nano),
		IsActive:  a.IsActive,
	}
}

// NewAccounts renders a slice of accounts, never returning nil.
func NewAccounts(accounts []models.Account) []Account {
	out := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, NewAccount(a))
	}
	return out
}

type RegisterResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	User    Account `json:"user"`
}

type LoginResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    Account `json:"user"`
}

type AccountListResponse struct {
	Success bool      `json:"success"`
	Users   []Account `json:"users"`
}

type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ToggleStatusResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	IsActive bool   `json:"isActive"`
}
