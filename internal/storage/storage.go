package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/accounts-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Uniqueness conflicts on specific account columns. Both match ErrAlreadyExists.
var (
	ErrUsernameTaken = fmt.Errorf("username: %w", ErrAlreadyExists)
	ErrEmailTaken    = fmt.Errorf("email: %w", ErrAlreadyExists)
)

// KeyFunc produces a fresh token key.
type KeyFunc func() (string, error)

// AccountStore captures account persistence. Implementations must enforce
// username and email uniqueness themselves.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	FindByID(ctx context.Context, id int64) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByEmail(ctx context.Context, email string) (models.Account, error)
	// ListAccounts returns every account ordered by creation time, then insertion order.
	ListAccounts(ctx context.Context) ([]models.Account, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	// ToggleActive atomically flips the active flag and returns its new value.
	ToggleActive(ctx context.Context, id int64) (bool, error)
}

// TokenStore captures bearer token persistence.
type TokenStore interface {
	// GetOrCreateToken returns the account's token, minting one with newKey
	// if none exists. Concurrent callers for one account get the same token.
	GetOrCreateToken(ctx context.Context, accountID int64, newKey KeyFunc) (models.Token, error)
	FindAccountByToken(ctx context.Context, key string) (models.Account, error)
}

// Store is the full persistence contract used by the identity service.
type Store interface {
	AccountStore
	TokenStore
	Close()
}
