// Package identity implements account registration, credential login with
// opaque token issuance, and administrative account management.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/storage"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// PasswordPolicy validates password strength. Rejections are returned as
// *auth.PolicyError.
type PasswordPolicy interface {
	Validate(password string) error
}

// KeyGenerator mints token keys.
type KeyGenerator interface {
	NewKey() (string, error)
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	ContactNumber string
}

// Service is the identity and access store.
type Service struct {
	store  storage.Store
	hasher Hasher
	policy PasswordPolicy
	keys   KeyGenerator
	log    logging.Logger
	now    func() time.Time

	// dummyHash is compared against when a login names an unknown user so
	// that path costs one hash verification like a wrong password does.
	dummyHash string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires the service to its collaborators.
func NewService(store storage.Store, hasher Hasher, policy PasswordPolicy, keys KeyGenerator, log logging.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		store:  store,
		hasher: hasher,
		policy: policy,
		keys:   keys,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	dummy, err := hasher.Hash("unknown-account-placeholder")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates a new active account with the user role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Account, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return models.Account{}, newError(KindMissingField, msgRegisterMissing)
	}

	if taken, err := s.exists(ctx, s.store.FindByUsername, username); err != nil {
		return models.Account{}, internalError(err)
	} else if taken {
		return models.Account{}, newError(KindUsernameTaken, msgUsernameTaken)
	}
	if taken, err := s.exists(ctx, s.store.FindByEmail, email); err != nil {
		return models.Account{}, internalError(err)
	} else if taken {
		return models.Account{}, newError(KindEmailTaken, msgEmailTaken)
	}

	if err := s.policy.Validate(in.Password); err != nil {
		var perr *auth.PolicyError
		if errors.As(err, &perr) {
			return models.Account{}, &Error{Kind: KindPolicyViolation, Message: perr.Message}
		}
		return models.Account{}, internalError(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.Account{}, internalError(fmt.Errorf("hash password: %w", err))
	}

	created, err := s.store.CreateAccount(ctx, models.Account{
		Username:      username,
		Email:         email,
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		PasswordHash:  hash,
		Role:          models.RoleUser,
		IsActive:      true,
		CreatedAt:     s.now(),
	})
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		return models.Account{}, newError(KindUsernameTaken, msgUsernameTaken)
	case errors.Is(err, storage.ErrEmailTaken):
		return models.Account{}, newError(KindEmailTaken, msgEmailTaken)
	case err != nil:
		return models.Account{}, internalError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info(ctx, "account registered", "account_id", created.ID, "username", created.Username)
	return created, nil
}

// Login verifies credentials and returns the account with its token key.
// Deactivation is only reported once the password has verified.
func (s *Service) Login(ctx context.Context, username, password string) (models.Account, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Account{}, "", newError(KindMissingField, msgLoginMissing)
	}

	account, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		_ = s.hasher.Compare(s.dummyHash, password)
		return models.Account{}, "", newError(KindInvalidCredentials, msgInvalidCredentials)
	}
	if err != nil {
		return models.Account{}, "", internalError(fmt.Errorf("find account: %w", err))
	}

	if err := s.hasher.Compare(account.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrMismatchedHashAndPassword) {
			s.log.Warn(ctx, "stored password hash unusable", "account_id", account.ID, "error", err)
		}
		return models.Account{}, "", newError(KindInvalidCredentials, msgInvalidCredentials)
	}

	if !account.IsActive {
		return models.Account{}, "", newError(KindAccountDeactivated, msgAccountDeactivated)
	}

	token, err := s.store.GetOrCreateToken(ctx, account.ID, s.keys.NewKey)
	if err != nil {
		return models.Account{}, "", internalError(fmt.Errorf("issue token: %w", err))
	}

	s.log.Info(ctx, "login succeeded", "account_id", account.ID)
	return account, token.Key, nil
}

// Authenticate resolves a bearer token key to an active account.
func (s *Service) Authenticate(ctx context.Context, key string) (models.Account, error) {
	if key == "" {
		return models.Account{}, newError(KindUnauthenticated, msgNotAuthenticated)
	}
	account, err := s.store.FindAccountByToken(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, newError(KindUnauthenticated, msgInvalidToken)
	}
	if err != nil {
		return models.Account{}, internalError(fmt.Errorf("find token: %w", err))
	}
	if !account.IsActive {
		return models.Account{}, newError(KindUnauthenticated, msgInactiveToken)
	}
	return account, nil
}

// ListAccounts returns every account, oldest first. Admin only.
func (s *Service) ListAccounts(ctx context.Context, acting models.Account) ([]models.Account, error) {
	if err := authorizeAdmin(acting); err != nil {
		return nil, err
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, internalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// ChangeRole sets the target's role and returns the role applied. Unknown
// role names are applied as models.RoleUser. An admin may not lower their
// own role.
func (s *Service) ChangeRole(ctx context.Context, acting models.Account, targetID int64, newRole string) (models.Role, error) {
	if err := authorizeAdmin(acting); err != nil {
		return "", err
	}
	if targetID == 0 || newRole == "" {
		return "", newError(KindMissingField, msgChangeRoleMissing)
	}

	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return "", err
	}

	if target.ID == acting.ID && newRole != string(models.RoleAdmin) {
		return "", &Error{Kind: KindForbidden, Message: msgSelfDemotionForbidden, Err: ErrSelfDemotionForbidden}
	}

	role, known := models.ParseRole(newRole)
	if !known {
		s.log.Warn(ctx, "unrecognized role requested, applying default role",
			"requested_role", newRole, "applied_role", role, "target_id", target.ID)
	}

	if err := s.store.UpdateRole(ctx, target.ID, role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", newError(KindNotFound, msgNotFound)
		}
		return "", internalError(fmt.Errorf("update role: %w", err))
	}

	s.log.Info(ctx, "account role changed", "actor_id", acting.ID, "target_id", target.ID,
		"from", target.Role, "to", role)
	return role, nil
}

// ToggleStatus flips the target's active flag and returns the new value.
// An admin may never toggle their own account.
func (s *Service) ToggleStatus(ctx context.Context, acting models.Account, targetID int64) (bool, error) {
	if err := authorizeAdmin(acting); err != nil {
		return false, err
	}
	if targetID == 0 {
		return false, newError(KindMissingField, msgToggleStatusMissing)
	}

	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return false, err
	}

	if target.ID == acting.ID {
		return false, &Error{Kind: KindForbidden, Message: msgSelfDeactivationForbidden, Err: ErrSelfDeactivationForbidden}
	}

	active, err := s.store.ToggleActive(ctx, target.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, newError(KindNotFound, msgNotFound)
		}
		return false, internalError(fmt.Errorf("toggle status: %w", err))
	}

	s.log.Info(ctx, "account status changed", "actor_id", acting.ID, "target_id", target.ID, "active", active)
	return active, nil
}

// EnsureAdmin creates an admin account unless the username already exists.
// It reports whether an account was created. The password policy does not
// apply to operator-supplied bootstrap credentials.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if username == "" || email == "" || password == "" {
		return false, newError(KindMissingField, msgRegisterMissing)
	}

	existing, err := s.store.FindByUsername(ctx, username)
	if err == nil {
		if !existing.IsAdmin() {
			s.log.Warn(ctx, "bootstrap admin username belongs to a non-admin account", "account_id", existing.ID)
		}
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, internalError(fmt.Errorf("find account: %w", err))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, internalError(fmt.Errorf("hash password: %w", err))
	}

	created, err := s.store.CreateAccount(ctx, models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    s.now(),
	})
	switch {
	case errors.Is(err, storage.ErrUsernameTaken):
		return false, nil
	case errors.Is(err, storage.ErrEmailTaken):
		return false, newError(KindEmailTaken, msgEmailTaken)
	case err != nil:
		return false, internalError(fmt.Errorf("create admin: %w", err))
	}

	s.log.Info(ctx, "bootstrap admin created", "account_id", created.ID, "username", created.Username)
	return true, nil
}

func (s *Service) findTarget(ctx context.Context, id int64) (models.Account, error) {
	target, err := s.store.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, newError(KindNotFound, msgNotFound)
	}
	if err != nil {
		return models.Account{}, internalError(fmt.Errorf("find account: %w", err))
	}
	return target, nil
}

func (s *Service) exists(ctx context.Context, find func(context.Context, string) (models.Account, error), value string) (bool, error) {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func authorizeAdmin(acting models.Account) error {
	switch {
	case acting.ID == 0:
		return newError(KindUnauthenticated, msgNotAuthenticated)
	case !acting.IsActive:
		return newError(KindUnauthenticated, msgInactiveToken)
	case !acting.IsAdmin():
		return newError(KindForbidden, msgForbidden)
	}
	return nil
}
