// Package memory provides a process-local storage.Store. It backs the
// STORAGE_DRIVER=memory mode and the service and handler tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/storage"
)

// maxTokenAttempts bounds how many fresh keys GetOrCreateToken draws when a
// generated key is already taken by another account.
const maxTokenAttempts = 3

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store keeps accounts and tokens in maps guarded by a single mutex, so every
// check-and-insert runs atomically.
type Store struct {
	mu sync.Mutex

	nextID     int64
	accounts   map[int64]models.Account
	order      []int64
	byUsername map[string]int64
	byEmail    map[string]int64

	tokens    map[string]models.Token
	byAccount map[int64]string
}

func NewStore() *Store {
	return &Store{
		accounts:   make(map[int64]models.Account),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		tokens:     make(map[string]models.Token),
		byAccount:  make(map[int64]string),
	}
}

func (s *Store) Close() {}

func (s *Store) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername[account.Username]; ok {
		return models.Account{}, storage.ErrUsernameTaken
	}
	if _, ok := s.byEmail[account.Email]; ok {
		return models.Account{}, storage.ErrEmailTaken
	}

	s.nextID++
	account.ID = s.nextID
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	s.accounts[account.ID] = account
	s.order = append(s.order, account.ID)
	s.byUsername[account.Username] = account.ID
	s.byEmail[account.Email] = account.ID
	return account, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byUsername[username]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return s.get(id)
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return s.get(id)
}

func (s *Store) ListAccounts(_ context.Context) ([]models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.accounts[id])
	}
	// order is insertion order, so a stable sort keeps ties in that order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateRole(_ context.Context, id int64, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.get(id)
	if err != nil {
		return err
	}
	account.Role = models.RoleFromFlags(role.Flags())
	s.accounts[id] = account
	return nil
}

func (s *Store) ToggleActive(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, err := s.get(id)
	if err != nil {
		return false, err
	}
	account.IsActive = !account.IsActive
	s.accounts[id] = account
	return account.IsActive, nil
}

func (s *Store) GetOrCreateToken(_ context.Context, accountID int64, newKey storage.KeyFunc) (models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(accountID); err != nil {
		return models.Token{}, err
	}
	if key, ok := s.byAccount[accountID]; ok {
		return s.tokens[key], nil
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		key, err := newKey()
		if err != nil {
			return models.Token{}, fmt.Errorf("generate token key: %w", err)
		}
		if _, clash := s.tokens[key]; clash {
			continue
		}
		token := models.Token{Key: key, AccountID: accountID, CreatedAt: time.Now().UTC()}
		s.tokens[key] = token
		s.byAccount[accountID] = key
		return token, nil
	}
	return models.Token{}, errors.New("insert token: retries exhausted")
}

func (s *Store) FindAccountByToken(_ context.Context, key string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.tokens[key]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return s.get(token.AccountID)
}

func (s *Store) get(id int64) (models.Account, error) {
	account, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return account, nil
}
