package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/storage"
)

// TestStoreIntegration exercises the store against a live database.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" {
		t.Skip("set RUN_STORE_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()

	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("storetest_%d", suffix)
	account, err := store.CreateAccount(ctx, models.Account{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         models.RoleUser,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.NotZero(t, account.ID)

	_, err = store.CreateAccount(ctx, models.Account{Username: username, Email: "other" + username + "@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrUsernameTaken)

	_, err = store.CreateAccount(ctx, models.Account{Username: "other" + username, Email: username + "@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	require.NoError(t, store.UpdateRole(ctx, account.ID, models.RoleModerator))
	reloaded, err := store.FindByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, reloaded.Role)

	active, err := store.ToggleActive(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, active)

	var wg sync.WaitGroup
	keys := make([]string, 8)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := store.GetOrCreateToken(ctx, account.ID, func() (string, error) {
				return fmt.Sprintf("itest-%d-%d", suffix, i), nil
			})
			assert.NoError(t, err)
			keys[i] = tok.Key
		}(i)
	}
	wg.Wait()
	for _, k := range keys {
		assert.Equal(t, keys[0], k)
	}

	owner, err := store.FindAccountByToken(ctx, keys[0])
	require.NoError(t, err)
	assert.Equal(t, account.ID, owner.ID)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
