package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintUsername = "accounts_username_key"
	constraintEmail    = "accounts_email_key"
)

// maxTokenAttempts bounds GetOrCreateToken retries after a lost insert race
// or a key collision.
const maxTokenAttempts = 3

// querier is the subset of pgxpool.Pool used by the store.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides Postgres-backed persistence for accounts and tokens.
type Store struct {
	db    querier
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// NewStore connects to databaseURL and applies pending migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: pool, pool: pool, sqlDB: stdlib.OpenDBFromPool(pool)}
	if err := runMigrations(ctx, s.sqlDB); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.sqlDB != nil {
		_ = s.sqlDB.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

const accountColumns = `id, username, email, contact_number, password_hash, is_superuser, is_staff, is_active, created_at`

// CreateAccount inserts a new account row. Uniqueness is enforced by the
// table constraints, so concurrent duplicates fail here even after passing
// any earlier existence checks.
func (s *Store) CreateAccount(ctx context.Context, account models.Account) (models.Account, error) {
	const query = `
		INSERT INTO accounts (username, email, contact_number, password_hash, is_superuser, is_staff, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8::timestamptz, NOW()))
		RETURNING ` + accountColumns

	superuser, staff := account.Role.Flags()
	var createdAt any
	if !account.CreatedAt.IsZero() {
		createdAt = account.CreatedAt
	}

	row := s.db.QueryRow(ctx, query,
		account.Username, account.Email, account.ContactNumber, account.PasswordHash,
		superuser, staff, account.IsActive, createdAt)
	created, err := scanAccount(row)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return models.Account{}, conflict
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return created, nil
}

// FindByID fetches an account by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return s.findOne(ctx, query, id)
}

// FindByUsername fetches an account by exact, case-sensitive username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return s.findOne(ctx, query, username)
}

// FindByEmail fetches an account by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return s.findOne(ctx, query, email)
}

// ListAccounts returns all accounts oldest first.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at ASC, id ASC`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateRole rewrites both role flags in one statement.
func (s *Store) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	const query = `UPDATE accounts SET is_superuser = $2, is_staff = $3 WHERE id = $1`

	superuser, staff := role.Flags()
	tag, err := s.db.Exec(ctx, query, id, superuser, staff)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ToggleActive flips is_active in place and returns the new value.
func (s *Store) ToggleActive(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE accounts SET is_active = NOT is_active WHERE id = $1 RETURNING is_active`

	var active bool
	if err := s.db.QueryRow(ctx, query, id).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, storage.ErrNotFound
		}
		return false, fmt.Errorf("toggle active: %w", err)
	}
	return active, nil
}

// GetOrCreateToken returns the account's token or inserts a new one. An
// insert that loses a race on auth_tokens_account_id_key returns no row, and
// the next attempt reads the winner's token.
func (s *Store) GetOrCreateToken(ctx context.Context, accountID int64, newKey storage.KeyFunc) (models.Token, error) {
	const selectQuery = `SELECT key, account_id, created_at FROM auth_tokens WHERE account_id = $1`
	const insertQuery = `
		INSERT INTO auth_tokens (key, account_id)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO NOTHING
		RETURNING key, account_id, created_at`

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := scanToken(s.db.QueryRow(ctx, selectQuery, accountID))
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return models.Token{}, fmt.Errorf("find token: %w", err)
		}

		key, err := newKey()
		if err != nil {
			return models.Token{}, fmt.Errorf("generate token key: %w", err)
		}

		token, err = scanToken(s.db.QueryRow(ctx, insertQuery, key, accountID))
		switch {
		case err == nil:
			return token, nil
		case errors.Is(err, storage.ErrNotFound):
			continue
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case codeForeignKeyViolation:
				return models.Token{}, storage.ErrNotFound
			case codeUniqueViolation:
				continue
			}
		}
		return models.Token{}, fmt.Errorf("insert token: %w", err)
	}
	return models.Token{}, errors.New("insert token: retries exhausted")
}

// FindAccountByToken resolves a token key to its owning account.
func (s *Store) FindAccountByToken(ctx context.Context, key string) (models.Account, error) {
	const query = `
		SELECT a.id, a.username, a.email, a.contact_number, a.password_hash, a.is_superuser, a.is_staff, a.is_active, a.created_at
		FROM auth_tokens t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.key = $1`
	return s.findOne(ctx, query, key)
}

func (s *Store) findOne(ctx context.Context, query string, arg any) (models.Account, error) {
	account, err := scanAccount(s.db.QueryRow(ctx, query, arg))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}
	return account, err
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var account models.Account
	var superuser, staff bool
	if err := row.Scan(&account.ID, &account.Username, &account.Email, &account.ContactNumber,
		&account.PasswordHash, &superuser, &staff, &account.IsActive, &account.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, storage.ErrNotFound
		}
		return models.Account{}, err
	}
	account.Role = models.RoleFromFlags(superuser, staff)
	return account, nil
}

func scanToken(row pgx.Row) (models.Token, error) {
	var token models.Token
	if err := row.Scan(&token.Key, &token.AccountID, &token.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Token{}, storage.ErrNotFound
		}
		return models.Token{}, err
	}
	return token, nil
}

// uniqueViolation maps an account unique-constraint failure to the matching
// storage sentinel, or returns nil.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintUsername:
		return storage.ErrUsernameTaken
	case constraintEmail:
		return storage.ErrEmailTaken
	default:
		return storage.ErrAlreadyExists
	}
}
