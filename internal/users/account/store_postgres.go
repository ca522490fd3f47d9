// Copyright (c) 2026 Inkora. All rights reserved.

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/authz"
)

// # Postgres Repository

// PostgresRepository implements [Repository] and [authz.AccountSource]
// using pgx against the users.account table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates the Postgres implementation of the account store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// accountColumns is the canonical select list for full entity hydration.
const accountColumns = `
	id, username, email, passwordhash, displayname, bio,
	isauthor, isauthorverified, isadmin,
	emailverified, status, createdat, updatedat`

// scanAccount hydrates an Account from a single-row query.
func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.DisplayName,
		&account.Bio,
		&account.IsAuthor,
		&account.IsAuthorVerified,
		&account.IsAdmin,
		&account.EmailVerified,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_scan_failed: %w", err)
	}

	return account, nil
}

/*
FindByID retrieves a non-deleted account by its UUID.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Account: Hydrated entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users.account
		WHERE id = $1 AND status != 'deleted'`, accountColumns)

	return scanAccount(repository.pool.QueryRow(context, query, id))
}

/*
FindByEmail retrieves a non-deleted account by email (case-insensitive).

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users.account
		WHERE LOWER(email) = LOWER($1) AND status != 'deleted'`, accountColumns)

	return scanAccount(repository.pool.QueryRow(context, query, email))
}

/*
FindByUsername retrieves a non-deleted account by username (case-insensitive).

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *Account: Hydrated entity
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users.account
		WHERE LOWER(username) = LOWER($1) AND status != 'deleted'`, accountColumns)

	return scanAccount(repository.pool.QueryRow(context, query, username))
}

/*
Create persists a new account record into the users.account table.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, displayname, bio,
			isauthor, isauthorverified, isadmin,
			emailverified, status, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		account.Bio,
		account.IsAuthor,
		account.IsAuthorVerified,
		account.IsAdmin,
		account.EmailVerified,
		account.Status,
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

/*
Update modifies the mutable profile metadata of an account.

Description: Syncs the DisplayName and Bio fields while refreshing the
updatedat timestamp.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) Update(context context.Context, account *Account) error {
	const query = `
		UPDATE users.account
		SET displayname = $2, bio = $3, updatedat = $4
		WHERE id = $1 AND status != 'deleted'`

	_, err := repository.pool.Exec(context, query,
		account.ID,
		account.DisplayName,
		account.Bio,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword replaces only the password hash of an account.

Parameters:
  - context: context.Context
  - accountID: string
  - newHash: string

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) UpdatePassword(context context.Context, accountID, newHash string) error {
	const query = `
		UPDATE users.account
		SET passwordhash = $2, updatedat = NOW()
		WHERE id = $1 AND status != 'deleted'`

	_, err := repository.pool.Exec(context, query, accountID, newHash)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_update_password_failed: %w", err)
	}

	return nil
}

/*
SetAuthorFlags updates the author enrollment and verification flags.

Parameters:
  - context: context.Context
  - accountID: string
  - isAuthor: bool
  - isAuthorVerified: bool

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) SetAuthorFlags(context context.Context, accountID string, isAuthor, isAuthorVerified bool) error {
	const query = `
		UPDATE users.account
		SET isauthor = $2, isauthorverified = $3, updatedat = NOW()
		WHERE id = $1 AND status != 'deleted'`

	_, err := repository.pool.Exec(context, query, accountID, isAuthor, isAuthorVerified)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_author_flags_failed: %w", err)
	}

	return nil
}

/*
SetStatus transitions the account lifecycle state.

Parameters:
  - context: context.Context
  - accountID: string
  - status: Status

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) SetStatus(context context.Context, accountID string, status Status) error {
	const query = `
		UPDATE users.account
		SET status = $2, updatedat = NOW()
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, accountID, status)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_set_status_failed: %w", err)
	}

	return nil
}

/*
MarkEmailVerified flips the email verification flag.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Update failures
*/
func (repository *PostgresRepository) MarkEmailVerified(context context.Context, accountID string) error {
	const query = `
		UPDATE users.account
		SET emailverified = TRUE, updatedat = NOW()
		WHERE id = $1 AND status != 'deleted'`

	_, err := repository.pool.Exec(context, query, accountID)
	if err != nil {
		return fmt.Errorf("postgres_account_repo_mark_verified_failed: %w", err)
	}

	return nil
}

// # Authorization Facts

/*
FindAuthFacts implements [authz.AccountSource].

Description: The hot query on the request path — a single indexed primary-key
read projecting only the columns principal resolution needs. Deleted accounts
are indistinguishable from missing ones; suspended accounts come back with
Active=false so the resolver can build a disabled principal.

Parameters:
  - context: context.Context
  - id: string (verified token subject)

Returns:
  - *authz.AccountFacts: Current role flags and status
  - error: apperr.NotFound if missing or deleted
*/
func (repository *PostgresRepository) FindAuthFacts(context context.Context, id string) (*authz.AccountFacts, error) {
	const query = `
		SELECT id, username, isauthor, isauthorverified, isadmin, status
		FROM users.account
		WHERE id = $1 AND status != 'deleted'`

	facts := &authz.AccountFacts{}
	var status Status
	err := repository.pool.QueryRow(context, query, id).Scan(
		&facts.ID,
		&facts.Username,
		&facts.IsAuthor,
		&facts.IsAuthorVerified,
		&facts.IsAdmin,
		&status,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Account")
		}
		return nil, fmt.Errorf("postgres_account_repo_find_auth_facts_failed: %w", err)
	}

	facts.Active = status == StatusActive
	return facts, nil
}
