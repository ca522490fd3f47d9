// Copyright (c) 2026 Inkora. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/sec"
	"github.com/inkora/inkora/internal/users/account"
)

// # Test Doubles

type fakeAccountRepository struct {
	accounts map[string]*account.Account // keyed by ID
}

func newFakeAccountRepository(seed ...*account.Account) *fakeAccountRepository {
	repository := &fakeAccountRepository{accounts: map[string]*account.Account{}}
	for _, acc := range seed {
		repository.accounts[acc.ID] = acc
	}
	return repository
}

func (repository *fakeAccountRepository) FindByID(_ context.Context, id string) (*account.Account, error) {
	if acc, ok := repository.accounts[id]; ok {
		return acc, nil
	}
	return nil, apperr.NotFound("Account")
}

func (repository *fakeAccountRepository) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	for _, acc := range repository.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repository *fakeAccountRepository) FindByUsername(_ context.Context, username string) (*account.Account, error) {
	for _, acc := range repository.accounts {
		if acc.Username == username {
			return acc, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (repository *fakeAccountRepository) Create(_ context.Context, acc *account.Account) error {
	repository.accounts[acc.ID] = acc
	return nil
}

func (repository *fakeAccountRepository) Update(_ context.Context, acc *account.Account) error {
	repository.accounts[acc.ID] = acc
	return nil
}

func (repository *fakeAccountRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	acc, ok := repository.accounts[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	acc.PasswordHash = passwordHash
	return nil
}

func (repository *fakeAccountRepository) SetAuthorFlags(_ context.Context, id string, isAuthor, isVerified bool) error {
	acc, ok := repository.accounts[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	acc.IsAuthor = isAuthor
	acc.IsAuthorVerified = isVerified
	return nil
}

func (repository *fakeAccountRepository) SetStatus(_ context.Context, id string, status account.Status) error {
	acc, ok := repository.accounts[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	acc.Status = status
	return nil
}

func (repository *fakeAccountRepository) MarkEmailVerified(_ context.Context, id string) error {
	acc, ok := repository.accounts[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	acc.EmailVerified = true
	return nil
}

type fakeSessionRepository struct {
	sessions map[string]*Session // keyed by token hash
	revoked  map[string]bool     // keyed by session ID
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: map[string]*Session{}, revoked: map[string]bool{}}
}

func (repository *fakeSessionRepository) Create(_ context.Context, session *Session) error {
	repository.sessions[session.TokenHash] = session
	return nil
}

func (repository *fakeSessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	session, ok := repository.sessions[tokenHash]
	if !ok || repository.revoked[session.ID] {
		return nil, apperr.NotFound("Session")
	}
	return session, nil
}

func (repository *fakeSessionRepository) Revoke(_ context.Context, sessionID string) error {
	repository.revoked[sessionID] = true
	return nil
}

func (repository *fakeSessionRepository) RevokeAll(_ context.Context, accountID string) error {
	for _, session := range repository.sessions {
		if session.AccountID == accountID {
			repository.revoked[session.ID] = true
		}
	}
	return nil
}

func (repository *fakeSessionRepository) DeleteExpired(_ context.Context) error {
	return nil
}

func (repository *fakeSessionRepository) liveCount() int {
	count := 0
	for _, session := range repository.sessions {
		if !repository.revoked[session.ID] {
			count++
		}
	}
	return count
}

type fakeTokenStore struct {
	values map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{values: map[string]string{}}
}

func (store *fakeTokenStore) Set(_ context.Context, token, accountID string, _ time.Duration) error {
	store.values[token] = accountID
	return nil
}

func (store *fakeTokenStore) Get(_ context.Context, token string) (string, error) {
	accountID, ok := store.values[token]
	if !ok {
		return "", apperr.NotFound("Token is invalid or expired")
	}
	return accountID, nil
}

func (store *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(store.values, token)
	return nil
}

// fakeTokenProvider issues deterministic opaque strings and remembers the
// claims behind each refresh token it issued.
type fakeTokenProvider struct {
	counter int
	issued  map[string]sec.Identity // refresh token -> identity
}

func newFakeTokenProvider() *fakeTokenProvider {
	return &fakeTokenProvider{issued: map[string]sec.Identity{}}
}

func (provider *fakeTokenProvider) IssueAccess(identity sec.Identity) (string, error) {
	provider.counter++
	return fmt.Sprintf("access-%s-%d", identity.AccountID, provider.counter), nil
}

func (provider *fakeTokenProvider) IssueRefresh(identity sec.Identity) (string, error) {
	provider.counter++
	token := fmt.Sprintf("refresh-%s-%d", identity.AccountID, provider.counter)
	provider.issued[token] = identity
	return token, nil
}

func (provider *fakeTokenProvider) Verify(tokenString string, expectedKind sec.TokenKind) (*sec.Claims, error) {
	identity, ok := provider.issued[tokenString]
	if !ok || expectedKind != sec.KindRefresh {
		return nil, sec.ErrTokenInvalid
	}
	return &sec.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: identity.AccountID},
		AccountID:        identity.AccountID,
		Username:         identity.Username,
	}, nil
}

// # Fixtures

func newTestAuthService(t *testing.T, seed ...*account.Account) (*Service, *fakeAccountRepository, *fakeSessionRepository, *fakeTokenStore, *fakeTokenStore) {
	t.Helper()

	accounts := newFakeAccountRepository(seed...)
	sessions := newFakeSessionRepository()
	resetTokens := newFakeTokenStore()
	verifyTokens := newFakeTokenStore()

	service := NewService(accounts, sessions, resetTokens, verifyTokens, newFakeTokenProvider(), slog.Default())
	return service, accounts, sessions, resetTokens, verifyTokens
}

func activeAccount(t *testing.T, id, username, email, password string) *account.Account {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	return &account.Account{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Status:       account.StatusActive,
	}
}

// # Tests

func TestRegister(t *testing.T) {
	existing := activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")

	t.Run("creates account and verification token", func(t *testing.T) {
		service, accounts, _, _, verifyTokens := newTestAuthService(t)

		created, err := service.Register(context.Background(), RegisterInput{
			Username: "mira",
			Email:    "mira@example.com",
			Password: "battery-staple",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, account.StatusActive, created.Status)
		assert.NotEqual(t, "battery-staple", created.PasswordHash)

		stored, err := accounts.FindByUsername(context.Background(), "mira")
		require.NoError(t, err)
		assert.Equal(t, created.ID, stored.ID)

		assert.Len(t, verifyTokens.values, 1)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t, existing)

		_, err := service.Register(context.Background(), RegisterInput{
			Username: "someone-else",
			Email:    "rowan@example.com",
			Password: "battery-staple",
		})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t, existing)

		_, err := service.Register(context.Background(), RegisterInput{
			Username: "rowan",
			Email:    "new@example.com",
			Password: "battery-staple",
		})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})
}

func TestLogin(t *testing.T) {
	seed := func(t *testing.T) *account.Account {
		return activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")
	}

	t.Run("succeeds with email and tracks a session", func(t *testing.T) {
		service, _, sessions, _, _ := newTestAuthService(t, seed(t))

		result, err := service.Login(context.Background(), LoginInput{
			Login:    "rowan@example.com",
			Password: "correct-horse",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)

		// Only the digest of the refresh token is persisted.
		stored, err := sessions.FindByTokenHash(context.Background(), sec.HashToken(result.RefreshToken))
		require.NoError(t, err)
		assert.Equal(t, "acc-1", stored.AccountID)
	})

	t.Run("succeeds with username", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t, seed(t))

		_, err := service.Login(context.Background(), LoginInput{Login: "rowan", Password: "correct-horse"})
		assert.NoError(t, err)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t, seed(t))

		_, err := service.Login(context.Background(), LoginInput{Login: "rowan", Password: "wrong"})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("rejects unknown login with the same generic message", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t, seed(t))

		_, err := service.Login(context.Background(), LoginInput{Login: "ghost", Password: "correct-horse"})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "Invalid login credentials", appError.Message)
	})

	t.Run("rejects suspended account even with valid credentials", func(t *testing.T) {
		suspended := seed(t)
		suspended.Status = account.StatusSuspended
		service, _, _, _, _ := newTestAuthService(t, suspended)

		_, err := service.Login(context.Background(), LoginInput{Login: "rowan", Password: "correct-horse"})

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})
}

func TestRefreshSession(t *testing.T) {
	seed := func(t *testing.T) *account.Account {
		return activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")
	}

	login := func(t *testing.T, service *Service) *LoginSession {
		t.Helper()
		result, err := service.Login(context.Background(), LoginInput{Login: "rowan", Password: "correct-horse"})
		require.NoError(t, err)
		return result
	}

	t.Run("rotates the session", func(t *testing.T) {
		service, _, sessions, _, _ := newTestAuthService(t, seed(t))
		first := login(t, service)

		rotated, err := service.RefreshSession(context.Background(), first.RefreshToken, "ua", "ip")
		require.NoError(t, err)

		assert.NotEqual(t, first.RefreshToken, rotated.RefreshToken)
		assert.NotEqual(t, first.AccessToken, rotated.AccessToken)

		// The previous session is dead, the rotated one is live.
		assert.Equal(t, 1, sessions.liveCount())
		_, err = sessions.FindByTokenHash(context.Background(), sec.HashToken(first.RefreshToken))
		assert.Error(t, err)
	})

	t.Run("replayed refresh token is rejected", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t, seed(t))
		first := login(t, service)

		_, err := service.RefreshSession(context.Background(), first.RefreshToken, "ua", "ip")
		require.NoError(t, err)

		_, err = service.RefreshSession(context.Background(), first.RefreshToken, "ua", "ip")

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("garbage token is rejected before any storage read", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t, seed(t))

		_, err := service.RefreshSession(context.Background(), "not-a-token", "ua", "ip")

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("rejects refresh when the account was suspended meanwhile", func(t *testing.T) {
		acc := seed(t)
		service, accounts, _, _, _ := newTestAuthService(t, acc)
		first := login(t, service)

		require.NoError(t, accounts.SetStatus(context.Background(), acc.ID, account.StatusSuspended))

		_, err := service.RefreshSession(context.Background(), first.RefreshToken, "ua", "ip")

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})
}

func TestLogout(t *testing.T) {
	acc := activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")
	service, _, sessions, _, _ := newTestAuthService(t, acc)

	result, err := service.Login(context.Background(), LoginInput{Login: "rowan", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), result.RefreshToken))
	assert.Equal(t, 0, sessions.liveCount())

	// Idempotent: logging out a dead token still succeeds.
	assert.NoError(t, service.Logout(context.Background(), result.RefreshToken))
}

func TestPasswordRecovery(t *testing.T) {
	t.Run("reset flow updates the password and revokes sessions", func(t *testing.T) {
		acc := activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")
		service, _, sessions, resetTokens, _ := newTestAuthService(t, acc)

		_, err := service.Login(context.Background(), LoginInput{Login: "rowan", Password: "correct-horse"})
		require.NoError(t, err)

		token, err := service.RequestPasswordReset(context.Background(), "rowan@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		require.NoError(t, service.ResetPassword(context.Background(), token, "new-password-123"))

		// Old sessions are dead, the token is consumed, the new password works.
		assert.Equal(t, 0, sessions.liveCount())
		assert.Empty(t, resetTokens.values)

		_, err = service.Login(context.Background(), LoginInput{Login: "rowan", Password: "new-password-123"})
		assert.NoError(t, err)
	})

	t.Run("unknown email yields no token and no error", func(t *testing.T) {
		service, _, _, resetTokens, _ := newTestAuthService(t)

		token, err := service.RequestPasswordReset(context.Background(), "ghost@example.com")
		assert.NoError(t, err)
		assert.Empty(t, token)
		assert.Empty(t, resetTokens.values)
	})

	t.Run("invalid reset token is rejected", func(t *testing.T) {
		service, _, _, _, _ := newTestAuthService(t)

		err := service.ResetPassword(context.Background(), "bogus", "new-password-123")
		assert.Error(t, err)
	})
}

func TestChangePassword(t *testing.T) {
	t.Run("rotates the hash and revokes sessions", func(t *testing.T) {
		acc := activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")
		service, _, sessions, _, _ := newTestAuthService(t, acc)

		_, err := service.Login(context.Background(), LoginInput{Login: "rowan", Password: "correct-horse"})
		require.NoError(t, err)

		require.NoError(t, service.ChangePassword(context.Background(), "acc-1", "correct-horse", "new-password-123"))

		assert.Equal(t, 0, sessions.liveCount())

		_, err = service.Login(context.Background(), LoginInput{Login: "rowan", Password: "new-password-123"})
		assert.NoError(t, err)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		acc := activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")
		service, _, _, _, _ := newTestAuthService(t, acc)

		err := service.ChangePassword(context.Background(), "acc-1", "wrong", "new-password-123")

		var appError *apperr.AppError
		require.ErrorAs(t, err, &appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})
}

func TestVerifyEmail(t *testing.T) {
	acc := activeAccount(t, "acc-1", "rowan", "rowan@example.com", "correct-horse")
	service, accounts, _, _, verifyTokens := newTestAuthService(t, acc)

	require.NoError(t, verifyTokens.Set(context.Background(), "tok", "acc-1", VerificationTokenTTL))

	require.NoError(t, service.VerifyEmail(context.Background(), "tok"))

	stored, err := accounts.FindByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	// Consumed tokens cannot be replayed.
	assert.Error(t, service.VerifyEmail(context.Background(), "tok"))
}
