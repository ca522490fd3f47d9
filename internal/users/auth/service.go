// Copyright (c) 2026 Inkora. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/sec"
	"github.com/inkora/inkora/internal/users/account"
	"github.com/inkora/inkora/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for issuing and verifying signed tokens.
type TokenProvider interface {
	// IssueAccess creates a short-lived signed access token.
	IssueAccess(identity sec.Identity) (string, error)

	// IssueRefresh creates a long-lived signed refresh token.
	IssueRefresh(identity sec.Identity) (string, error)

	// Verify checks signature, expiry and kind.
	Verify(tokenString string, expectedKind sec.TokenKind) (*sec.Claims, error)
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
type Service struct {
	accounts     account.Repository
	sessions     SessionRepository
	resetTokens  TokenStore
	verifyTokens TokenStore
	tokens       TokenProvider
	logger       *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	accounts account.Repository,
	sessions SessionRepository,
	resetTokens TokenStore,
	verifyTokens TokenStore,
	tokens TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		accounts:     accounts,
		sessions:     sessions,
		resetTokens:  resetTokens,
		verifyTokens: verifyTokens,
		tokens:       tokens,
		logger:       logger,
	}
}

// identityOf projects an account into the claims baked into issued tokens.
func identityOf(acc *account.Account) sec.Identity {
	return sec.Identity{
		AccountID: acc.ID,
		Username:  acc.Username,
		Email:     acc.Email,
		IsAuthor:  acc.IsAuthor,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new account.

Description: Deep-enrollment of a new member, handling password hashing and
initial verification token state.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *account.Account: Created entity
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*account.Account, error) {

	// Verify email uniqueness. Return a client-safe Conflict error.
	_, err := service.accounts.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict error.
	_, err = service.accounts.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new Account entity. Time-sortable ID to prevent PG index fragmentation.
	newAccount := &account.Account{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		DisplayName:  input.DisplayName,
		Status:       account.StatusActive,
	}

	if err := service.accounts.Create(context, newAccount); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verifyTokens.Set(context, token, newAccount.ID, VerificationTokenTTL)
		// TODO: Trigger email delivery with the verification link once the
		// mailer service lands.
	}

	service.logger.Info("auth_account_registered", slog.String("account_id", newAccount.ID))

	return newAccount, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login     string // Can be Username or Email
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession represents a successfully established session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Account               *account.Account
}

/*
Login validates credentials and issues the signed token pair.

Description: Verifies identity, performs constant-time password comparison,
and initializes a new tracked session.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	// Flexible login: look up by Email or Username
	acc, err := service.accounts.FindByEmail(context, input.Login)
	if err != nil {
		acc, err = service.accounts.FindByUsername(context, input.Login)
	}

	// Generic message on any lookup failure to prevent account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using bcrypt's constant-time comparison
	if !sec.CheckPasswordHash(input.Password, acc.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Suspended accounts keep their credentials but cannot sign in.
	if acc.Status != account.StatusActive {
		return nil, apperr.Unauthorized("Account is suspended")
	}

	return service.establishSession(context, acc, input.UserAgent, input.IPAddress)
}

// establishSession issues a token pair and persists the tracking session row.
func (service *Service) establishSession(context context.Context, acc *account.Account, userAgent, ipAddress string) (*LoginSession, error) {
	identity := identityOf(acc)

	accessToken, err := service.tokens.IssueAccess(identity)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokens.IssueRefresh(identity)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(sec.RefreshTokenTTL)
	session := &Session{
		ID:        uuid.New(),
		AccountID: acc.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: expiresAt,
		IsRevoked: false,
	}

	if err := service.sessions.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Account:               acc,
	}, nil
}

/*
Logout permanently revokes the session behind a refresh token.

Description: Idempotent — a token whose session is already gone still logs
out successfully.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {
	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil
	}

	if err := service.sessions.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the refresh-token rotation mechanism.

Description: A refresh token is honored only when BOTH its signature verifies
(kind = refresh) AND its tracked session row is still live. The old session is
revoked before new tokens are issued, so a replayed refresh token dies on
arrival.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New rotated credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	// Signature, expiry and kind first — no storage read for garbage tokens.
	claims, err := service.tokens.Verify(refreshToken, sec.KindRefresh)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// The session row must still be live (rotation + revocation state).
	session, err := service.sessions.FindByTokenHash(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Defense in depth: the signed subject and the session owner must agree.
	if session.AccountID != claims.Subject {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: revoke the old session to prevent replay attacks
	if err := service.sessions.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Re-read the account so rotated tokens carry current flags.
	acc, err := service.accounts.FindByID(context, session.AccountID)
	if err != nil || acc.Status != account.StatusActive {
		return nil, apperr.Unauthorized("Account not found or suspended")
	}

	return service.establishSession(context, acc, userAgent, ipAddress)
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Reset token (empty when the email is unknown)
  - error: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {

	// NOTE: We don't return NOT_FOUND if the email doesn't exist,
	// to prevent account enumeration.
	acc, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokens.Set(context, token, acc.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and revokes all active sessions for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	accountID, err := service.resetTokens.Get(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(context, accountID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security cleanup: revoke EVERY active session for this account
	_ = service.sessions.RevokeAll(context, accountID)
	_ = service.resetTokens.Delete(context, token)

	service.logger.Info("auth_password_reset", slog.String("account_id", accountID))

	return nil
}

/*
ChangePassword allows an authenticated account to update its credentials.

Description: Verifies the current password, rotates the hash, and revokes
every refresh session to force re-login on all devices.

Parameters:
  - context: context.Context
  - accountID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - error: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, accountID, currentPassword, newPassword string) error {
	acc, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, acc.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(context, accountID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security side effect: force re-login everywhere
	_ = service.sessions.RevokeAll(context, accountID)

	return nil
}

/*
VerifyEmail confirms an account's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {
	accountID, err := service.verifyTokens.Get(context, token)
	if err != nil {
		return err
	}

	if err := service.accounts.MarkEmailVerified(context, accountID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	_ = service.verifyTokens.Delete(context, token)

	return nil
}
