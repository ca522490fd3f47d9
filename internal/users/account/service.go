// Copyright (c) 2026 Inkora. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkora/inkora/internal/platform/apperr"
)

// # Service Layer

// SessionRevoker terminates refresh sessions when an account is deleted or
// suspended. Implemented by the auth session store.
type SessionRevoker interface {
	RevokeAll(context context.Context, accountID string) error
}

// Service orchestrates business logic for account profiles, author
// enrollment and lifecycle moderation.
type Service struct {
	repository Repository
	sessions   SessionRevoker
	logger     *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(repository Repository, sessions SessionRevoker, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		sessions:   sessions,
		logger:     logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the full private identity of an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: The hydrated account
  - error: Not found or execution failures
*/
func (service *Service) GetProfile(context context.Context, accountID string) (*Account, error) {
	account, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return account, nil
}

// UpdateProfileInput defines the mutable subset of account profile fields.
type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
}

/*
UpdateProfile applies a partial set of changes to an account's metadata.

Description: Fetches the existing state, overlays provided fields, and
synchronizes the change to persistent storage.

Parameters:
  - context: context.Context
  - accountID: string
  - input: UpdateProfileInput

Returns:
  - *Account: The updated account
  - error: Update or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID string, input UpdateProfileInput) (*Account, error) {
	account, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	// Apply delta updates
	if input.DisplayName != nil {
		account.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		account.Bio = *input.Bio
	}

	// Persist changes
	if err := service.repository.Update(context, account); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("account_profile_updated", slog.String("account_id", accountID))

	return account, nil
}

/*
DeleteAccount performs an idempotent soft-deletion of an account.

Description: Transitions the account to the deleted status and immediately
terminates all refresh sessions to force a global sign-out. Because the
principal is re-resolved per request, any outstanding access token goes
anonymous at most one token lifetime later.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Execution failures
*/
func (service *Service) DeleteAccount(context context.Context, accountID string) error {
	if err := service.repository.SetStatus(context, accountID, StatusDeleted); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	// Force global revocation of sessions for the deleted account
	_ = service.sessions.RevokeAll(context, accountID)

	service.logger.Warn("account_deleted", slog.String("account_id", accountID))

	return nil
}

// # Author Enrollment

/*
BecomeAuthor enrolls the account as an (unverified) author.

Description: Self-service enrollment. The verified flag stays false until an
admin confirms the author through VerifyAuthor.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: The updated account
  - error: Conflict if already an author, or storage failures
*/
func (service *Service) BecomeAuthor(context context.Context, accountID string) (*Account, error) {
	account, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_become_author_lookup_failed: %w", err)
	}

	if account.IsAuthor {
		return nil, apperr.Conflict("Account is already enrolled as an author")
	}

	if err := service.repository.SetAuthorFlags(context, accountID, true, false); err != nil {
		return nil, fmt.Errorf("account_service_become_author_failed: %w", err)
	}

	account.IsAuthor = true
	account.IsAuthorVerified = false

	service.logger.Info("account_author_enrolled", slog.String("account_id", accountID))

	return account, nil
}

/*
VerifyAuthor marks an enrolled author as verified. Admin operation.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Unprocessable if not an author, or storage failures
*/
func (service *Service) VerifyAuthor(context context.Context, accountID string) error {
	account, err := service.repository.FindByID(context, accountID)
	if err != nil {
		return fmt.Errorf("account_service_verify_author_lookup_failed: %w", err)
	}

	if !account.IsAuthor {
		return apperr.Unprocessable("Account is not enrolled as an author")
	}

	if err := service.repository.SetAuthorFlags(context, accountID, true, true); err != nil {
		return fmt.Errorf("account_service_verify_author_failed: %w", err)
	}

	service.logger.Info("account_author_verified", slog.String("account_id", accountID))

	return nil
}

// # Lifecycle Moderation

/*
Suspend transitions an account to the suspended status. Admin operation.

Description: A suspended account keeps its data but fails every
authenticated check on the very next request. Sessions are revoked so the
suspension also cuts the refresh path.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Execution failures
*/
func (service *Service) Suspend(context context.Context, accountID string) error {
	if err := service.repository.SetStatus(context, accountID, StatusSuspended); err != nil {
		return fmt.Errorf("account_service_suspend_failed: %w", err)
	}

	_ = service.sessions.RevokeAll(context, accountID)

	service.logger.Warn("account_suspended", slog.String("account_id", accountID))

	return nil
}

/*
Reinstate returns a suspended account to the active status. Admin operation.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Execution failures
*/
func (service *Service) Reinstate(context context.Context, accountID string) error {
	if err := service.repository.SetStatus(context, accountID, StatusActive); err != nil {
		return fmt.Errorf("account_service_reinstate_failed: %w", err)
	}

	service.logger.Info("account_reinstated", slog.String("account_id", accountID))

	return nil
}
