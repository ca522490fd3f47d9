// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package account owns the Account entity and its lifecycle.

It provides profile management for members, author enrollment, and the admin
moderation operations (suspend, reinstate, verify-author). The account store
is also the system's [authz.AccountSource]: every authenticated request
re-reads the flags and status defined here.

# Architecture

  - Entities: Account, with lifecycle Status and authorization flags.
  - Domain: The auth package depends on this package for identity lookups;
    never the other way around.
*/
package account

import (
	"context"
	"time"
)

// # Account Lifecycle

// Status is the lifecycle state of an account.
type Status string

const (
	// StatusActive accounts can authenticate and act.
	StatusActive Status = "active"

	// StatusSuspended accounts exist but fail every authenticated check.
	StatusSuspended Status = "suspended"

	// StatusDeleted accounts are soft-deleted and treated as nonexistent.
	StatusDeleted Status = "deleted"
)

// # Domain Entities

// Account represents a registered member of the Inkora platform.
//
// The three authorization flags are the source of truth for role derivation:
// they are re-read on every authenticated request, so granting or revoking a
// flag takes effect immediately.
type Account struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string `json:"display_name"`
	Bio          string `json:"bio,omitempty"`

	IsAuthor         bool `json:"is_author"`
	IsAuthorVerified bool `json:"is_author_verified"`
	IsAdmin          bool `json:"is_admin"`

	EmailVerified bool      `json:"email_verified"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PublicView strips private fields for unauthenticated consumption.
func (account *Account) PublicView() map[string]interface{} {
	return map[string]interface{}{
		"id":                 account.ID,
		"username":           account.Username,
		"display_name":       account.DisplayName,
		"bio":                account.Bio,
		"is_author":          account.IsAuthor,
		"is_author_verified": account.IsAuthorVerified,
		"created_at":         account.CreatedAt,
	}
}

// # Field Identifiers

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldBio         = "bio"
)

// # Repository Contract

// Repository defines the persistence contract for accounts.
//
// The Postgres implementation additionally satisfies [authz.AccountSource]
// through its FindAuthFacts method.
type Repository interface {

	/*
		FindByID returns the non-deleted account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the non-deleted account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByUsername returns the non-deleted account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUsername(context context.Context, username string) (*Account, error)

	/*
		Create persists a brand-new account.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Constraint or storage failures
	*/
	Create(context context.Context, account *Account) error

	/*
		Update persists changes to mutable profile fields.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: Storage failures
	*/
	Update(context context.Context, account *Account) error

	/*
		UpdatePassword replaces only the password hash.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - newHash: string

		Returns:
		  - error: Storage failures
	*/
	UpdatePassword(context context.Context, accountID, newHash string) error

	/*
		SetAuthorFlags updates the author enrollment and verification flags.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - isAuthor: bool
		  - isAuthorVerified: bool

		Returns:
		  - error: Storage failures
	*/
	SetAuthorFlags(context context.Context, accountID string, isAuthor, isAuthorVerified bool) error

	/*
		SetStatus transitions the account lifecycle state.

		Parameters:
		  - context: context.Context
		  - accountID: string
		  - status: Status

		Returns:
		  - error: Storage failures
	*/
	SetStatus(context context.Context, accountID string, status Status) error

	/*
		MarkEmailVerified flips the email verification flag.

		Parameters:
		  - context: context.Context
		  - accountID: string

		Returns:
		  - error: Storage failures
	*/
	MarkEmailVerified(context context.Context, accountID string) error
}
