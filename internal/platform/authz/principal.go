// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package authz implements request-time authorization for the Inkora API.

It owns the two central abstractions of the access-control layer:

  - Principal: the immutable, request-scoped snapshot of an account's
    authorization facts (identity, role flags, enabled status).
  - Engine: a policy evaluator that checks declarative boolean expressions
    (And/Or/Not over named predicates) against the current Principal.

# Architecture

The Principal is resolved fresh on every request from the persisted account
record, never cached across requests. This guarantees that role changes and
suspensions take effect on the very next request, at the cost of one account
read per authenticated request.
*/
package authz

import (
	"context"
	"log/slog"

	"github.com/inkora/inkora/internal/platform/apperr"
)

// # Roles

// Role names a coarse authorization level derived from account flags.
type Role string

const (
	// RoleUser is implicit for every enabled principal.
	RoleUser Role = "USER"

	// RoleAuthor is granted to accounts flagged as authors.
	RoleAuthor Role = "AUTHOR"

	// RoleAdmin is granted to staff accounts.
	RoleAdmin Role = "ADMIN"
)

// # Principal

// Principal is a read-only projection of an account's authorization facts.
//
// # Lifecycle
//
// Built once per request by [Resolver.Resolve] and threaded through the
// request context. It must never be mutated or cached across requests.
type Principal struct {
	// ID is the account's UUIDv7.
	ID string

	// Username is carried for logging and display only.
	Username string

	// Role flags re-derived from the account record on every request.
	IsAuthor         bool
	IsAuthorVerified bool
	IsAdmin          bool

	// Enabled is false when the underlying account is suspended or deleted.
	// A disabled principal fails every authenticated-only check, exactly as
	// if no principal were attached at all.
	Enabled bool
}

// HasRole reports whether the principal carries the named role.
//
// A nil or disabled principal has no roles.
func (p *Principal) HasRole(role Role) bool {
	if p == nil || !p.Enabled {
		return false
	}

	switch role {
	case RoleUser:
		return true
	case RoleAuthor:
		return p.IsAuthor
	case RoleAdmin:
		return p.IsAdmin
	}
	return false
}

// # Account Port

// AccountFacts is the minimal account projection the resolver needs.
//
// The users store maps its full account entity down to this struct so that
// authz stays decoupled from the users domain.
type AccountFacts struct {
	ID               string
	Username         string
	IsAuthor         bool
	IsAuthorVerified bool
	IsAdmin          bool

	// Active is true only for accounts in the "active" lifecycle status.
	Active bool
}

// AccountSource is the lookup-by-identity port backing principal resolution.
type AccountSource interface {

	/*
		FindAuthFacts returns the authorization facts for the account with
		the given ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID, the verified token subject)

		Returns:
		  - *AccountFacts: Current role flags and status
		  - error: apperr.NotFound if the account does not exist
	*/
	FindAuthFacts(context context.Context, id string) (*AccountFacts, error)
}

// # Resolver

// Resolver builds a fresh [Principal] from a verified token subject.
type Resolver struct {
	accounts AccountSource
	logger   *slog.Logger
}

// NewResolver constructs a [Resolver] bound to an account source.
func NewResolver(accounts AccountSource, logger *slog.Logger) *Resolver {
	return &Resolver{accounts: accounts, logger: logger}
}

/*
Resolve loads the account behind a verified token subject and projects it
into a [Principal].

Description: One blocking account read per request. A missing account is NOT
an error — a token may outlive its account (stateless tokens, no revocation
list) and such requests simply stay anonymous.

Parameters:
  - context: context.Context
  - subjectID: string (the token's verified subject claim)

Returns:
  - *Principal: nil if the account no longer exists
  - error: Storage failures only (never "not found")
*/
func (resolver *Resolver) Resolve(context context.Context, subjectID string) (*Principal, error) {
	facts, err := resolver.accounts.FindAuthFacts(context, subjectID)

	if err != nil {
		// A deleted/missing account silently fails to authenticate.
		if apperr.IsNotFound(err) {
			resolver.logger.DebugContext(context, "principal_account_missing",
				slog.String("subject", subjectID),
			)
			return nil, nil
		}
		return nil, err
	}

	return &Principal{
		ID:               facts.ID,
		Username:         facts.Username,
		IsAuthor:         facts.IsAuthor,
		IsAuthorVerified: facts.IsAuthorVerified,
		IsAdmin:          facts.IsAdmin,
		Enabled:          facts.Active,
	}, nil
}
