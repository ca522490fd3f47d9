// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package auth implements registration, login and the refresh-token lifecycle.

It issues the signed token pair through the sec codec and tracks refresh
tokens in rotated session rows: a refresh token is only honored when its
signature verifies AND its session row is still live, which gives refresh
revocation without touching the stateless access path.

# Architecture

  - Service: Orchestrates business logic (Register, Login, Refresh, Reset).
  - Repository: Abstracted interfaces for Postgres (sessions) and Redis
    (volatile reset/verification tokens).
  - Identity: The Account entity lives in the account package; auth only
    consumes it.
*/
package auth

import "time"

// # Domain Entities

// Session represents an active refresh-token session.
//
// The refresh token itself is a signed JWT; only its SHA-256 digest is
// persisted here.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	TokenHash string    `json:"-"` // Digest of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Authentication Constraints

const (
	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// VerificationTokenTTL is the duration an email verification token remains
	// valid. Long-lived (24 hours) as users might not check email immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the random verification token.
	VerificationTokenLength = 32
)

// # Field Identifiers

// Global field names for validation and identity mapping in the auth domain.
const (
	FieldLogin           = "login"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
)
