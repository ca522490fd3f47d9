// Copyright (c) 2026 Inkora. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// auth service and the authentication middleware.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inkora/inkora/internal/platform/apperr"
)

// # Token Kinds & Lifetimes

// TokenKind distinguishes access tokens from refresh tokens.
//
// The kind is embedded in the signed payload, so an access token can never
// be replayed against the refresh endpoint and vice versa.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

const (
	// AccessTokenTTL is the lifetime of a short-lived access token.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// ErrTokenInvalid is the single failure outcome of token verification.
//
// Expired, tampered, malformed and wrong-kind tokens are deliberately
// indistinguishable to callers: a finer-grained error would leak which
// check failed to an attacker probing the verifier.
var ErrTokenInvalid = apperr.Unauthorized("Invalid or expired token")

// # Claims

// Claims represents the payload embedded inside a signed token.
//
// Custom application claims are abbreviated to keep the JWT payload small.
// Identity attributes (username, email, author flag) are carried for display
// and logging only — authorization decisions always re-read the account
// record, never trust these claims.
type Claims struct {
	jwt.RegisteredClaims

	AccountID string    `json:"uid"`
	Username  string    `json:"unm"`
	Email     string    `json:"eml"`
	IsAuthor  bool      `json:"aut"`
	Kind      TokenKind `json:"knd"`
}

// Identity is the account snapshot baked into issued tokens.
type Identity struct {
	AccountID string
	Username  string
	Email     string
	IsAuthor  bool
}

// # Token Service

// TokenService handles generation and verification of JWT tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}, nil
}

// NewTokenServiceFromKeys creates a TokenService from already-parsed keys.
// Used by tests that generate ephemeral key pairs.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
	}
}

// IssueAccess creates a short-lived access token for the given identity.
func (service *TokenService) IssueAccess(identity Identity) (string, error) {
	return service.issue(identity, KindAccess, AccessTokenTTL)
}

// IssueRefresh creates a long-lived refresh token for the given identity.
func (service *TokenService) IssueRefresh(identity Identity) (string, error) {
	return service.issue(identity, KindRefresh, RefreshTokenTTL)
}

// issue signs a token of the given kind and lifetime.
//
// Two tokens issued for the same account in the same instant still differ:
// the kind and expiry land in the signed payload.
func (service *TokenService) issue(identity Identity, kind TokenKind, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.AccountID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		AccountID: identity.AccountID,
		Username:  identity.Username,
		Email:     identity.Email,
		IsAuthor:  identity.IsAuthor,
		Kind:      kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

/*
Verify checks the signature, expiry and kind of a token string.

Description: Every failure mode (bad signature, expired, malformed, wrong
kind, wrong issuer) collapses to [ErrTokenInvalid].

Parameters:
  - tokenString: string (the raw compact JWT)
  - expectedKind: TokenKind (access or refresh)

Returns:
  - *Claims: The verified claims
  - error: ErrTokenInvalid on any verification failure
*/
func (service *TokenService) Verify(tokenString string, expectedKind TokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Kind != expectedKind {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

/*
VerifyForAccount verifies a token and additionally asserts that it was issued
for the given account.

Returns:
  - *Claims: The verified claims
  - error: ErrTokenInvalid if verification fails or the subject differs
*/
func (service *TokenService) VerifyForAccount(tokenString string, expectedKind TokenKind, accountID string) (*Claims, error) {
	claims, err := service.Verify(tokenString, expectedKind)
	if err != nil {
		return nil, err
	}

	if claims.AccountID != accountID || claims.Subject != accountID {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

/*
ExtractClaim reads a claim from a token WITHOUT verifying the signature.

Description: Structural read only — used for logging and debugging where the
payload is informative but must never be trusted.

Returns:
  - string: The claim value ("" if absent or not a string)
  - error: Only if the token is not structurally a JWT
*/
func (service *TokenService) ExtractClaim(tokenString, name string) (string, error) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return "", ErrTokenInvalid
	}

	value, _ := claims[name].(string)
	return value, nil
}
