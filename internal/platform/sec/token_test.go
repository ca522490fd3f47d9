// Copyright (c) 2026 Inkora. All rights reserved.

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkora/inkora/internal/platform/sec"
)

// newTestService builds a TokenService around an ephemeral RSA key pair.
func newTestService(t *testing.T) *sec.TokenService {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return sec.NewTokenServiceFromKeys(privateKey, "inkora.test")
}

func testIdentity() sec.Identity {
	return sec.Identity{
		AccountID: "0191e4a0-0000-7000-8000-000000000001",
		Username:  "inkwriter",
		Email:     "inkwriter@example.com",
		IsAuthor:  true,
	}
}

/*
TestTokenService_IssueAndVerify covers the round trip for both token kinds.
*/
func TestTokenService_IssueAndVerify(t *testing.T) {
	service := newTestService(t)
	identity := testIdentity()

	accessToken, err := service.IssueAccess(identity)
	require.NoError(t, err)

	refreshToken, err := service.IssueRefresh(identity)
	require.NoError(t, err)

	// Tokens for the same account must never be bit-identical
	assert.NotEqual(t, accessToken, refreshToken)

	claims, err := service.Verify(accessToken, sec.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, identity.AccountID, claims.AccountID)
	assert.Equal(t, identity.AccountID, claims.Subject)
	assert.Equal(t, identity.Username, claims.Username)
	assert.Equal(t, identity.Email, claims.Email)
	assert.True(t, claims.IsAuthor)
	assert.Equal(t, sec.KindAccess, claims.Kind)

	refreshClaims, err := service.Verify(refreshToken, sec.KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, sec.KindRefresh, refreshClaims.Kind)
}

/*
TestTokenService_KindMismatch ensures an access token cannot be replayed
against the refresh verifier and vice versa.
*/
func TestTokenService_KindMismatch(t *testing.T) {
	service := newTestService(t)

	accessToken, err := service.IssueAccess(testIdentity())
	require.NoError(t, err)

	_, err = service.Verify(accessToken, sec.KindRefresh)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_TamperedToken verifies that any payload modification
invalidates the signature with the single opaque failure.
*/
func TestTokenService_TamperedToken(t *testing.T) {
	service := newTestService(t)

	token, err := service.IssueAccess(testIdentity())
	require.NoError(t, err)

	// Flip a character in the payload segment
	tampered := []byte(token)
	middle := len(tampered) / 2
	if tampered[middle] == 'a' {
		tampered[middle] = 'b'
	} else {
		tampered[middle] = 'a'
	}

	_, err = service.Verify(string(tampered), sec.KindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_ForeignKey verifies that tokens signed by a different key
pair are rejected.
*/
func TestTokenService_ForeignKey(t *testing.T) {
	issuingService := newTestService(t)
	verifyingService := newTestService(t)

	token, err := issuingService.IssueAccess(testIdentity())
	require.NoError(t, err)

	_, err = verifyingService.Verify(token, sec.KindAccess)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_VerifyForAccount checks the subject assertion.
*/
func TestTokenService_VerifyForAccount(t *testing.T) {
	service := newTestService(t)
	identity := testIdentity()

	token, err := service.IssueAccess(identity)
	require.NoError(t, err)

	// Matching account passes
	claims, err := service.VerifyForAccount(token, sec.KindAccess, identity.AccountID)
	require.NoError(t, err)
	assert.Equal(t, identity.AccountID, claims.AccountID)

	// Different account fails with the same opaque error
	_, err = service.VerifyForAccount(token, sec.KindAccess, "0191e4a0-0000-7000-8000-0000000000ff")
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_ExtractClaim reads payload fields without trusting them.
*/
func TestTokenService_ExtractClaim(t *testing.T) {
	service := newTestService(t)
	identity := testIdentity()

	token, err := service.IssueAccess(identity)
	require.NoError(t, err)

	username, err := service.ExtractClaim(token, "unm")
	require.NoError(t, err)
	assert.Equal(t, identity.Username, username)

	// Absent claims come back empty, not as an error
	missing, err := service.ExtractClaim(token, "nope")
	require.NoError(t, err)
	assert.Empty(t, missing)

	// Garbage is not structurally a JWT
	_, err = service.ExtractClaim("not-a-token", "unm")
	assert.Error(t, err)
}
