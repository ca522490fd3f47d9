// Copyright (c) 2026 Inkora. All rights reserved.

package authz_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/authz"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccountSource serves canned authorization facts.
type fakeAccountSource struct {
	facts map[string]*authz.AccountFacts
	err   error
}

func (f *fakeAccountSource) FindAuthFacts(_ context.Context, id string) (*authz.AccountFacts, error) {
	if f.err != nil {
		return nil, f.err
	}
	if facts, ok := f.facts[id]; ok {
		return facts, nil
	}
	return nil, apperr.NotFound("Account")
}

/*
TestResolver_Resolve covers the three resolution outcomes: a live account,
a vanished account and a storage failure.
*/
func TestResolver_Resolve(t *testing.T) {
	source := &fakeAccountSource{facts: map[string]*authz.AccountFacts{
		"acc-1": {
			ID:               "acc-1",
			Username:         "inkwriter",
			IsAuthor:         true,
			IsAuthorVerified: true,
			Active:           true,
		},
		"acc-2": {
			ID:       "acc-2",
			Username: "suspended",
			Active:   false,
		},
	}}
	resolver := authz.NewResolver(source, discardLogger())

	t.Run("active_account", func(t *testing.T) {
		principal, err := resolver.Resolve(context.Background(), "acc-1")
		require.NoError(t, err)
		require.NotNil(t, principal)

		assert.Equal(t, "acc-1", principal.ID)
		assert.Equal(t, "inkwriter", principal.Username)
		assert.True(t, principal.IsAuthor)
		assert.True(t, principal.IsAuthorVerified)
		assert.True(t, principal.Enabled)
	})

	t.Run("suspended_account_is_disabled", func(t *testing.T) {
		principal, err := resolver.Resolve(context.Background(), "acc-2")
		require.NoError(t, err)
		require.NotNil(t, principal)
		assert.False(t, principal.Enabled)
	})

	t.Run("missing_account_is_anonymous", func(t *testing.T) {
		// A token may outlive its account; that is not an error.
		principal, err := resolver.Resolve(context.Background(), "acc-gone")
		assert.NoError(t, err)
		assert.Nil(t, principal)
	})

	t.Run("storage_failure_propagates", func(t *testing.T) {
		broken := authz.NewResolver(&fakeAccountSource{err: assert.AnError}, discardLogger())
		principal, err := broken.Resolve(context.Background(), "acc-1")
		assert.Error(t, err)
		assert.Nil(t, principal)
	})
}

/*
TestPrincipal_HasRole verifies the role derivation rules, including the
nil-receiver and disabled cases every predicate relies on.
*/
func TestPrincipal_HasRole(t *testing.T) {
	tests := []struct {
		name      string
		principal *authz.Principal
		role      authz.Role
		want      bool
	}{
		{"nil_principal", nil, authz.RoleUser, false},
		{"disabled_has_no_roles", &authz.Principal{IsAdmin: true, Enabled: false}, authz.RoleAdmin, false},
		{"enabled_is_user", &authz.Principal{Enabled: true}, authz.RoleUser, true},
		{"plain_user_not_author", &authz.Principal{Enabled: true}, authz.RoleAuthor, false},
		{"author_flag", &authz.Principal{IsAuthor: true, Enabled: true}, authz.RoleAuthor, true},
		{"admin_flag", &authz.Principal{IsAdmin: true, Enabled: true}, authz.RoleAdmin, true},
		{"admin_is_not_implicit_author", &authz.Principal{IsAdmin: true, Enabled: true}, authz.RoleAuthor, false},
		{"unknown_role", &authz.Principal{IsAdmin: true, Enabled: true}, authz.Role("WIZARD"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.principal.HasRole(tt.role))
		})
	}
}
