// Copyright (c) 2026 Inkora. All rights reserved.

package authz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/authz"
)

func enabledPrincipal(id string) *authz.Principal {
	return &authz.Principal{ID: id, Username: "reader", Enabled: true}
}

/*
TestEngine_BuiltinPredicates walks the built-in predicate table against a
matrix of principals.
*/
func TestEngine_BuiltinPredicates(t *testing.T) {
	engine := authz.NewEngine(discardLogger())

	anonymous := (*authz.Principal)(nil)
	user := enabledPrincipal("acc-1")
	author := &authz.Principal{ID: "acc-2", IsAuthor: true, Enabled: true}
	verified := &authz.Principal{ID: "acc-3", IsAuthor: true, IsAuthorVerified: true, Enabled: true}
	admin := &authz.Principal{ID: "acc-4", IsAdmin: true, Enabled: true}

	tests := []struct {
		name      string
		expr      authz.Expr
		principal *authz.Principal
		args      authz.Args
		want      bool
	}{
		{"authenticated_user", authz.Authenticated(), user, nil, true},
		{"authenticated_anonymous", authz.Authenticated(), anonymous, nil, false},

		{"has_role_user", authz.HasRole(authz.RoleUser), user, nil, true},
		{"has_role_author_denied", authz.HasRole(authz.RoleAuthor), user, nil, false},
		{"has_role_author", authz.HasRole(authz.RoleAuthor), author, nil, true},
		{"has_role_admin", authz.HasRole(authz.RoleAdmin), admin, nil, true},

		{"is_verified_author", authz.Call("isVerifiedAuthor"), verified, nil, true},
		{"unverified_author_denied", authz.Call("isVerifiedAuthor"), author, nil, false},

		{"owner_match", authz.IsOwner("id"), user, authz.Args{"id": "acc-1"}, true},
		{"owner_mismatch", authz.IsOwner("id"), user, authz.Args{"id": "acc-9"}, false},
		{"owner_case_insensitive", authz.IsOwner("id"), user, authz.Args{"id": "ACC-1"}, true},
		{"owner_missing_arg", authz.IsOwner("id"), user, nil, false},
		{"owner_anonymous", authz.IsOwner("id"), anonymous, authz.Args{"id": "acc-1"}, false},

		{"author_or_admin_author", authz.AuthorOrAdmin(), author, nil, true},
		{"author_or_admin_admin", authz.AuthorOrAdmin(), admin, nil, true},
		{"author_or_admin_user", authz.AuthorOrAdmin(), user, nil, false},

		{"can_access_owner", authz.Call("canAccess", "#id"), user, authz.Args{"id": "acc-1"}, true},
		{"can_access_admin", authz.Call("canAccess", "#id"), admin, authz.Args{"id": "acc-1"}, true},
		{"can_access_stranger", authz.Call("canAccess", "#id"), author, authz.Args{"id": "acc-1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Evaluate(context.Background(), tt.expr, tt.principal, tt.args)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestEngine_Composition verifies And/Or/Not trees and literal vs "#name"
argument resolution.
*/
func TestEngine_Composition(t *testing.T) {
	engine := authz.NewEngine(discardLogger())
	admin := &authz.Principal{ID: "acc-4", IsAdmin: true, Enabled: true}
	user := enabledPrincipal("acc-1")

	editPolicy := authz.Or(
		authz.HasRole(authz.RoleAdmin),
		authz.And(authz.Authenticated(), authz.IsOwner("id")),
	)

	assert.True(t, engine.Evaluate(context.Background(), editPolicy, admin, nil))
	assert.True(t, engine.Evaluate(context.Background(), editPolicy, user, authz.Args{"id": "acc-1"}))
	assert.False(t, engine.Evaluate(context.Background(), editPolicy, user, authz.Args{"id": "acc-2"}))

	// Not inverts
	notAdmin := authz.Not(authz.HasRole(authz.RoleAdmin))
	assert.False(t, engine.Evaluate(context.Background(), notAdmin, admin, nil))
	assert.True(t, engine.Evaluate(context.Background(), notAdmin, user, nil))

	// Literal role argument vs runtime "#" reference
	literal := authz.Call("hasRole", "ADMIN")
	assert.True(t, engine.Evaluate(context.Background(), literal, admin, nil))
	assert.False(t, engine.Evaluate(context.Background(), literal, admin, authz.Args{"ADMIN": "spoofed"}))
}

/*
TestEngine_ShortCircuit proves evaluation stops at the first decisive operand.
*/
func TestEngine_ShortCircuit(t *testing.T) {
	engine := authz.NewEngine(discardLogger())

	var sideCalls int
	engine.Register("counts", func(context.Context, *authz.Principal, []string) bool {
		sideCalls++
		return true
	})
	engine.Register("alwaysTrue", func(context.Context, *authz.Principal, []string) bool {
		return true
	})
	engine.Register("alwaysFalse", func(context.Context, *authz.Principal, []string) bool {
		return false
	})

	// Or stops after the first true
	engine.Evaluate(context.Background(), authz.Or(authz.Call("alwaysTrue"), authz.Call("counts")), nil, nil)
	assert.Zero(t, sideCalls)

	// And stops after the first false
	engine.Evaluate(context.Background(), authz.And(authz.Call("alwaysFalse"), authz.Call("counts")), nil, nil)
	assert.Zero(t, sideCalls)
}

/*
TestEngine_UnknownPredicateFailsClosed ensures a typo in a policy name can
never grant access.
*/
func TestEngine_UnknownPredicateFailsClosed(t *testing.T) {
	engine := authz.NewEngine(discardLogger())
	admin := &authz.Principal{ID: "acc-4", IsAdmin: true, Enabled: true}

	assert.False(t, engine.Evaluate(context.Background(), authz.Call("isAdmn"), admin, nil))

	// Nil expressions also deny
	assert.False(t, engine.Evaluate(context.Background(), nil, admin, nil))
}

/*
TestEngine_RegisterGuard verifies guard adaptation: argument plumbing,
missing-resource denial and fail-closed storage errors.
*/
func TestEngine_RegisterGuard(t *testing.T) {
	engine := authz.NewEngine(discardLogger())
	owner := enabledPrincipal("acc-1")

	resources := map[string]string{"novel-1": "acc-1"}

	engine.RegisterGuard("novel.canEdit", func(_ context.Context, resourceID string, principal *authz.Principal) (bool, error) {
		if resourceID == "novel-boom" {
			return false, assert.AnError
		}
		ownerID, exists := resources[resourceID]
		if !exists || principal == nil {
			return false, nil
		}
		return ownerID == principal.ID, nil
	})

	expr := authz.Call("novel.canEdit", "#id")

	assert.True(t, engine.Evaluate(context.Background(), expr, owner, authz.Args{"id": "novel-1"}))
	assert.False(t, engine.Evaluate(context.Background(), expr, enabledPrincipal("acc-2"), authz.Args{"id": "novel-1"}))
	assert.False(t, engine.Evaluate(context.Background(), expr, owner, authz.Args{"id": "novel-gone"}))

	// Storage failures inside a guard deny access instead of erroring out
	assert.False(t, engine.Evaluate(context.Background(), expr, owner, authz.Args{"id": "novel-boom"}))
}

/*
TestEngine_Check verifies the rejection contract: 401 for anonymous or
disabled callers, 403 for present-but-insufficient principals.
*/
func TestEngine_Check(t *testing.T) {
	engine := authz.NewEngine(discardLogger())
	adminOnly := authz.HasRole(authz.RoleAdmin)

	t.Run("granted", func(t *testing.T) {
		admin := &authz.Principal{ID: "acc-4", IsAdmin: true, Enabled: true}
		assert.NoError(t, engine.Check(context.Background(), adminOnly, admin, nil))
	})

	t.Run("anonymous_gets_401", func(t *testing.T) {
		err := engine.Check(context.Background(), adminOnly, nil, nil)
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 401, appError.HTTPStatus)
	})

	t.Run("disabled_gets_401", func(t *testing.T) {
		disabled := &authz.Principal{ID: "acc-5", IsAdmin: true, Enabled: false}
		err := engine.Check(context.Background(), adminOnly, disabled, nil)
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 401, appError.HTTPStatus)
	})

	t.Run("insufficient_gets_403", func(t *testing.T) {
		err := engine.Check(context.Background(), adminOnly, enabledPrincipal("acc-1"), nil)
		require.Error(t, err)

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, 403, appError.HTTPStatus)
	})
}
