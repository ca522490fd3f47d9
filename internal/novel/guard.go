// Copyright (c) 2026 Inkora. All rights reserved.

package novel

import (
	"context"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/authz"
)

// # Entity Guards
//
// Guards are the entity-aware predicates the policy engine consults for
// per-novel decisions. They load the minimal ownership facts for the target
// novel and combine them with the caller's principal.

// EditableStates are the lifecycle states in which a novel accepts content
// changes. Archived novels are read-only for everyone.
var EditableStates = []State{StateDraft, StatePublished, StateHidden}

// HideableStates are the lifecycle states from which a novel can be hidden.
var HideableStates = []State{StatePublished, StateHidden}

// stateIn reports whether state is a member of the given set.
func stateIn(state State, set []State) bool {
	for _, candidate := range set {
		if state == candidate {
			return true
		}
	}
	return false
}

// OwnershipFacts is the projection the guards need: who owns the novel and
// which lifecycle state it is in.
type OwnershipFacts struct {
	AuthorID string
	State    State
}

// FactsSource is the lookup port backing the guards. Implemented by the
// Postgres repository.
type FactsSource interface {

	/*
		FindOwnershipFacts returns the guard projection for the novel with
		the given ID.

		Returns:
		  - *OwnershipFacts: Owner and lifecycle state
		  - error: apperr.NotFound when the novel does not exist
	*/
	FindOwnershipFacts(context context.Context, novelID string) (*OwnershipFacts, error)
}

// GuardSet bundles the novel guards for engine registration.
type GuardSet struct {
	facts FactsSource
}

// NewGuardSet constructs the novel [GuardSet].
func NewGuardSet(facts FactsSource) *GuardSet {
	return &GuardSet{facts: facts}
}

/*
CanEdit decides whether the principal may modify the target novel.

Description: Admins may always edit. Otherwise the principal must own the
novel AND the novel must be in one of [EditableStates]. A missing novel or
an absent principal yields (false, nil) — denial is not an error.

Parameters:
  - context: context.Context
  - novelID: string (UUID)
  - principal: *authz.Principal (nil for anonymous)

Returns:
  - bool: Whether the edit is allowed
  - error: Storage failures only; the engine logs these and fails closed
*/
func (guards *GuardSet) CanEdit(context context.Context, novelID string, principal *authz.Principal) (bool, error) {
	return guards.decide(context, novelID, principal, EditableStates)
}

/*
CanHide decides whether the principal may hide or restore the target novel.

Description: Same ownership/admin rule as [GuardSet.CanEdit], but over the
narrower [HideableStates] set — drafts and archived novels cannot be hidden.

Parameters:
  - context: context.Context
  - novelID: string (UUID)
  - principal: *authz.Principal (nil for anonymous)

Returns:
  - bool: Whether the transition is allowed
  - error: Storage failures only
*/
func (guards *GuardSet) CanHide(context context.Context, novelID string, principal *authz.Principal) (bool, error) {
	return guards.decide(context, novelID, principal, HideableStates)
}

// decide applies the shared ownership/state rule over the given state set.
func (guards *GuardSet) decide(context context.Context, novelID string, principal *authz.Principal, states []State) (bool, error) {
	if principal == nil || !principal.Enabled {
		return false, nil
	}

	facts, err := guards.facts.FindOwnershipFacts(context, novelID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if principal.IsAdmin {
		return true, nil
	}

	if facts.AuthorID != principal.ID {
		return false, nil
	}

	return stateIn(facts.State, states), nil
}
