// Copyright (c) 2026 Inkora. All rights reserved.

package authz

import (
	"context"
	"log/slog"
	"strings"

	"github.com/inkora/inkora/internal/platform/apperr"
)

// # Policy Expressions
//
// A policy expression is a small boolean tree over named predicates, built
// once at startup per protected operation and evaluated per call. There is
// no string parsing and no reflection on the request path — extensibility
// comes from registering new named predicates, not from rewriting dispatch.

// Expr is a node in a policy expression tree.
type Expr interface {
	eval(engine *Engine, context context.Context, principal *Principal, args Args) bool
}

// Args carries the runtime arguments of the protected operation
// (typically URL path parameters) keyed by name.
type Args map[string]string

// ArgRefPrefix marks a predicate argument as a runtime reference.
//
// Call("isOwner", "#id") resolves "#id" against [Args] at evaluation time,
// while Call("hasRole", "ADMIN") passes the literal "ADMIN".
const ArgRefPrefix = "#"

type andExpr struct{ operands []Expr }
type orExpr struct{ operands []Expr }
type notExpr struct{ operand Expr }

type callExpr struct {
	name string
	args []string
}

// And builds a short-circuiting conjunction of expressions.
func And(operands ...Expr) Expr { return andExpr{operands: operands} }

// Or builds a short-circuiting disjunction of expressions.
func Or(operands ...Expr) Expr { return orExpr{operands: operands} }

// Not negates an expression.
func Not(operand Expr) Expr { return notExpr{operand: operand} }

// Call invokes a named predicate with literal or "#name" runtime arguments.
func Call(name string, args ...string) Expr {
	return callExpr{name: name, args: args}
}

// # Convenience Constructors
//
// Shorthands for the most common policy fragments, so route tables read
// like the access rules they encode.

// Authenticated requires an enabled principal.
func Authenticated() Expr { return Call("isAuthenticated") }

// HasRole requires the named role.
func HasRole(role Role) Expr { return Call("hasRole", string(role)) }

// IsOwner requires the principal to own the resource identified by the
// runtime argument with the given name.
func IsOwner(argName string) Expr { return Call("isOwner", ArgRefPrefix+argName) }

// AuthorOrAdmin requires the author or admin role.
func AuthorOrAdmin() Expr { return Call("isAuthorOrAdmin") }

func (e andExpr) eval(engine *Engine, context context.Context, principal *Principal, args Args) bool {
	for _, operand := range e.operands {
		if !operand.eval(engine, context, principal, args) {
			return false
		}
	}
	return true
}

func (e orExpr) eval(engine *Engine, context context.Context, principal *Principal, args Args) bool {
	for _, operand := range e.operands {
		if operand.eval(engine, context, principal, args) {
			return true
		}
	}
	return false
}

func (e notExpr) eval(engine *Engine, context context.Context, principal *Principal, args Args) bool {
	return !e.operand.eval(engine, context, principal, args)
}

func (e callExpr) eval(engine *Engine, context context.Context, principal *Principal, args Args) bool {
	predicate, found := engine.predicates[e.name]
	if !found {
		// Unknown predicates fail closed.
		engine.logger.ErrorContext(context, "policy_unknown_predicate", slog.String("predicate", e.name))
		return false
	}

	// Resolve "#name" references against the runtime arguments.
	resolved := make([]string, len(e.args))
	for i, arg := range e.args {
		if strings.HasPrefix(arg, ArgRefPrefix) {
			resolved[i] = args[strings.TrimPrefix(arg, ArgRefPrefix)]
		} else {
			resolved[i] = arg
		}
	}

	return predicate(context, principal, resolved)
}

// # Predicates & Guards

// Predicate is a named boolean check over the current principal and the
// resolved call arguments. Predicates must be side-effect free and must
// treat a nil or disabled principal as "false", never as an error.
type Predicate func(context context.Context, principal *Principal, args []string) bool

// Guard is an entity-specific predicate consulted by the policy engine.
//
// # Contract
//
//   - A missing resource returns (false, nil), never an error.
//   - A nil principal returns (false, nil).
//   - The error return is for storage failures only; the engine logs it
//     and fails closed.
type Guard func(context context.Context, resourceID string, principal *Principal) (bool, error)

// # Engine

// Engine evaluates policy expressions against the current principal.
//
// # Concurrency
//
// The predicate table is populated during startup wiring and read-only
// afterwards, so evaluation is safe from any number of request goroutines.
type Engine struct {
	predicates map[string]Predicate
	logger     *slog.Logger
}

// NewEngine constructs an [Engine] with the built-in predicate set registered.
func NewEngine(logger *slog.Logger) *Engine {
	engine := &Engine{
		predicates: make(map[string]Predicate),
		logger:     logger,
	}

	engine.Register("isAuthenticated", func(_ context.Context, principal *Principal, _ []string) bool {
		return principal != nil && principal.Enabled
	})

	engine.Register("hasRole", func(_ context.Context, principal *Principal, args []string) bool {
		if len(args) != 1 {
			return false
		}
		return principal.HasRole(Role(args[0]))
	})

	engine.Register("isAuthor", func(_ context.Context, principal *Principal, _ []string) bool {
		return principal.HasRole(RoleAuthor)
	})

	engine.Register("isVerifiedAuthor", func(_ context.Context, principal *Principal, _ []string) bool {
		return principal.HasRole(RoleAuthor) && principal.IsAuthorVerified
	})

	engine.Register("isAdmin", func(_ context.Context, principal *Principal, _ []string) bool {
		return principal.HasRole(RoleAdmin)
	})

	engine.Register("isOwner", func(_ context.Context, principal *Principal, args []string) bool {
		if principal == nil || !principal.Enabled || len(args) != 1 {
			return false
		}
		return identityEqual(principal.ID, args[0])
	})

	engine.Register("isAuthorOrAdmin", func(_ context.Context, principal *Principal, _ []string) bool {
		return principal.HasRole(RoleAuthor) || principal.HasRole(RoleAdmin)
	})

	// canAccess is the "owner or admin" composite used by profile and
	// library endpoints.
	engine.Register("canAccess", func(_ context.Context, principal *Principal, args []string) bool {
		if principal == nil || !principal.Enabled || len(args) != 1 {
			return false
		}
		return principal.IsAdmin || identityEqual(principal.ID, args[0])
	})

	return engine
}

// Register binds a predicate under a name. Later registrations replace
// earlier ones, which lets tests stub built-ins.
func (engine *Engine) Register(name string, predicate Predicate) {
	engine.predicates[name] = predicate
}

// RegisterGuard exposes an entity guard as a single-argument predicate.
//
// # Usage
//
//	engine.RegisterGuard("novel.canEdit", novelGuard.CanEdit)
//	...
//	authz.Call("novel.canEdit", "#id")
func (engine *Engine) RegisterGuard(name string, guard Guard) {
	engine.Register(name, func(context context.Context, principal *Principal, args []string) bool {
		if len(args) != 1 {
			return false
		}

		allowed, err := guard(context, args[0], principal)
		if err != nil {
			// Guard storage failures fail closed.
			engine.logger.ErrorContext(context, "policy_guard_error",
				slog.String("guard", name),
				slog.Any("error", err),
			)
			return false
		}

		return allowed
	})
}

/*
Evaluate runs a policy expression against the current principal.

Description: Pure, short-circuiting boolean evaluation. An absent or
disabled principal makes every role/ownership predicate false rather than
raising.

Parameters:
  - context: context.Context (passed through to guards)
  - expr: Expr (the bound policy expression)
  - principal: *Principal (nil for anonymous requests)
  - args: Args (runtime arguments, e.g. URL parameters)

Returns:
  - bool: Whether access is granted
*/
func (engine *Engine) Evaluate(context context.Context, expr Expr, principal *Principal, args Args) bool {
	if expr == nil {
		return false
	}
	return expr.eval(engine, context, principal, args)
}

/*
Check evaluates a policy expression and converts a denial into the
standard rejection contract.

Returns:
  - nil if the expression grants access
  - apperr.Unauthorized (401) if no enabled principal was attached
  - apperr.Forbidden (403) if a principal was present but the policy denied
*/
func (engine *Engine) Check(context context.Context, expr Expr, principal *Principal, args Args) error {
	if engine.Evaluate(context, expr, principal, args) {
		return nil
	}

	if principal == nil || !principal.Enabled {
		return apperr.Unauthorized("Authentication required")
	}

	return apperr.Forbidden("Insufficient permissions")
}

// identityEqual compares two account IDs using a normalized form.
//
// UUIDs are case-insensitive per RFC 4122, and IDs arriving via URL
// parameters may carry stray whitespace.
func identityEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
