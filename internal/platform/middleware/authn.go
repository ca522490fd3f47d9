// Copyright (c) 2026 Inkora. All rights reserved.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/ctxutil"
	"github.com/inkora/inkora/internal/platform/respond"
	"github.com/inkora/inkora/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify access tokens.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the sec package's
// concrete service, allowing us to easily inject mocks during unit testing.
type TokenVerifier interface {
	Verify(tokenString string, expectedKind sec.TokenKind) (*sec.Claims, error)
}

// PrincipalResolver builds a request-scoped principal from a token subject.
type PrincipalResolver interface {
	Resolve(ctx context.Context, subjectID string) (*authz.Principal, error)
}

// # Request Authentication

// Authenticate resolves the caller's identity and attaches it to the context.
//
// # Contract
//
// This filter NEVER rejects a request. Every failure path (absent header,
// malformed header, invalid or expired token, deleted or disabled account,
// resolver storage failure, even an internal panic) leaves the request
// anonymous and lets the policy layer decide later whether anonymity is
// acceptable for the route. Protected endpoints therefore return their 401
// from [RequirePolicy], never from here.
//
// # Flow
//  1. Skip allow-listed paths and CORS pre-flight requests entirely.
//  2. Skip if a principal is already attached (idempotent under re-entry).
//  3. Parse 'Authorization: Bearer <token>' and verify the access token.
//  4. Resolve the principal fresh from the account record, so role changes
//     and suspensions take effect on the very next request.
//  5. Attach the principal to the request context.
func Authenticate(verifier TokenVerifier, resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Allow-List Bypass ──────────────────────────────────────────
			if request.Method == http.MethodOptions || isAllowListed(request.URL.Path) {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Idempotency ────────────────────────────────────────────────
			if ctxutil.GetPrincipal(request.Context()) != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Resolution (anonymous on every failure) ────────────────────
			principal := resolvePrincipal(request, verifier, resolver, logger)
			if principal == nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			if accessLog := ctxutil.GetAccessLog(request.Context()); accessLog != nil {
				accessLog.AccountID = principal.ID
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// authAllowList names path prefixes that never need identity resolution.
var authAllowList = []string{
	"/api/v1/auth/",
	"/health",
	"/ready",
}

func isAllowListed(path string) bool {
	for _, prefix := range authAllowList {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// resolvePrincipal performs the verify-then-resolve sequence, degrading to
// anonymous (nil) on any failure. A panic inside the verifier or resolver is
// absorbed here so that an authentication bug can never take down a public
// endpoint.
func resolvePrincipal(request *http.Request, verifier TokenVerifier, resolver PrincipalResolver, logger *slog.Logger) (principal *authz.Principal) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(request.Context(), "authn_panic_absorbed",
				slog.Any("error", recovered),
			)
			principal = nil
		}
	}()

	authHeader := request.Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil
	}

	claims, err := verifier.Verify(parts[1], sec.KindAccess)
	if err != nil {
		// Expired and tampered tokens are indistinguishable; both stay anonymous.
		return nil
	}

	principal, err = resolver.Resolve(request.Context(), claims.Subject)
	if err != nil {
		logger.ErrorContext(request.Context(), "authn_resolve_failed",
			slog.String("subject", claims.Subject),
			slog.Any("error", err),
		)
		return nil
	}

	// A disabled principal is equivalent to no principal at all.
	if principal != nil && !principal.Enabled {
		return nil
	}

	return principal
}

// # Policy Enforcement

// RequirePolicy blocks requests that fail a policy expression.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. The expression is
// built once at startup; per request, URL parameters are collected into
// [authz.Args] so "#name" references resolve against the live route.
//
//	router.With(middleware.RequirePolicy(engine, authz.Call("novel.canEdit", "#id"))).
//	    Put("/novels/{id}", handler.Update)
//
// # Flow
//  1. Read the principal attached by [Authenticate] (nil for anonymous).
//  2. Collect chi URL parameters as runtime arguments.
//  3. Evaluate; denial maps to 401 (anonymous) or 403 (insufficient).
func RequirePolicy(engine *authz.Engine, expr authz.Expr) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			principal := ctxutil.GetPrincipal(request.Context())
			args := routeArgs(request)

			if err := engine.Check(request.Context(), expr, principal, args); err != nil {
				respond.Error(writer, request, err)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// routeArgs snapshots the chi URL parameters for policy argument resolution.
func routeArgs(request *http.Request) authz.Args {
	routeContext := chi.RouteContext(request.Context())
	if routeContext == nil {
		return nil
	}

	args := make(authz.Args, len(routeContext.URLParams.Keys))
	for i, key := range routeContext.URLParams.Keys {
		args[key] = routeContext.URLParams.Values[i]
	}
	return args
}
