// Copyright (c) 2026 Inkora. All rights reserved.

package middleware_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/ctxutil"
	"github.com/inkora/inkora/internal/platform/middleware"
	"github.com/inkora/inkora/internal/platform/sec"
)

// discardLogger silences middleware logging in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeVerifier maps raw token strings to canned outcomes.
type fakeVerifier struct {
	claims map[string]*sec.Claims
	called bool
	panics bool
}

func (f *fakeVerifier) Verify(tokenString string, expectedKind sec.TokenKind) (*sec.Claims, error) {
	f.called = true
	if f.panics {
		panic("verifier exploded")
	}
	if claims, ok := f.claims[tokenString]; ok && claims.Kind == expectedKind {
		return claims, nil
	}
	return nil, sec.ErrTokenInvalid
}

// fakeResolver maps subject IDs to canned principals.
type fakeResolver struct {
	principals map[string]*authz.Principal
	err        error
}

func (f *fakeResolver) Resolve(_ context.Context, subjectID string) (*authz.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.principals[subjectID], nil
}

func accessClaims(subject string) *sec.Claims {
	return &sec.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		AccountID:        subject,
		Kind:             sec.KindAccess,
	}
}

// captureHandler records the principal visible to the downstream handler.
type captureHandler struct {
	principal *authz.Principal
	served    bool
}

func (h *captureHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	h.served = true
	h.principal = ctxutil.GetPrincipal(request.Context())
	writer.WriteHeader(http.StatusOK)
}

/*
TestAuthenticate_AttachesPrincipal covers the happy path: a valid bearer
token for an active account yields a principal in the request context.
*/
func TestAuthenticate_AttachesPrincipal(t *testing.T) {
	verifier := &fakeVerifier{claims: map[string]*sec.Claims{
		"good-token": accessClaims("acc-1"),
	}}
	resolver := &fakeResolver{principals: map[string]*authz.Principal{
		"acc-1": {ID: "acc-1", Username: "inkwriter", Enabled: true},
	}}

	handler := &captureHandler{}
	filter := middleware.Authenticate(verifier, resolver, discardLogger())(handler)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/novels", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	filter.ServeHTTP(httptest.NewRecorder(), request)

	require.True(t, handler.served)
	require.NotNil(t, handler.principal)
	assert.Equal(t, "acc-1", handler.principal.ID)
}

/*
TestStructuredLogger_LogsResolvedAccount asserts that the account id
resolved by the auth filter reaches the access-log entry, even though the
auth filter runs deeper in the chain and derives its own request context.
*/
func TestStructuredLogger_LogsResolvedAccount(t *testing.T) {
	verifier := &fakeVerifier{claims: map[string]*sec.Claims{
		"good-token": accessClaims("acc-1"),
	}}
	resolver := &fakeResolver{principals: map[string]*authz.Principal{
		"acc-1": {ID: "acc-1", Username: "inkwriter", Enabled: true},
	}}

	var logBuffer bytes.Buffer
	accessLogger := slog.New(slog.NewJSONHandler(&logBuffer, nil))

	handler := &captureHandler{}
	chain := middleware.StructuredLogger(accessLogger)(
		middleware.Authenticate(verifier, resolver, discardLogger())(handler),
	)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/novels", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	chain.ServeHTTP(httptest.NewRecorder(), request)

	require.True(t, handler.served)
	assert.Contains(t, logBuffer.String(), `"account_id":"acc-1"`)

	// Anonymous requests carry no account attribution.
	logBuffer.Reset()
	anonymous := httptest.NewRequest(http.MethodGet, "/api/v1/novels", nil)
	chain.ServeHTTP(httptest.NewRecorder(), anonymous)

	assert.NotContains(t, logBuffer.String(), "account_id")
}

/*
TestAuthenticate_NeverRejects enumerates every failure path and asserts the
request still reaches the handler, anonymously, with a 200.
*/
func TestAuthenticate_NeverRejects(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		resolver   *fakeResolver
		wantCalled bool
	}{
		{
			name:     "absent_header",
			header:   "",
			resolver: &fakeResolver{},
		},
		{
			name:     "malformed_header",
			header:   "NotBearer token extra",
			resolver: &fakeResolver{},
		},
		{
			name:       "invalid_token",
			header:     "Bearer garbage",
			resolver:   &fakeResolver{},
			wantCalled: true,
		},
		{
			name:   "account_missing",
			header: "Bearer good-token",
			// Resolver returns (nil, nil): token outlived its account
			resolver:   &fakeResolver{principals: map[string]*authz.Principal{}},
			wantCalled: true,
		},
		{
			name:   "account_disabled",
			header: "Bearer good-token",
			resolver: &fakeResolver{principals: map[string]*authz.Principal{
				"acc-1": {ID: "acc-1", Enabled: false},
			}},
			wantCalled: true,
		},
		{
			name:       "resolver_storage_failure",
			header:     "Bearer good-token",
			resolver:   &fakeResolver{err: assert.AnError},
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{claims: map[string]*sec.Claims{
				"good-token": accessClaims("acc-1"),
			}}

			handler := &captureHandler{}
			filter := middleware.Authenticate(verifier, tt.resolver, discardLogger())(handler)

			request := httptest.NewRequest(http.MethodGet, "/api/v1/novels", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}

			recorder := httptest.NewRecorder()
			filter.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.True(t, handler.served)
			assert.Nil(t, handler.principal)
			assert.Equal(t, tt.wantCalled, verifier.called)
		})
	}
}

/*
TestAuthenticate_PanicDegradesToAnonymous verifies that a panic inside the
verifier is absorbed instead of crashing or rejecting the request.
*/
func TestAuthenticate_PanicDegradesToAnonymous(t *testing.T) {
	verifier := &fakeVerifier{panics: true}
	handler := &captureHandler{}
	filter := middleware.Authenticate(verifier, &fakeResolver{}, discardLogger())(handler)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/novels", nil)
	request.Header.Set("Authorization", "Bearer anything")

	recorder := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		filter.ServeHTTP(recorder, request)
	})

	assert.True(t, handler.served)
	assert.Nil(t, handler.principal)
}

/*
TestAuthenticate_AllowListBypass verifies that auth endpoints, health probes
and CORS pre-flights never touch the verifier.
*/
func TestAuthenticate_AllowListBypass(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"login_endpoint", http.MethodPost, "/api/v1/auth/login"},
		{"health_probe", http.MethodGet, "/health"},
		{"readiness_probe", http.MethodGet, "/ready"},
		{"preflight", http.MethodOptions, "/api/v1/novels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{}
			handler := &captureHandler{}
			filter := middleware.Authenticate(verifier, &fakeResolver{}, discardLogger())(handler)

			request := httptest.NewRequest(tt.method, tt.path, nil)
			request.Header.Set("Authorization", "Bearer anything")
			filter.ServeHTTP(httptest.NewRecorder(), request)

			assert.True(t, handler.served)
			assert.False(t, verifier.called)
		})
	}
}

/*
TestAuthenticate_Idempotent verifies the filter skips resolution when a
principal is already attached.
*/
func TestAuthenticate_Idempotent(t *testing.T) {
	verifier := &fakeVerifier{}
	handler := &captureHandler{}
	filter := middleware.Authenticate(verifier, &fakeResolver{}, discardLogger())(handler)

	existing := &authz.Principal{ID: "acc-9", Enabled: true}
	request := httptest.NewRequest(http.MethodGet, "/api/v1/novels", nil)
	request = request.WithContext(ctxutil.WithPrincipal(request.Context(), existing))
	request.Header.Set("Authorization", "Bearer anything")

	filter.ServeHTTP(httptest.NewRecorder(), request)

	assert.False(t, verifier.called)
	assert.Equal(t, existing, handler.principal)
}

/*
TestRequirePolicy exercises the 401/403/allow outcomes through a real chi
router so URL parameter resolution is covered.
*/
func TestRequirePolicy(t *testing.T) {
	engine := authz.NewEngine(discardLogger())

	ownerOnly := authz.Or(
		authz.HasRole(authz.RoleAdmin),
		authz.IsOwner("accountID"),
	)

	router := chi.NewRouter()
	router.With(middleware.RequirePolicy(engine, ownerOnly)).
		Get("/accounts/{accountID}/library", func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		})

	serve := func(principal *authz.Principal) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/library", nil)
		if principal != nil {
			request = request.WithContext(ctxutil.WithPrincipal(request.Context(), principal))
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	// Anonymous requests are rejected with 401
	assert.Equal(t, http.StatusUnauthorized, serve(nil).Code)

	// A stranger is rejected with 403
	stranger := &authz.Principal{ID: "acc-2", Enabled: true}
	assert.Equal(t, http.StatusForbidden, serve(stranger).Code)

	// The owner passes (URL param resolved into the policy argument)
	owner := &authz.Principal{ID: "acc-1", Enabled: true}
	assert.Equal(t, http.StatusOK, serve(owner).Code)

	// An admin passes regardless of ownership
	admin := &authz.Principal{ID: "acc-3", IsAdmin: true, Enabled: true}
	assert.Equal(t, http.StatusOK, serve(admin).Code)
}
