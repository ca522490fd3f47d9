// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, common body
decoding patterns and principal lookups, ensuring consistent error handling
across all handlers.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/ctxutil"
	"github.com/inkora/inkora/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID/Slug) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Principal extracts the resolved principal from the request context.

Returns nil if the request is anonymous.
*/
func Principal(request *http.Request) *authz.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request carries an enabled principal.

Returns:
  - *authz.Principal: The resolved principal
  - error: apperr.Unauthorized if the request is anonymous or disabled
*/
func RequiredPrincipal(request *http.Request) (*authz.Principal, error) {

	// Get the resolved principal
	principal := ctxutil.GetPrincipal(request.Context())

	// Anonymous and disabled requests are rejected identically
	if principal == nil || !principal.Enabled {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return principal, nil
}

/*
RequiredAccountID returns the account ID of the currently authenticated principal.

Returns:
  - string: Account UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredAccountID(request *http.Request) (string, error) {

	// Get the resolved principal
	principal, err := RequiredPrincipal(request)

	// If the request is anonymous, return an error
	if err != nil {
		return "", err
	}

	return principal.ID, nil
}
