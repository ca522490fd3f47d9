// Copyright (c) 2026 Inkora. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/middleware"
	requestutil "github.com/inkora/inkora/internal/platform/request"
	"github.com/inkora/inkora/internal/platform/respond"
	"github.com/inkora/inkora/internal/platform/validate"
)

// Handler implements the HTTP layer for account management.
type Handler struct {
	accountService *Service
	engine         *authz.Engine
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, engine *authz.Engine) *Handler {
	return &Handler{accountService: service, engine: engine}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
//
// Policy expressions are built once here, at wiring time, and enforced by
// [middleware.RequirePolicy] per request.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	authenticated := middleware.RequirePolicy(handler.engine, authz.Authenticated())
	adminOnly := middleware.RequirePolicy(handler.engine, authz.HasRole(authz.RoleAdmin))

	// Self-service account management
	router.With(authenticated).Get("/me", handler.getMe)
	router.With(authenticated).Patch("/me", handler.updateMe)
	router.With(authenticated).Delete("/me", handler.deleteMe)
	router.With(authenticated).Post("/me/author", handler.becomeAuthor)

	// Public profile discovery
	router.Get("/accounts/{id}", handler.getPublicProfile)

	// Admin moderation
	router.With(adminOnly).Post("/accounts/{id}/verify-author", handler.verifyAuthor)
	router.With(adminOnly).Post("/accounts/{id}/suspend", handler.suspend)
	router.With(adminOnly).Post("/accounts/{id}/reinstate", handler.reinstate)

	return router
}

// # Profile Endpoints

/*
GET /api/v1/me.

Description: Retrieves the full private profile of the authenticated account.

Response:
  - 200: Account: Fully hydrated profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

/*
PATCH /api/v1/me.

Description: Applies partial updates to the authenticated account's profile.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: Account: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.DisplayName != nil {
		v.MinLen(FieldDisplayName, *input.DisplayName, 2).MaxLen(FieldDisplayName, *input.DisplayName, 50)
	}
	if input.Bio != nil {
		v.MaxLen(FieldBio, *input.Bio, 500)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.UpdateProfile(request.Context(), accountID, UpdateProfileInput{
		DisplayName: input.DisplayName,
		Bio:         input.Bio,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
DELETE /api/v1/me.

Description: Performs a soft-deletion of the authenticated account.

Response:
  - 204: No Content: Account deleted successfully
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/me/author.

Description: Enrolls the authenticated account as an unverified author.

Response:
  - 200: Account: The updated profile with is_author = true
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Already enrolled
*/
func (handler *Handler) becomeAuthor(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.accountService.BecomeAuthor(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

/*
GET /api/v1/accounts/{id}.

Description: Retrieves public profile information for a specific account.

Request:
  - id: string (UUID)

Response:
  - 200: Public profile data
  - 404: ErrNotFound: Account not found
*/
func (handler *Handler) getPublicProfile(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.ID(request, "id")

	account, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account.PublicView())
}

// # Admin Endpoints

/*
POST /api/v1/accounts/{id}/verify-author.

Description: Marks an enrolled author as verified. Admin only.

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller is not an admin
  - 422: ErrUnprocessable: Account is not an author
*/
func (handler *Handler) verifyAuthor(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.VerifyAuthor(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/accounts/{id}/suspend.

Description: Suspends an account. Admin only.

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) suspend(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Suspend(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/accounts/{id}/reinstate.

Description: Returns a suspended account to active status. Admin only.

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) reinstate(writer http.ResponseWriter, request *http.Request) {
	if err := handler.accountService.Reinstate(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
