// Copyright (c) 2026 Inkora. All rights reserved.

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/middleware"
	requestutil "github.com/inkora/inkora/internal/platform/request"
	"github.com/inkora/inkora/internal/platform/respond"
	"github.com/inkora/inkora/internal/platform/validate"
	"github.com/inkora/inkora/pkg/pagination"
)

// # HTTP Transport Layer

// Handler implements the HTTP layer for library management.
type Handler struct {
	service *Service
	engine  *authz.Engine
}

// NewHandler constructs a new library [Handler].
func NewHandler(service *Service, engine *authz.Engine) *Handler {
	return &Handler{service: service, engine: engine}
}

// Routes returns the library router, intended to be mounted under
// /accounts/{accountID}/library.
//
// The entire subtree is guarded by the canAccess policy: only the owning
// account or an admin gets in.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequirePolicy(handler.engine, authz.Call("canAccess", "#accountID")))

	router.Get("/", handler.listEntries)
	router.Put("/{novelID}", handler.saveEntry)
	router.Delete("/{novelID}", handler.removeEntry)

	return router
}

/*
GET /api/v1/accounts/{accountID}/library.

Description: Lists the account's library entries, newest first.

Response:
  - 200: []Entry: Paginated entries with novel display fields
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Caller is neither the owner nor an admin
*/
func (handler *Handler) listEntries(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.ID(request, "accountID")
	paginationParams := pagination.FromRequest(request)

	entries, total, err := handler.service.ListEntries(request.Context(), accountID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// saveEntryRequest defines the expected JSON payload for an upsert.
type saveEntryRequest struct {
	Status string `json:"status"`
}

/*
PUT /api/v1/accounts/{accountID}/library/{novelID}.

Description: Adds the novel to the library or updates its reading status.

Request:
  - Body: saveEntryRequest (Status; defaults to "reading")

Response:
  - 200: Entry: The persisted entry
  - 422: ErrUnprocessable: Novel does not exist
*/
func (handler *Handler) saveEntry(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.ID(request, "accountID")
	novelID := requestutil.ID(request, "novelID")

	// The body is optional; an empty PUT adds the novel as "reading".
	var input saveEntryRequest
	if request.ContentLength > 0 {
		if err := requestutil.DecodeJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
	}

	entry, err := handler.service.SaveEntry(request.Context(), accountID, novelID, Status(input.Status))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}

/*
DELETE /api/v1/accounts/{accountID}/library/{novelID}.

Description: Removes the novel from the library. Idempotent.

Response:
  - 204: No Content
*/
func (handler *Handler) removeEntry(writer http.ResponseWriter, request *http.Request) {
	accountID := requestutil.ID(request, "accountID")
	novelID := requestutil.ID(request, "novelID")

	if err := handler.service.RemoveEntry(request.Context(), accountID, novelID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
