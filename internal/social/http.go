// Copyright (c) 2026 Inkora. All rights reserved.

package social

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

// Handler implements the HTTP layer for comments and votes.
type Handler struct {
	service *Service
	engine  *authz.Engine
}

// NewHandler constructs a new social [Handler].
func NewHandler(service *Service, engine *authz.Engine) *Handler {
	return &Handler{service: service, engine: engine}
}

// Routes registers the social endpoints directly on the given router.
//
// Comments and votes hang off novel URLs, so the routes are registered on
// the shared API router rather than mounted under a prefix of their own.
func (handler *Handler) Routes(router chi.Router) {
	authenticated := middleware.RequirePolicy(handler.engine, authz.Authenticated())
	adminOnly := middleware.RequirePolicy(handler.engine, authz.HasRole(authz.RoleAdmin))

	// Comments
	router.Get("/novels/{id}/comments", handler.listComments)
	router.With(authenticated).Post("/novels/{id}/comments", handler.createComment)
	router.With(authenticated).Delete("/comments/{commentID}", handler.deleteComment)
	router.With(adminOnly).Post("/comments/{commentID}/hide", handler.hideComment)
	router.With(adminOnly).Post("/comments/{commentID}/unhide", handler.unhideComment)

	// Votes
	router.With(authenticated).Put("/novels/{id}/vote", handler.castVote)
	router.With(authenticated).Delete("/novels/{id}/vote", handler.retractVote)
}

// # Comment Endpoints

/*
GET /api/v1/novels/{id}/comments.

Description: Lists a novel's visible comments, newest first.

Response:
  - 200: []Comment: Paginated comments with author usernames
*/
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	novelID := requestutil.ID(request, "id")
	paginationParams := pagination.FromRequest(request)

	comments, total, err := handler.service.ListComments(request.Context(), novelID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, comments, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// createCommentRequest defines the expected JSON payload for a new comment.
type createCommentRequest struct {
	Body string `json:"body"`
}

/*
POST /api/v1/novels/{id}/comments.

Description: Posts a comment on the novel as the authenticated account.

Request:
  - Body: createCommentRequest (Body)

Response:
  - 201: Comment: The created comment
  - 401: ErrUnauthorized: Authentication required
  - 422: ErrUnprocessable: Novel does not exist
*/
func (handler *Handler) createComment(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createCommentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	comment, err := handler.service.CreateComment(request.Context(), requestutil.ID(request, "id"), authorID, input.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, comment)
}

/*
DELETE /api/v1/comments/{commentID}.

Description: Removes a comment. Allowed for the comment's author and admins.

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller is neither the author nor an admin
  - 404: ErrNotFound: Comment does not exist
*/
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	principal := requestutil.Principal(request)

	if err := handler.service.DeleteComment(request.Context(), requestutil.ID(request, "commentID"), principal); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/comments/{commentID}/hide.

Description: Hides a comment from listings. Admin only.

Response:
  - 204: No Content
*/
func (handler *Handler) hideComment(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.HideComment(request.Context(), requestutil.ID(request, "commentID"), true); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/comments/{commentID}/unhide.

Description: Restores a hidden comment. Admin only.

Response:
  - 204: No Content
*/
func (handler *Handler) unhideComment(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.HideComment(request.Context(), requestutil.ID(request, "commentID"), false); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Vote Endpoints

/*
PUT /api/v1/novels/{id}/vote.

Description: Casts the authenticated account's vote on the novel. Repeats
are no-ops.

Response:
  - 200: Success: Vote state
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) castVote(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	recorded, err := handler.service.CastVote(request.Context(), accountID, requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"voted": true, "recorded": recorded})
}

/*
DELETE /api/v1/novels/{id}/vote.

Description: Retracts the account's vote. Idempotent.

Response:
  - 204: No Content
*/
func (handler *Handler) retractVote(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RetractVote(request.Context(), accountID, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
