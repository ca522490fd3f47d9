// Copyright (c) 2026 Inkora. All rights reserved.

package novel

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

// Handler implements the HTTP layer for the novel catalogue.
type Handler struct {
	service *Service
	engine  *authz.Engine

	// Bound once at wiring time; evaluated per request.
	canEdit authz.Expr
	canHide authz.Expr
}

// NewHandler constructs a new novel [Handler].
func NewHandler(service *Service, engine *authz.Engine) *Handler {
	return &Handler{
		service: service,
		engine:  engine,
		canEdit: authz.Call("novel.canEdit", "#id"),
		canHide: authz.Call("novel.canHide", "#id"),
	}
}

// Routes returns a [chi.Router] configured with the novel domain's endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Listing and reading published novels.
//   - Authoring (Guarded): Creation requires the author role; every mutation
//     of an existing novel goes through the novel.canEdit / novel.canHide
//     entity guards.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	authorOnly := middleware.RequirePolicy(handler.engine, authz.AuthorOrAdmin())
	editable := middleware.RequirePolicy(handler.engine, handler.canEdit)
	hideable := middleware.RequirePolicy(handler.engine, handler.canHide)

	// ## Public Discovery
	router.Get("/", handler.listNovels)
	router.Get("/{identifier}", handler.getNovel)
	router.Get("/{id}/chapters", handler.listChapters)
	router.Get("/{id}/chapters/{chapterID}", handler.getChapter)

	// ## Authoring
	router.With(authorOnly).Post("/", handler.createNovel)
	router.With(editable).Patch("/{id}", handler.updateNovel)
	router.With(editable).Post("/{id}/publish", handler.publish)
	router.With(hideable).Post("/{id}/hide", handler.hide)
	router.With(editable).Post("/{id}/archive", handler.archive)

	// ## Chapter Management
	router.With(editable).Post("/{id}/chapters", handler.createChapter)
	router.With(editable).Delete("/{id}/chapters/{chapterID}", handler.deleteChapter)

	return router
}

// # Discovery Endpoints

/*
GET /api/v1/novels.

Description: Retrieves a paginated list of published novels. Supports
filtering by author, language, and title search.

Request:
  - q: string (Title search)
  - author: string (UUID)
  - language: string (BCP-47)
  - sort: string (latest, popular, votes)
  - limit: int
  - page: int

Response:
  - 200: []Novel: Paginated list
*/
func (handler *Handler) listNovels(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		AuthorID: queryParams.Get("author"),
		Language: queryParams.Get("language"),
		Query:    queryParams.Get("q"),
		Sort:     queryParams.Get("sort"),
	}

	novels, total, err := handler.service.ListNovels(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, novels, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/novels/{identifier}.

Description: Retrieves a single novel by UUID or slug. Published novels are
readable by everyone (and bump the view counter); non-published novels are
only visible to callers the edit guard admits.

Response:
  - 200: Novel: Hydrated entity
  - 404: ErrNotFound: Novel missing or not visible to the caller
*/
func (handler *Handler) getNovel(writer http.ResponseWriter, request *http.Request) {
	identifier := requestutil.Param(request, "identifier")

	// Owners and admins read through the guard so drafts stay reachable
	// without a separate endpoint.
	if handler.evaluateByIdentifier(request, handler.canEdit, identifier) {
		novel, err := handler.service.GetNovel(request.Context(), identifier)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, novel)
		return
	}

	novel, err := handler.service.ReadNovel(request.Context(), identifier)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, novel)
}

/*
GET /api/v1/novels/{id}/chapters.

Description: Lists the chapters of a novel ordered by number. Callers who
pass the edit guard also see unpublished chapters.

Response:
  - 200: []Chapter: Ordered chapter list, content omitted
  - 404: ErrNotFound: Novel missing or not visible
*/
func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	novelID := requestutil.ID(request, "id")
	canSeeDrafts := handler.evaluate(request, handler.canEdit)

	chapters, err := handler.service.ListChapters(request.Context(), novelID, canSeeDrafts)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapters)
}

/*
GET /api/v1/novels/{id}/chapters/{chapterID}.

Description: Retrieves a single chapter with its content.

Response:
  - 200: Chapter: Hydrated entity
  - 404: ErrNotFound: Chapter missing or still a draft
*/
func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID := requestutil.ID(request, "chapterID")
	canSeeDrafts := handler.evaluate(request, handler.canEdit)

	chapter, err := handler.service.GetChapter(request.Context(), chapterID, canSeeDrafts)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

// # Authoring Endpoints

// createNovelRequest defines the expected JSON payload for novel creation.
type createNovelRequest struct {
	Title    string `json:"title"`
	Synopsis string `json:"synopsis"`
	CoverURL string `json:"cover_url"`
	Language string `json:"language"`
}

/*
POST /api/v1/novels.

Description: Creates a new draft owned by the calling author.

Request:
  - Body: createNovelRequest (Title, Synopsis, CoverURL, Language)

Response:
  - 201: Novel: The created draft
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Caller is not an author
*/
func (handler *Handler) createNovel(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createNovelRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	novel, err := handler.service.CreateNovel(request.Context(), authorID, CreateInput{
		Title:    input.Title,
		Synopsis: input.Synopsis,
		CoverURL: input.CoverURL,
		Language: input.Language,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, novel)
}

// updateNovelRequest defines the expected JSON payload for metadata updates.
type updateNovelRequest struct {
	Title    *string `json:"title"`
	Synopsis *string `json:"synopsis"`
	CoverURL *string `json:"cover_url"`
}

/*
PATCH /api/v1/novels/{id}.

Description: Applies partial metadata updates. Ownership and lifecycle state
are enforced by the novel.canEdit guard before this handler runs.

Request:
  - Body: updateNovelRequest (Partial JSON)

Response:
  - 200: Novel: The updated entity
  - 403: ErrForbidden: Guard denied (not owner, or novel archived)
*/
func (handler *Handler) updateNovel(writer http.ResponseWriter, request *http.Request) {
	var input updateNovelRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	novel, err := handler.service.UpdateNovel(request.Context(), requestutil.ID(request, "id"), UpdateInput{
		Title:    input.Title,
		Synopsis: input.Synopsis,
		CoverURL: input.CoverURL,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, novel)
}

/*
POST /api/v1/novels/{id}/publish.

Description: Transitions a draft or hidden novel into the published state.

Response:
  - 200: Novel: The published entity
  - 422: ErrUnprocessable: Illegal lifecycle transition
*/
func (handler *Handler) publish(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, StatePublished)
}

/*
POST /api/v1/novels/{id}/hide.

Description: Withdraws a published novel from public listing.

Response:
  - 200: Novel: The hidden entity
  - 403: ErrForbidden: Guard denied (not hideable from the current state)
*/
func (handler *Handler) hide(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, StateHidden)
}

/*
POST /api/v1/novels/{id}/archive.

Description: Permanently archives a novel. Terminal — archived novels are
read-only for everyone.

Response:
  - 200: Novel: The archived entity
*/
func (handler *Handler) archive(writer http.ResponseWriter, request *http.Request) {
	handler.transition(writer, request, StateArchived)
}

func (handler *Handler) transition(writer http.ResponseWriter, request *http.Request, target State) {
	novel, err := handler.service.Transition(request.Context(), requestutil.ID(request, "id"), target)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, novel)
}

// # Chapter Endpoints

// createChapterRequest defines the expected JSON payload for a new chapter.
type createChapterRequest struct {
	Number  float64 `json:"number"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Publish bool    `json:"publish"`
}

/*
POST /api/v1/novels/{id}/chapters.

Description: Appends a chapter to the novel. Guarded by novel.canEdit.

Request:
  - Body: createChapterRequest (Number, Title, Content, Publish)

Response:
  - 201: Chapter: The created chapter
  - 409: ErrConflict: Duplicate chapter number
*/
func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	var input createChapterRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	chapter, err := handler.service.CreateChapter(request.Context(), requestutil.ID(request, "id"), ChapterInput{
		Number:  input.Number,
		Title:   input.Title,
		Content: input.Content,
		Publish: input.Publish,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

/*
DELETE /api/v1/novels/{id}/chapters/{chapterID}.

Description: Removes a chapter. Guarded by novel.canEdit.

Response:
  - 204: No Content
  - 404: ErrNotFound: Chapter does not exist
*/
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteChapter(request.Context(), requestutil.ID(request, "chapterID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Internal Helpers

// evaluate runs a bound policy expression against the current request,
// resolving runtime arguments from the chi route context.
func (handler *Handler) evaluate(request *http.Request, expr authz.Expr) bool {
	principal := requestutil.Principal(request)

	args := authz.Args{}
	if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
		for i, key := range routeContext.URLParams.Keys {
			args[key] = routeContext.URLParams.Values[i]
		}
	}

	return handler.engine.Evaluate(request.Context(), expr, principal, args)
}

// evaluateByIdentifier is evaluate with the "id" argument forced to the
// given value, for routes whose parameter may be a slug.
func (handler *Handler) evaluateByIdentifier(request *http.Request, expr authz.Expr, identifier string) bool {
	if !isUUID(identifier) {
		// Guards key on UUIDs; slug reads resolve through the public path.
		return false
	}

	principal := requestutil.Principal(request)
	return handler.engine.Evaluate(request.Context(), expr, principal, authz.Args{"id": identifier})
}
