// Copyright (c) 2026 Inkora. All rights reserved.

package report

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

// Handler implements the HTTP layer for reporting and moderation.
type Handler struct {
	service *Service
	engine  *authz.Engine
}

// NewHandler constructs a new report [Handler].
func NewHandler(service *Service, engine *authz.Engine) *Handler {
	return &Handler{service: service, engine: engine}
}

// Routes returns the report router.
//
// Submission requires any authenticated account; the moderation queue and
// its actions are admin-only.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	authenticated := middleware.RequirePolicy(handler.engine, authz.Authenticated())
	adminOnly := middleware.RequirePolicy(handler.engine, authz.HasRole(authz.RoleAdmin))

	router.With(authenticated).Post("/", handler.submit)

	router.With(adminOnly).Get("/", handler.list)
	router.With(adminOnly).Post("/{id}/resolve", handler.resolve)
	router.With(adminOnly).Post("/{id}/dismiss", handler.dismiss)

	return router
}

// submitRequest defines the expected JSON payload for a new report.
type submitRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Type        string `json:"type"`
	Details     string `json:"details"`
}

/*
POST /api/v1/reports.

Description: Submits a report against a novel or a comment. The submission
runs the validation chain before anything is persisted.

Request:
  - Body: submitRequest (ContentType, ContentID, Type, Details)

Response:
  - 201: Report: The persisted report
  - 404: ErrNotFound: Target content does not exist
  - 400: ErrValidation: Unknown content type or invalid report type
  - 409: ErrConflict: Reporter already has an open report on this target
*/
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	reporterID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input submitRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldContentType, input.ContentType).
		Required(FieldContentID, input.ContentID).
		UUID(FieldContentID, input.ContentID).
		Required(FieldType, input.Type).
		MaxLen(FieldDetails, input.Details, 1000)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	report, err := handler.service.Submit(request.Context(), SubmitInput{
		ContentType: ContentType(input.ContentType),
		ContentID:   input.ContentID,
		ReporterID:  reporterID,
		Type:        Type(input.Type),
		Details:     input.Details,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, report)
}

/*
GET /api/v1/reports.

Description: Lists reports for the moderation queue, newest first. Admin
only.

Request:
  - status: string (open, resolved, dismissed; empty for all)
  - limit: int
  - page: int

Response:
  - 200: []Report: Paginated reports
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	status := Status(request.URL.Query().Get("status"))

	reports, total, err := handler.service.ListReports(request.Context(), status, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reports, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
POST /api/v1/reports/{id}/resolve.

Description: Closes a report as acted upon. Admin only.

Response:
  - 204: No Content
  - 404: ErrNotFound: Report missing or already closed
*/
func (handler *Handler) resolve(writer http.ResponseWriter, request *http.Request) {
	moderatorID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Resolve(request.Context(), requestutil.ID(request, "id"), moderatorID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/reports/{id}/dismiss.

Description: Closes a report as rejected. Admin only.

Response:
  - 204: No Content
  - 404: ErrNotFound: Report missing or already closed
*/
func (handler *Handler) dismiss(writer http.ResponseWriter, request *http.Request) {
	moderatorID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Dismiss(request.Context(), requestutil.ID(request, "id"), moderatorID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
