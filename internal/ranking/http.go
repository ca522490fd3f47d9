// Copyright (c) 2026 Inkora. All rights reserved.

package ranking

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkora/inkora/internal/platform/authz"
	"github.com/inkora/inkora/internal/platform/middleware"
	"github.com/inkora/inkora/internal/platform/respond"
)

// # HTTP Transport Layer

// Handler implements the HTTP layer for rankings.
type Handler struct {
	service *Service
	engine  *authz.Engine
}

// NewHandler constructs a new ranking [Handler].
func NewHandler(service *Service, engine *authz.Engine) *Handler {
	return &Handler{service: service, engine: engine}
}

// Routes returns the ranking router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	adminOnly := middleware.RequirePolicy(handler.engine, authz.HasRole(authz.RoleAdmin))

	router.Get("/top", handler.topNovels)
	router.With(adminOnly).Delete("/cache", handler.invalidate)

	return router
}

/*
GET /api/v1/rankings/top.

Description: Returns the most-voted published novels, served from the Redis
cache when fresh.

Request:
  - size: int (leaderboard length, default 20, max 100)

Response:
  - 200: []Novel: Ranked novels, highest votes first
*/
func (handler *Handler) topNovels(writer http.ResponseWriter, request *http.Request) {
	size, _ := strconv.Atoi(request.URL.Query().Get("size"))

	novels, err := handler.service.TopNovels(request.Context(), size)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, novels)
}

/*
DELETE /api/v1/rankings/cache.

Description: Drops every cached leaderboard so the next read recomputes from
Postgres. Admin only; used after bulk moderation actions.

Response:
  - 204: No Content
  - 403: ErrForbidden: Caller is not an admin
*/
func (handler *Handler) invalidate(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Invalidate(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
