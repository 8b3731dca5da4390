// Copyright (c) 2026 MindMeld. All rights reserved.

package recommendation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindmeld/server/internal/platform/middleware"
	requestutil "github.com/mindmeld/server/internal/platform/request"
	"github.com/mindmeld/server/internal/platform/respond"
	"github.com/mindmeld/server/pkg/convert"
)

// Handler implements the recommendation HTTP endpoints.
type Handler struct {
	recommendationService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{recommendationService: service}
}

// Routes returns a [chi.Router] configured with recommendation routes.
//
// # Endpoints
//   - GET   /           : Lists the user's active notices.
//   - PATCH /{id}/read  : Marks a notice as read.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Patch("/{id}/read", handler.markRead)

	return router
}

/*
List returns the user's active notices.

GET /api/v1/users/recommendations?unread=

Response:
  - 200: []Recommendation: Active notices, newest first
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	unreadOnly := convert.ToBool(request.URL.Query().Get("unread"))

	notices, err := handler.recommendationService.List(request.Context(), userID, unreadOnly)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, notices)
}

/*
MarkRead marks one notice as read.

PATCH /api/v1/users/recommendations/{id}/read

Response:
  - 204: Notice marked read
  - 404: ErrNotFound: Unknown or foreign notice
*/
func (handler *Handler) markRead(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	recommendationID := requestutil.Param(request, "id")

	if err := handler.recommendationService.MarkRead(request.Context(), userID, recommendationID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
