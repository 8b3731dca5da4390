// Copyright (c) 2026 MindMeld. All rights reserved.

package leaderboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindmeld/server/internal/platform/middleware"
	requestutil "github.com/mindmeld/server/internal/platform/request"
	"github.com/mindmeld/server/internal/platform/respond"
	"github.com/mindmeld/server/pkg/convert"
)

// Handler implements the leaderboard HTTP endpoint.
type Handler struct {
	leaderboardService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{leaderboardService: service}
}

// Routes returns a [chi.Router] configured with the leaderboard route.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.get)

	return router
}

/*
Get returns the ranked board for a timeframe.

GET /api/v1/users/leaderboard?timeframe=daily|weekly|monthly&limit=

Response:
  - 200: Board: Ranked entries, caller flagged, true rank when off-page
  - 400: ErrValidation: Unknown timeframe
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := request.URL.Query()
	timeframe := query.Get("timeframe")
	if timeframe == "" {
		timeframe = string(TimeframeWeekly)
	}
	limit := convert.ToIntD(query.Get("limit"), DefaultLimit)

	board, err := handler.leaderboardService.Get(request.Context(), userID, timeframe, limit)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, board)
}
