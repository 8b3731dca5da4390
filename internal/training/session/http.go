// Copyright (c) 2026 MindMeld. All rights reserved.

package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindmeld/server/internal/platform/middleware"
	requestutil "github.com/mindmeld/server/internal/platform/request"
	"github.com/mindmeld/server/internal/platform/respond"
	"github.com/mindmeld/server/internal/platform/validate"
	"github.com/mindmeld/server/pkg/pagination"
)

// Handler implements the session HTTP endpoints.
type Handler struct {
	sessionService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{sessionService: service}
}

// Routes returns a [chi.Router] configured with session routes.
//
// # Endpoints
//   - POST /      : Records a completed session.
//   - GET  /      : Lists the user's sessions.
//   - GET  /{id}  : Returns a single session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.record)
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	return router
}

// # Request Payloads

type recordRequest struct {
	GameID          string         `json:"game_id"`
	Domain          string         `json:"domain"`
	Difficulty      string         `json:"difficulty"`
	Score           float64        `json:"score"`
	Accuracy        float64        `json:"accuracy"`
	ReactionTimeMs  float64        `json:"reaction_time_ms"`
	DurationSeconds int            `json:"duration_seconds"`
	Metrics         map[string]any `json:"metrics"`
}

/*
Record persists a completed training session.

POST /api/v1/sessions

Description: Validates the reported result, stores it, and returns the
updated progression including any newly earned badges.

Request:
  - Body: recordRequest (GameID, Domain, Difficulty, Score, Accuracy, ReactionTimeMs, DurationSeconds, Metrics)

Response:
  - 201: RecordResult: Session, progression, new badges, level-up flag
  - 400: ErrValidation: Every violated field listed
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) record(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input recordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.sessionService.Record(request.Context(), userID, RecordInput{
		GameID:          input.GameID,
		Domain:          input.Domain,
		Difficulty:      input.Difficulty,
		Score:           input.Score,
		Accuracy:        input.Accuracy,
		ReactionTimeMs:  input.ReactionTimeMs,
		DurationSeconds: input.DurationSeconds,
		Metrics:         input.Metrics,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, result)
}

/*
List returns the user's session history.

GET /api/v1/sessions?game_id=&page=&limit=

Response:
  - 200: []Session: Page of sessions with pagination metadata
  - 400: ErrValidation: Unknown game filter
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	gameID := request.URL.Query().Get("game_id")
	params := pagination.FromRequest(request)

	sessions, meta, err := handler.sessionService.List(request.Context(), userID, gameID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, sessions, meta)
}

/*
Get returns a single session owned by the user.

GET /api/v1/sessions/{id}

Response:
  - 200: Session: Hydrated entity
  - 404: ErrNotFound: Unknown or foreign session
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := requestutil.Param(request, "id")

	session, err := handler.sessionService.Get(request.Context(), userID, sessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}
