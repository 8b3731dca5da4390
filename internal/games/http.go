// Copyright (c) 2026 MindMeld. All rights reserved.

package games

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindmeld/server/internal/platform/apperr"
	requestutil "github.com/mindmeld/server/internal/platform/request"
	"github.com/mindmeld/server/internal/platform/respond"
	"github.com/mindmeld/server/internal/platform/validate"
)

// Handler implements the game catalog HTTP endpoints.
//
// The catalog is public: clients need it before a user signs in.
type Handler struct {
	catalog *Catalog
}

// NewHandler constructs a new [Handler] serving the given catalog.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Routes returns a [chi.Router] configured with catalog routes.
//
// # Endpoints
//   - GET /             : Lists the catalog, optionally filtered by domain.
//   - GET /{id}         : Returns a single game.
//   - GET /{id}/config  : Returns a difficulty-scaled parameter set.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)
	router.Get("/{id}/config", handler.config)

	return router
}

/*
List returns the game catalog.

GET /api/v1/games?domain=

Description: Returns all games, or only those training the requested domain.

Response:
  - 200: []Game: Catalog entries
  - 400: ErrValidation: Unknown domain filter
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	domain := request.URL.Query().Get("domain")

	if domain == "" {
		respond.OK(writer, handler.catalog.All())
		return
	}

	if !ValidDomain(domain) {
		respond.Error(writer, request, validate.RequiredError("domain", "must be one of: working_memory, attention, processing_speed, problem_solving"))
		return
	}

	respond.OK(writer, handler.catalog.ByDomain(Domain(domain)))
}

/*
Get returns a single game by ID.

GET /api/v1/games/{id}

Response:
  - 200: Game: Catalog entry
  - 404: ErrNotFound: Unknown game ID
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	game, ok := handler.catalog.ByID(id)
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Game"))
		return
	}

	respond.OK(writer, game)
}

/*
Config returns the difficulty-scaled parameter set for a game.

GET /api/v1/games/{id}/config?difficulty=

Description: Difficulty defaults to easy when not provided.

Response:
  - 200: Config: Parameter set
  - 400: ErrValidation: Unknown difficulty
  - 404: ErrNotFound: Unknown game ID
*/
func (handler *Handler) config(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	difficulty := request.URL.Query().Get("difficulty")
	if difficulty == "" {
		difficulty = string(DifficultyEasy)
	}

	if !ValidDifficulty(difficulty) {
		respond.Error(writer, request, validate.RequiredError("difficulty", "must be one of: easy, medium, hard"))
		return
	}

	config, ok := handler.catalog.GenerateConfig(id, Difficulty(difficulty))
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Game"))
		return
	}

	respond.OK(writer, config)
}
