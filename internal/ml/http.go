// Copyright (c) 2026 MindMeld. All rights reserved.

package ml

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mindmeld/server/internal/platform/middleware"
	requestutil "github.com/mindmeld/server/internal/platform/request"
	"github.com/mindmeld/server/internal/platform/respond"
	"github.com/mindmeld/server/internal/platform/validate"
)

// InsightsProvider assembles the combined insights view for one user from
// their stored training history.
type InsightsProvider interface {
	Insights(context context.Context, userID string) (*Insights, error)
}

// Handler proxies inference requests from authenticated clients.
//
// The inference deployment is never exposed publicly; this handler is the
// only path to it and pins the user_id to the authenticated caller.
type Handler struct {
	client   Client
	insights InsightsProvider
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(client Client, insights InsightsProvider) *Handler {
	return &Handler{client: client, insights: insights}
}

// Routes returns a [chi.Router] configured with inference proxy routes.
//
// # Endpoints
//   - POST /classify  : Skill classification.
//   - POST /recommend : Training focus suggestion.
//   - POST /predict   : Next-score estimate.
//   - GET  /insights  : Combined view over the caller's stored history.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/classify", handler.classify)
	router.Post("/recommend", handler.recommend)
	router.Post("/predict", handler.predict)
	router.Get("/insights", handler.getInsights)

	return router
}

/*
Classify proxies a skill classification request.

POST /api/v1/ml/classify

Response:
  - 200: Classification: Skill label with confidence
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) classify(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ClassifyInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	input.UserID = userID

	result, err := handler.client.Classify(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Recommend proxies a training focus request.

POST /api/v1/ml/recommend

Response:
  - 200: Recommendation: Focus domain and difficulty
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) recommend(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input RecommendInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	input.UserID = userID

	result, err := handler.client.Recommend(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
Predict proxies a next-score estimate request.

POST /api/v1/ml/predict

Response:
  - 200: Prediction: Estimated score with confidence
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) predict(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input PredictInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	input.UserID = userID

	result, err := handler.client.Predict(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GetInsights returns the combined insights derived from stored history.

GET /api/v1/ml/insights

Description: Unlike the proxy endpoints, the inputs here come from the
caller's persisted sessions rather than the request body.

Response:
  - 200: Insights: Classification plus training recommendation
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getInsights(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.insights.Insights(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
