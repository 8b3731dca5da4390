// Copyright (c) 2026 MindMeld. All rights reserved.

package analytics

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindmeld/server/internal/platform/middleware"
	requestutil "github.com/mindmeld/server/internal/platform/request"
	"github.com/mindmeld/server/internal/platform/respond"
	"github.com/mindmeld/server/internal/platform/validate"
	"github.com/mindmeld/server/pkg/convert"
	"github.com/mindmeld/server/pkg/pointer"
)

// Handler implements the analytics HTTP endpoints.
type Handler struct {
	analyticsService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{analyticsService: service}
}

// Routes returns a [chi.Router] configured with analytics routes.
//
// # Endpoints
//   - GET /dashboard   : Aggregated overview for the user.
//   - GET /performance : Per-game score series.
//   - GET /export      : Full history download as JSON or CSV.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/dashboard", handler.dashboard)
	router.Get("/performance", handler.performance)
	router.Get("/export", handler.export)

	return router
}

/*
Dashboard returns the aggregated overview.

GET /api/v1/analytics/dashboard?days=

Response:
  - 200: Dashboard: Trend, domain performance, weekly rollup, percentile estimate
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	days := convert.ToIntD(request.URL.Query().Get("days"), WindowDaysDefault)

	dashboard, err := handler.analyticsService.Dashboard(request.Context(), userID, days)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, dashboard)
}

/*
Performance returns per-game score series for charting.

GET /api/v1/analytics/performance?game_id=&days=

Response:
  - 200: []GameSeries: One series per game, points oldest first
  - 400: ErrValidation: Unknown game filter
*/
func (handler *Handler) performance(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := request.URL.Query()
	gameID := query.Get("game_id")
	days := convert.ToIntD(query.Get("days"), WindowDaysDefault)

	series, err := handler.analyticsService.Performance(request.Context(), userID, gameID, days)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, series)
}

/*
Export downloads the user's full session history.

GET /api/v1/analytics/export?format=json|csv

Description: JSON reuses the standard envelope; CSV streams one row per
session as an attachment.

Response:
  - 200: Export payload in the requested format
  - 400: ErrValidation: Unsupported format
*/
func (handler *Handler) export(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	format := request.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		respond.Error(writer, request, validate.RequiredError("format", "must be one of: json, csv"))
		return
	}

	sessions, err := handler.analyticsService.Export(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if format == "json" {
		respond.OK(writer, sessions)
		return
	}

	writer.Header().Set("Content-Type", "text/csv; charset=utf-8")
	writer.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="sessions-%s.csv"`, time.Now().Format("2006-01-02")))

	csvWriter := csv.NewWriter(writer)
	_ = csvWriter.Write([]string{
		"id", "game_id", "domain", "difficulty", "score", "accuracy",
		"reaction_time_ms", "duration_seconds", "xp_earned", "percentile",
		"flagged", "ml_label", "predicted_next_score", "created_at",
	})

	for _, record := range sessions {
		_ = csvWriter.Write([]string{
			record.ID,
			record.GameID,
			record.Domain,
			record.Difficulty,
			strconv.FormatFloat(record.Score, 'f', 2, 64),
			strconv.FormatFloat(record.Accuracy, 'f', 2, 64),
			strconv.FormatFloat(record.ReactionTimeMs, 'f', 0, 64),
			strconv.Itoa(record.DurationSeconds),
			strconv.Itoa(record.XPEarned),
			strconv.Itoa(record.Percentile),
			strconv.FormatBool(record.Flagged),
			pointer.Val(record.MLLabel),
			formatOptionalFloat(record.PredictedNextScore),
			record.CreatedAt.Format(time.RFC3339),
		})
	}
	csvWriter.Flush()
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}
