// Copyright (c) 2026 MindMeld. All rights reserved.

package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindmeld/server/internal/games"
	"github.com/mindmeld/server/internal/platform/validate"
	"github.com/mindmeld/server/internal/training/session"
	"github.com/mindmeld/server/pkg/slice"
)

// Service computes the analytics aggregates for one user at a time.
type Service struct {
	catalog *games.Catalog
	history Repository
	logger  *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(catalog *games.Catalog, history Repository, logger *slog.Logger) *Service {
	return &Service{
		catalog: catalog,
		history: history,
		logger:  logger.With(slog.String("service", "analytics")),
	}
}

/*
Dashboard computes every overview aggregate within the requested window.

Parameters:
  - context: context.Context
  - userID: string
  - windowDays: int (0 selects the default window)

Returns:
  - *Dashboard: Trend, domain performance, weekly rollup, percentile estimate
  - error: Retrieval failures
*/
func (service *Service) Dashboard(context context.Context, userID string, windowDays int) (*Dashboard, error) {
	days := ClampWindowDays(windowDays)
	now := time.Now()

	sessions, err := service.history.ListSince(context, userID, now.AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("analytics_dashboard_failed: %w", err)
	}

	return &Dashboard{
		WindowDays:        days,
		TotalSessions:     len(sessions),
		Trend:             ComputeTrend(sessions),
		Domains:           DomainPerformance(sessions),
		Weekly:            WeeklyRollup(sessions, now),
		AveragePercentile: PercentileEstimate(sessions),
	}, nil
}

/*
Performance returns the chartable per-game series within the window.

Parameters:
  - context: context.Context
  - userID: string
  - gameID: string (empty includes every game)
  - windowDays: int (0 selects the default window)

Returns:
  - []GameSeries: One series per game with recorded sessions, points oldest first
  - error: Validation or retrieval failures
*/
func (service *Service) Performance(context context.Context, userID, gameID string, windowDays int) ([]GameSeries, error) {
	if gameID != "" && !service.catalog.Exists(gameID) {
		return nil, validate.RequiredError("game_id", "is not a known game")
	}

	days := ClampWindowDays(windowDays)

	sessions, err := service.history.ListSince(context, userID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("analytics_performance_failed: %w", err)
	}

	if gameID != "" {
		sessions = slice.Filter(sessions, func(record session.Session) bool {
			return record.GameID == gameID
		})
	}

	return groupSeries(sessions), nil
}

/*
Export returns the user's full session history, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []session.Session: Entire history
  - error: Retrieval failures
*/
func (service *Service) Export(context context.Context, userID string) ([]session.Session, error) {
	sessions, err := service.history.ListSince(context, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("analytics_export_failed: %w", err)
	}

	service.logger.InfoContext(context, "history_exported",
		slog.String("user_id", userID),
		slog.Int("sessions", len(sessions)),
	)

	return sessions, nil
}

// # Aggregation Functions
//
// Each function takes sessions ordered newest first, as the repository
// returns them, and never mutates its input.

/*
ComputeTrend compares the mean score of the latest sessions against the
mean of the sessions immediately before them.

Description: The comparison covers up to [TrendWindow] sessions per side.
A relative change above +[TrendThresholdPercent]% is improving, below the
negative threshold declining, anything else stable. With fewer than two
sessions there is nothing to compare and the trend is stable at 0%.
*/
func ComputeTrend(sessions []session.Session) Trend {
	if len(sessions) < 2 {
		return Trend{Direction: TrendStable}
	}

	// With a short history the whole of it would fall inside the recent
	// window, so split it in half instead
	recentEnd := TrendWindow
	if recentEnd >= len(sessions) {
		recentEnd = len(sessions) / 2
	}
	previousEnd := recentEnd + TrendWindow
	if previousEnd > len(sessions) {
		previousEnd = len(sessions)
	}

	recent := meanScore(sessions[:recentEnd])
	previous := meanScore(sessions[recentEnd:previousEnd])

	trend := Trend{
		Direction:       TrendStable,
		RecentAverage:   recent,
		PreviousAverage: previous,
	}

	if previous == 0 {
		return trend
	}

	trend.ChangePercent = (recent - previous) / previous * 100
	switch {
	case trend.ChangePercent > TrendThresholdPercent:
		trend.Direction = TrendImproving
	case trend.ChangePercent < -TrendThresholdPercent:
		trend.Direction = TrendDeclining
	}

	return trend
}

// DomainPerformance summarizes the sessions of each cognitive domain.
// Domains without sessions are omitted; the result follows the catalog's
// domain order.
func DomainPerformance(sessions []session.Session) []DomainStats {
	var stats []DomainStats

	for _, domain := range games.Domains() {
		matching := slice.Filter(sessions, func(record session.Session) bool {
			return record.Domain == string(domain)
		})
		if len(matching) == 0 {
			continue
		}

		entry := DomainStats{
			Domain:       string(domain),
			Sessions:     len(matching),
			AverageScore: meanScore(matching),
		}
		for _, record := range matching {
			entry.AverageAccuracy += record.Accuracy
			if record.Score > entry.BestScore {
				entry.BestScore = record.Score
			}
		}
		entry.AverageAccuracy /= float64(len(matching))

		stats = append(stats, entry)
	}

	return stats
}

// WeeklyRollup summarizes the trailing seven days of activity relative to now.
func WeeklyRollup(sessions []session.Session, now time.Time) WeeklySummary {
	cutoff := now.AddDate(0, 0, -7)

	recent := slice.Filter(sessions, func(record session.Session) bool {
		return record.CreatedAt.After(cutoff)
	})
	if len(recent) == 0 {
		return WeeklySummary{}
	}

	played := map[string]struct{}{}
	summary := WeeklySummary{
		Sessions:     len(recent),
		AverageScore: meanScore(recent),
	}
	for _, record := range recent {
		summary.TotalDurationSeconds += record.DurationSeconds
		played[record.GameID] = struct{}{}
	}
	summary.DistinctGames = len(played)

	return summary
}

// PercentileEstimate averages the stored per-session percentile figures.
// The per-session value is itself an estimate, so this is a rough standing
// indicator rather than a calibrated statistic.
func PercentileEstimate(sessions []session.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}

	total := slice.Reduce(sessions, 0, func(sum int, record session.Session) int {
		return sum + record.Percentile
	})

	return float64(total) / float64(len(sessions))
}

// # Helpers

func meanScore(sessions []session.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}

	total := slice.Reduce(sessions, 0.0, func(sum float64, record session.Session) float64 {
		return sum + record.Score
	})

	return total / float64(len(sessions))
}

// groupSeries buckets sessions by game, reversing each bucket so the chart
// points run oldest first.
func groupSeries(sessions []session.Session) []GameSeries {
	buckets := map[string][]PerformancePoint{}
	var order []string

	// Input is newest first; prepend to end up oldest first per game
	for _, record := range sessions {
		if _, seen := buckets[record.GameID]; !seen {
			order = append(order, record.GameID)
		}
		point := PerformancePoint{
			Score:      record.Score,
			Accuracy:   record.Accuracy,
			Percentile: record.Percentile,
			RecordedAt: record.CreatedAt,
		}
		buckets[record.GameID] = append([]PerformancePoint{point}, buckets[record.GameID]...)
	}

	series := make([]GameSeries, 0, len(order))
	for _, gameID := range order {
		series = append(series, GameSeries{
			GameID:   gameID,
			Sessions: len(buckets[gameID]),
			Points:   buckets[gameID],
		})
	}

	return series
}
