// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package analytics aggregates a user's session history into dashboard figures.

Every aggregate is a stateless function over the stored sessions within a
caller-chosen window. Nothing in this package writes to the database.

# Architecture

  - Service: Loads the window and delegates to the pure aggregation functions.
  - Repository: Read-only access to the session history.
*/
package analytics

import (
	"time"
)

// # Window Rules

const (
	// WindowDaysDefault applies when the caller does not pick a window.
	WindowDaysDefault = 30

	// WindowDaysMin and WindowDaysMax bound the requested window.
	WindowDaysMin = 1
	WindowDaysMax = 365
)

// ClampWindowDays normalizes a requested window to the supported range.
func ClampWindowDays(days int) int {
	if days <= 0 {
		return WindowDaysDefault
	}
	if days < WindowDaysMin {
		return WindowDaysMin
	}
	if days > WindowDaysMax {
		return WindowDaysMax
	}
	return days
}

// # Trend Rules

const (
	// TrendWindow is how many recent sessions each side of the trend
	// comparison covers.
	TrendWindow = 5

	// TrendThresholdPercent is the relative change, in percent, beyond
	// which a trend stops being stable.
	TrendThresholdPercent = 5.0
)

// Trend direction labels.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Trend compares the latest sessions against the ones before them.
type Trend struct {
	Direction       string  `json:"direction"`
	ChangePercent   float64 `json:"change_percent"`
	RecentAverage   float64 `json:"recent_average"`
	PreviousAverage float64 `json:"previous_average"`
}

// # Aggregate Shapes

// DomainStats summarizes the user's results within one cognitive domain.
type DomainStats struct {
	Domain          string  `json:"domain"`
	Sessions        int     `json:"sessions"`
	AverageScore    float64 `json:"average_score"`
	AverageAccuracy float64 `json:"average_accuracy"`
	BestScore       float64 `json:"best_score"`
}

// WeeklySummary rolls up the trailing seven days of activity.
type WeeklySummary struct {
	Sessions             int     `json:"sessions"`
	AverageScore         float64 `json:"average_score"`
	TotalDurationSeconds int     `json:"total_duration_seconds"`
	DistinctGames        int     `json:"distinct_games"`
}

// Dashboard bundles every aggregate the overview page renders.
type Dashboard struct {
	WindowDays        int           `json:"window_days"`
	TotalSessions     int           `json:"total_sessions"`
	Trend             Trend         `json:"trend"`
	Domains           []DomainStats `json:"domains"`
	Weekly            WeeklySummary `json:"weekly"`
	AveragePercentile float64       `json:"average_percentile"`
}

// PerformancePoint is one session reduced to its chartable figures.
type PerformancePoint struct {
	Score      float64   `json:"score"`
	Accuracy   float64   `json:"accuracy"`
	Percentile int       `json:"percentile"`
	RecordedAt time.Time `json:"recorded_at"`
}

// GameSeries is the per-game performance series, oldest point first.
type GameSeries struct {
	GameID   string             `json:"game_id"`
	Sessions int                `json:"sessions"`
	Points   []PerformancePoint `json:"points"`
}
