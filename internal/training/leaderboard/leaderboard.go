// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package leaderboard ranks users by their session results within a timeframe.

The board is a read-only aggregation across every user's sessions. Ranks are
recomputed on demand; a short-lived cache keeps repeated reads off the
database since all callers of a timeframe share the same pre-annotation board.

# Architecture

  - Service: Orchestrates cache, aggregation, and per-caller annotation.
  - Repository: Postgres aggregation across all users.
  - CacheRepository: Redis store for the shared, un-annotated board.
*/
package leaderboard

import (
	"time"
)

// # Timeframes

// Timeframe selects the aggregation window of a board.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// ValidTimeframe reports whether the candidate names a known timeframe.
func ValidTimeframe(candidate string) bool {
	switch Timeframe(candidate) {
	case TimeframeDaily, TimeframeWeekly, TimeframeMonthly:
		return true
	}
	return false
}

// WindowStart returns the inclusive lower bound of a timeframe's window.
//
// Daily starts at the local midnight, weekly covers the trailing seven
// 24-hour periods, and monthly starts at the first of the current month.
func WindowStart(timeframe Timeframe, now time.Time) time.Time {
	switch timeframe {
	case TimeframeDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case TimeframeMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return now.AddDate(0, 0, -7)
	}
}

// # Result Limits

const (
	// DefaultLimit applies when the caller does not pick a result size.
	DefaultLimit = 10

	// MaxLimit bounds the board size regardless of the request.
	MaxLimit = 100
)

// ClampLimit normalizes a requested result size to the supported range.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// # Board Shapes

// XPFactor converts a mean score into the displayed XP estimate. The figure
// is a rough proxy kept for display continuity, not a progression value.
const XPFactor = 0.1

// Entry is one user's standing on a board.
type Entry struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	TotalSessions int     `json:"total_sessions"`
	MeanScore     float64 `json:"mean_score"`
	BestScore     float64 `json:"best_score"`
	TotalXP       float64 `json:"total_xp"`
	IsCurrentUser bool    `json:"is_current_user"`
}

// Board is the annotated result returned to one caller.
type Board struct {
	Timeframe       Timeframe `json:"timeframe"`
	Entries         []Entry   `json:"entries"`
	CurrentUserRank *int      `json:"current_user_rank,omitempty"`
	GeneratedAt     time.Time `json:"generated_at"`
}
