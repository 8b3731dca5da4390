// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package recommendation turns training signals into user-facing notices.

Notices come from two sources: a fixed rule set evaluated after every
recorded session, and the inference service's recommendation output. Both
produce the same record shape; a notice only ever changes by being marked
read, and disappears through its expiry timestamp.

# Architecture

  - Service: Rule evaluation and notice lifecycle.
  - Repository: Postgres persistence for notices.
  - SignalRepository: Read-only access to the training signals rules consume.
*/
package recommendation

import (
	"time"
)

// # Notice Records

// Recommendation is one notice shown to a user.
type Recommendation struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Priority   string         `json:"priority"`
	Category   string         `json:"category"`
	Data       map[string]any `json:"data,omitempty"`
	IsRead     bool           `json:"is_read"`
	IsArchived bool           `json:"is_archived"`
	ExpiresAt  time.Time      `json:"expires_at"`
	CreatedAt  time.Time      `json:"created_at"`
}

// TTL is how long a notice stays visible before expiring.
const TTL = 30 * 24 * time.Hour

// Notice types. One active notice per type per user at a time.
const (
	TypePractice   = "practice"
	TypeStreak     = "streak"
	TypeDifficulty = "difficulty"
	TypeVariety    = "variety"
	TypeInsight    = "insight"
)

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Categories group notices for the client's filter tabs.
const (
	CategoryTraining = "training"
	CategoryHabit    = "habit"
	CategoryInsight  = "insight"
)

// # Rule Thresholds

const (
	// LowAccuracyThreshold triggers a practice suggestion.
	LowAccuracyThreshold = 50.0

	// StreakEncouragementAt is the streak length worth celebrating.
	StreakEncouragementAt = 3

	// DecliningRunLength is how many consecutive falling scores in one
	// game suggest stepping the difficulty down.
	DecliningRunLength = 3

	// WeeklyVarietyThreshold is the weekly session count past which the
	// user is nudged to vary their games.
	WeeklyVarietyThreshold = 10
)
