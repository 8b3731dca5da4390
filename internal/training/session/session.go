// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package session implements the training session recording pipeline.

Recording a session is the central write path of the platform: it validates
the reported result, estimates a percentile, flags anomalous results, awards
XP and badges, advances the user's streak and level, and enriches the stored
record with inference output.

# Architecture

  - Service: Orchestrates the pipeline. All progression rules live here.
  - Repository: Postgres persistence for sessions, progression, badges.
  - Inference: Best-effort enrichment through the [ml.Client] boundary;
    inference failures never fail a recording.
*/
package session

import (
	"time"

	"github.com/mindmeld/server/internal/users/profile"
)

// # Domain Entities

// Session represents one completed training session.
type Session struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	GameID             string         `json:"game_id"`
	Domain             string         `json:"domain"`
	Difficulty         string         `json:"difficulty"`
	Score              float64        `json:"score"`
	Accuracy           float64        `json:"accuracy"`
	ReactionTimeMs     float64        `json:"reaction_time_ms"`
	DurationSeconds    int            `json:"duration_seconds"`
	XPEarned           int            `json:"xp_earned"`
	Percentile         int            `json:"percentile"`
	Flagged            bool           `json:"flagged"`
	FlagReason         *string        `json:"flag_reason,omitempty"`
	Metrics            map[string]any `json:"metrics"`
	MLLabel            *string        `json:"ml_label,omitempty"`
	PredictedNextScore *float64       `json:"predicted_next_score,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// Progression is the per-user training state maintained by the recorder.
type Progression struct {
	XP                   int            `json:"xp"`
	Level                int            `json:"level"`
	CurrentStreak        int            `json:"current_streak"`
	BestStreak           int            `json:"best_streak"`
	LastSessionDate      *time.Time     `json:"last_session_date,omitempty"`
	TotalSessions        int            `json:"total_sessions"`
	TotalPlayTimeSeconds int            `json:"total_play_time_seconds"`
	AverageScore         float64        `json:"average_score"`
	GamesPlayed          map[string]int `json:"games_played"`
}

// # Scoring Rules

const (
	// BaseXPBonus is granted for completing any session.
	BaseXPBonus = 50

	// XPPerLevel is the XP span of one level, shared with the profile surface.
	XPPerLevel = profile.XPPerLevel

	// PercentileMin and PercentileMax bound the estimated percentile.
	PercentileMin = 5
	PercentileMax = 99

	// PercentileJitter is the half-width of the uniform percentile spread.
	PercentileJitter = 10
)

// BaseXP computes the session XP from the score: each full 10 points of
// score contributes 10 XP, plus the completion bonus.
func BaseXP(score float64) int {
	return int(score/10)*10 + BaseXPBonus
}

// LevelForXP computes the level implied by a total XP amount.
func LevelForXP(xp int) int {
	return xp/XPPerLevel + 1
}

// # Anomaly Rules

// AnomalyReason reports why a result is physiologically implausible, or an
// empty string when it is plausible.
//
// Two independent rules:
//   - Near-perfect accuracy with a sub-150ms mean reaction time.
//   - A perfect score delivered in under ten seconds.
func AnomalyReason(score, accuracy, reactionTimeMs float64, durationSeconds int) string {
	if accuracy >= 98 && reactionTimeMs > 0 && reactionTimeMs < 150 {
		return "near-perfect accuracy with implausible reaction time"
	}
	if score == 100 && durationSeconds < 10 {
		return "perfect score in under ten seconds"
	}
	return ""
}

// Anomalous reports whether a reported result is physiologically implausible.
func Anomalous(score, accuracy, reactionTimeMs float64, durationSeconds int) bool {
	return AnomalyReason(score, accuracy, reactionTimeMs, durationSeconds) != ""
}

// # Field Identifiers

const (
	FieldGameID         = "game_id"
	FieldDomain         = "domain"
	FieldDifficulty     = "difficulty"
	FieldScore          = "score"
	FieldAccuracy       = "accuracy"
	FieldReactionTimeMs = "reaction_time_ms"
	FieldDuration       = "duration_seconds"
)
