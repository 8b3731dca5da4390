// Copyright (c) 2026 MindMeld. All rights reserved.

/*
Package profile implements the user-facing account surface.

It exposes the training profile (progression counters maintained by the
session recorder), the achievement wall, and product feedback collection.

# Architecture

Progression fields are read-only here: they are mutated exclusively by the
session recording pipeline. This package only reads them and allows edits
to the small set of user-editable identity fields.
*/
package profile

import "time"

// # Domain Entities

// Profile represents a member's account together with their training progression.
type Profile struct {
	ID                   string         `json:"id"`
	Username             string         `json:"username"`
	Email                string         `json:"email"`
	Age                  int            `json:"age"`
	Profession           *string        `json:"profession,omitempty"`
	XP                   int            `json:"xp"`
	XPToNextLevel        int            `json:"xp_to_next_level"`
	Level                int            `json:"level"`
	CurrentStreak        int            `json:"current_streak"`
	BestStreak           int            `json:"best_streak"`
	LastSessionDate      *time.Time     `json:"last_session_date,omitempty"`
	LastActiveDate       *time.Time     `json:"last_active_date,omitempty"`
	TotalSessions        int            `json:"total_sessions"`
	TotalPlayTimeSeconds int            `json:"total_play_time_seconds"`
	AverageScore         float64        `json:"average_score"`
	GamesPlayed          map[string]int `json:"games_played"`
	IsVerified           bool           `json:"is_verified"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// XPPerLevel mirrors the recorder's level span for the xp-to-next figure.
const XPPerLevel = 1000

// Badge represents an achievement earned by a user.
type Badge struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Slug      string    `json:"slug"`
	AwardedAt time.Time `json:"awarded_at"`
}

// Feedback represents a product feedback submission. Rating is optional.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Feedback categories accepted by the API.
const (
	FeedbackCategoryBug     = "bug"
	FeedbackCategoryFeature = "feature"
	FeedbackCategoryGeneral = "general"
)

// Feedback message length bounds.
const (
	FeedbackMessageMinLen = 5
	FeedbackMessageMaxLen = 2000
)

// # Achievement Catalog

// BadgeDefinition describes an achievement that can be earned.
type BadgeDefinition struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	XPBonus     int    `json:"xp_bonus"`
}

// BadgeXPBonus is the XP awarded alongside every badge.
const BadgeXPBonus = 100

// Badge slugs. These are the stable identifiers persisted per user.
const (
	BadgeFirstSession = "first-session"
	BadgePerfectScore = "perfect-score"
	BadgeSessions10   = "sessions-10"
	BadgeSessions25   = "sessions-25"
	BadgeSessions50   = "sessions-50"
	BadgeSessions100  = "sessions-100"
	BadgeStreak7      = "streak-7"
	BadgeStreak14     = "streak-14"
	BadgeStreak30     = "streak-30"
)

// Catalog returns every badge the platform can award, in display order.
func Catalog() []BadgeDefinition {
	return []BadgeDefinition{
		{Slug: BadgeFirstSession, Name: "First Steps", Description: "Complete your first training session", XPBonus: BadgeXPBonus},
		{Slug: BadgePerfectScore, Name: "Perfectionist", Description: "Score a flawless 100 in any game", XPBonus: BadgeXPBonus},
		{Slug: BadgeSessions10, Name: "Warming Up", Description: "Complete 10 training sessions", XPBonus: BadgeXPBonus},
		{Slug: BadgeSessions25, Name: "Regular", Description: "Complete 25 training sessions", XPBonus: BadgeXPBonus},
		{Slug: BadgeSessions50, Name: "Dedicated", Description: "Complete 50 training sessions", XPBonus: BadgeXPBonus},
		{Slug: BadgeSessions100, Name: "Centurion", Description: "Complete 100 training sessions", XPBonus: BadgeXPBonus},
		{Slug: BadgeStreak7, Name: "One Week Strong", Description: "Train 7 days in a row", XPBonus: BadgeXPBonus},
		{Slug: BadgeStreak14, Name: "Fortnight Focus", Description: "Train 14 days in a row", XPBonus: BadgeXPBonus},
		{Slug: BadgeStreak30, Name: "Iron Mind", Description: "Train 30 days in a row", XPBonus: BadgeXPBonus},
	}
}

// Definition resolves a badge slug to its catalog entry.
func Definition(slug string) (BadgeDefinition, bool) {
	for _, definition := range Catalog() {
		if definition.Slug == slug {
			return definition, true
		}
	}
	return BadgeDefinition{}, false
}

// # Field Identifiers

const (
	FieldUsername   = "username"
	FieldAge        = "age"
	FieldProfession = "profession"
	FieldCategory   = "category"
	FieldMessage    = "message"
	FieldRating     = "rating"
)
