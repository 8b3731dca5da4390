// Copyright (c) 2026 MindMeld. All rights reserved.

package recommendation

import (
	"context"
	"time"
)

// # Notice Data Access

// Repository defines the persistence contract for notices.
type Repository interface {

	/*
		Create persists a new notice.

		Parameters:
		  - context: context.Context
		  - recommendation: *Recommendation

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, recommendation *Recommendation) error

	/*
		ListActive returns the user's unexpired, unarchived notices,
		newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - unreadOnly: bool

		Returns:
		  - []Recommendation: Active notices
		  - error: Database retrieval failures
	*/
	ListActive(context context.Context, userID string, unreadOnly bool) ([]Recommendation, error)

	/*
		ExistsActive reports whether the user already has an active notice
		of the given type.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - noticeType: string

		Returns:
		  - bool: True when an active notice of that type exists
		  - error: Database retrieval failures
	*/
	ExistsActive(context context.Context, userID, noticeType string) (bool, error)

	/*
		MarkRead marks a notice as read, scoped to its owner.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - recommendationID: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	MarkRead(context context.Context, userID, recommendationID string) error

	/*
		DeleteExpired removes every notice past its expiry.

		Parameters:
		  - context: context.Context

		Returns:
		  - int: Rows removed
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) (int, error)
}

// # Signal Access

// SessionSignal is a recorded session reduced to what the rules consume.
type SessionSignal struct {
	GameID     string
	Domain     string
	Score      float64
	Accuracy   float64
	RecordedAt time.Time
}

// SignalRepository is the read-only view of training activity the rule set
// evaluates against.
type SignalRepository interface {

	/*
		LatestSessions returns the user's most recent sessions, newest
		first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit: int

		Returns:
		  - []SessionSignal: Recent sessions, newest first
		  - error: Database retrieval failures
	*/
	LatestSessions(context context.Context, userID string, limit int) ([]SessionSignal, error)

	/*
		CurrentStreak returns the user's consecutive-day streak.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int: Streak length in days
		  - error: Database retrieval failures
	*/
	CurrentStreak(context context.Context, userID string) (int, error)
}
