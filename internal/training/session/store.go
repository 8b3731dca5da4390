// Copyright (c) 2026 MindMeld. All rights reserved.

package session

import (
	"context"

	"github.com/mindmeld/server/pkg/pagination"
)

// # Session Data Access

// Repository defines the data access contract for training sessions.
type Repository interface {

	/*
		Create persists a completed session.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByID returns the session with the given ID, scoped to its owner.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - sessionID: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByID(context context.Context, userID, sessionID string) (*Session, error)

	/*
		ListByUser returns a page of the user's sessions, newest first,
		optionally filtered by game.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - gameID: string (empty for no filter)
		  - params: pagination.Params

		Returns:
		  - []Session: Page of sessions
		  - int: Total matching count
		  - error: Database retrieval failures
	*/
	ListByUser(context context.Context, userID, gameID string, params pagination.Params) ([]Session, int, error)

	/*
		RecentScores returns the user's most recent scores for a game,
		newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - gameID: string
		  - limit: int

		Returns:
		  - []float64: Scores, newest first
		  - error: Database retrieval failures
	*/
	RecentScores(context context.Context, userID, gameID string, limit int) ([]float64, error)
}

// # Progression Data Access

// ProgressionRepository maintains the per-user training counters.
type ProgressionRepository interface {

	/*
		Get returns the user's current progression state.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Progression: Current counters
		  - error: apperr.NotFound or database errors
	*/
	Get(context context.Context, userID string) (*Progression, error)

	/*
		Update overwrites the user's progression state.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - progression: *Progression

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, userID string, progression *Progression) error
}

// # Badge Data Access

// BadgeRepository persists earned achievements.
type BadgeRepository interface {

	/*
		ListSlugs returns the badge slugs the user has already earned.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []string: Earned slugs
		  - error: Database retrieval failures
	*/
	ListSlugs(context context.Context, userID string) ([]string, error)

	/*
		Award records a newly earned badge. Awarding the same slug twice
		must fail with a unique violation.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - slug: string

		Returns:
		  - error: Persistence failures
	*/
	Award(context context.Context, userID, slug string) error
}
