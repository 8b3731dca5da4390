// Copyright (c) 2026 MindMeld. All rights reserved.

package analytics

import (
	"context"
	"time"

	"github.com/mindmeld/server/internal/training/session"
)

// # History Access

// Repository is the read-only view of the session history the aggregates
// are computed over.
type Repository interface {

	/*
		ListSince returns every session the user recorded at or after the
		given instant, newest first. A zero instant returns the full history.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - since: time.Time

		Returns:
		  - []session.Session: Matching sessions, newest first
		  - error: Database retrieval failures
	*/
	ListSince(context context.Context, userID string, since time.Time) ([]session.Session, error)
}
