// Copyright (c) 2026 MindMeld. All rights reserved.

package profile

import (
	"context"

	"github.com/mindmeld/server/pkg/pagination"
)

// # Profile Data Access

// Repository defines the data access contract for profiles, badges, and feedback.
type Repository interface {

	/*
		GetProfile returns the full profile for a user, progression included.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Profile: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	GetProfile(context context.Context, userID string) (*Profile, error)

	/*
		UpdateIdentity persists changes to user-editable identity fields.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - username: string
		  - age: int
		  - profession: *string

		Returns:
		  - error: Persistence failures
	*/
	UpdateIdentity(context context.Context, userID, username string, age int, profession *string) error

	/*
		ListBadges returns all badges earned by the user, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []Badge: Earned badges
		  - error: Database retrieval failures
	*/
	ListBadges(context context.Context, userID string) ([]Badge, error)

	/*
		CreateFeedback persists a feedback submission.

		Parameters:
		  - context: context.Context
		  - feedback: *Feedback

		Returns:
		  - error: Persistence failures
	*/
	CreateFeedback(context context.Context, feedback *Feedback) error

	/*
		ListFeedback returns a page of feedback submissions, newest first.

		Parameters:
		  - context: context.Context
		  - params: pagination.Params

		Returns:
		  - []Feedback: Page of submissions
		  - int: Total submission count
		  - error: Database retrieval failures
	*/
	ListFeedback(context context.Context, params pagination.Params) ([]Feedback, int, error)
}
