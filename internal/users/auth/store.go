// Copyright (c) 2026 MindMeld. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		MarkVerified updates the user's status to isverified = true.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, userID string) error

	/*
		TouchActivity stamps the account's last-active time with now.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	TouchActivity(context context.Context, userID string) error
}

// # Refresh Token Data Access

// RefreshTokenRepository defines the data access contract for refresh token records.
type RefreshTokenRepository interface {

	/*
		Create persists a new refresh token record for an authenticated login.

		Parameters:
		  - context: context.Context
		  - token: *RefreshToken

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token *RefreshToken) error

	/*
		FindByJTI returns the non-blacklisted, unexpired token record matching the given jti.

		Parameters:
		  - context: context.Context
		  - jti: string

		Returns:
		  - *RefreshToken: Hydrated entity
		  - error: apperr.NotFound or database errors
	*/
	FindByJTI(context context.Context, jti string) (*RefreshToken, error)

	/*
		Blacklist marks a specific token record as permanently invalidated.

		Parameters:
		  - context: context.Context
		  - jti: string

		Returns:
		  - error: Persistence failures
	*/
	Blacklist(context context.Context, jti string) error

	/*
		ListActiveByUser returns every non-blacklisted, unexpired token belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []RefreshToken: Active token records
		  - error: Database retrieval failures
	*/
	ListActiveByUser(context context.Context, userID string) ([]RefreshToken, error)

	/*
		BlacklistAllForUser blacklists every active token belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	BlacklistAllForUser(context context.Context, userID string) error

	/*
		DeleteExpired physically removes token records whose ExpiresAt is in the past.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context) error
}

// # Volatile Data Access

// BlacklistRepository defines the contract for the fast-path jti blacklist.
//
// Entries carry the remaining lifetime of the token they invalidate, so the
// blacklist self-prunes as tokens expire naturally.
type BlacklistRepository interface {

	/*
		Add records a jti as blacklisted for the given remaining lifetime.

		Parameters:
		  - context: context.Context
		  - jti: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Add(context context.Context, jti string, ttl time.Duration) error

	/*
		Exists reports whether a jti has been blacklisted.

		Parameters:
		  - context: context.Context
		  - jti: string

		Returns:
		  - bool: True when blacklisted
		  - error: Retrieval failures
	*/
	Exists(context context.Context, jti string) (bool, error)
}

// VerificationTokenRepository defines the contract for storing volatile email verification tokens.
type VerificationTokenRepository interface {

	/*
		Set stores a verification token associated with a userID.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given verification token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a verification token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}
