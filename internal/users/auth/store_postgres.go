// Copyright (c) 2026 MindMeld. All rights reserved.

// PostgreSQL implementations of the auth repositories.
//
// # Architecture
//
// Repositories in this file are strictly separated from domain logic. They
// implement domain-defined interfaces (e.g., [UserRepository]) using the
// [pgxpool.Pool] connection manager.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
Create persists a new user record into the users.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided. Progression columns (xp, level, streak) rely on schema defaults.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: Database constraint violations or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, age, profession, role, isverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Age,
		user.Profession,
		user.Role,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Two registrations can pass the uniqueness pre-checks concurrently;
		// the constraint violation from the loser maps to the same Conflict.
		return dberr.Wrap(err, "postgres_user_repo_create")
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, age, profession, role, isverified, createdat, updatedat
		FROM users.account
		WHERE email = $1`

	return repository.scanOne(context, query, email, "User not found with this email")
}

/*
FindByUsername retrieves a user record by their unique username.

Parameters:
  - context: context.Context
  - username: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, age, profession, role, isverified, createdat, updatedat
		FROM users.account
		WHERE username = $1`

	return repository.scanOne(context, query, username, "User not found with this username")
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: Not found or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, username, email, passwordhash, age, profession, role, isverified, createdat, updatedat
		FROM users.account
		WHERE id = $1`

	return repository.scanOne(context, query, id, "User not found")
}

// scanOne executes a single-row identity lookup and hydrates the User entity.
func (repository *PostgresUserRepository) scanOne(context context.Context, query string, argument any, notFoundMessage string) (*User, error) {
	user := &User{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Age,
		&user.Profession,
		&user.Role,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(notFoundMessage)
		}
		return nil, fmt.Errorf("postgres_user_repo_find_failed: %w", err)
	}

	return user, nil
}

/*
MarkVerified updates the user's status to isverified = true.

Description: Post-verification cleanup to activate the account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Database errors
*/
func (repository *PostgresUserRepository) MarkVerified(context context.Context, userID string) error {
	const query = "UPDATE users.account SET isverified = TRUE, updatedat = $2 WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_mark_verified_failed: %w", err)
	}
	return nil
}

// TouchActivity stamps the account's lastactivedate with now.
func (repository *PostgresUserRepository) TouchActivity(context context.Context, userID string) error {
	const query = "UPDATE users.account SET lastactivedate = NOW() WHERE id = $1"
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_touch_activity_failed: %w", err)
	}
	return nil
}

// # Refresh Token Repository

// PostgresRefreshTokenRepository implements the RefreshTokenRepository interface.
type PostgresRefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new PostgreSQL implementation of RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *PostgresRefreshTokenRepository {
	return &PostgresRefreshTokenRepository{pool: pool}
}

/*
Create persists a new refresh token record into the users.refresh_token table.

Parameters:
  - context: context.Context
  - token: *RefreshToken

Returns:
  - error: Storage failures
*/
func (repository *PostgresRefreshTokenRepository) Create(context context.Context, token *RefreshToken) error {
	const query = `
		INSERT INTO users.refresh_token (
			id, userid, jti, useragent, ipaddress, expiresat, isblacklisted, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		token.ID,
		token.UserID,
		token.JTI,
		token.UserAgent,
		token.IPAddress,
		token.ExpiresAt,
		token.IsBlacklisted,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByJTI retrieves an active token record by its unique jti.

Description: Securely resolves a refresh token identifier into an active record.

Parameters:
  - context: context.Context
  - jti: string

Returns:
  - *RefreshToken: Hydrated token metadata
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRefreshTokenRepository) FindByJTI(context context.Context, jti string) (*RefreshToken, error) {
	const query = `
		SELECT id, userid, jti, useragent, ipaddress, expiresat, isblacklisted, createdat
		FROM users.refresh_token
		WHERE jti = $1 AND isblacklisted = FALSE AND expiresat > NOW()`

	token := &RefreshToken{}
	err := repository.pool.QueryRow(context, query, jti).Scan(
		&token.ID,
		&token.UserID,
		&token.JTI,
		&token.UserAgent,
		&token.IPAddress,
		&token.ExpiresAt,
		&token.IsBlacklisted,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Refresh token not found or expired")
		}
		return nil, fmt.Errorf("postgres_refresh_repo_find_failed: %w", err)
	}

	return token, nil
}

/*
Blacklist marks a specific token record as blacklisted.

Parameters:
  - context: context.Context
  - jti: string

Returns:
  - error: Revocation failures
*/
func (repository *PostgresRefreshTokenRepository) Blacklist(context context.Context, jti string) error {
	const query = "UPDATE users.refresh_token SET isblacklisted = TRUE WHERE jti = $1"
	_, err := repository.pool.Exec(context, query, jti)
	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_blacklist_failed: %w", err)
	}
	return nil
}

/*
ListActiveByUser returns all active token records for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []RefreshToken: Active records ordered by creation time
  - error: Retrieval failures
*/
func (repository *PostgresRefreshTokenRepository) ListActiveByUser(context context.Context, userID string) ([]RefreshToken, error) {
	const query = `
		SELECT id, userid, jti, useragent, ipaddress, expiresat, isblacklisted, createdat
		FROM users.refresh_token
		WHERE userid = $1 AND isblacklisted = FALSE AND expiresat > NOW()
		ORDER BY createdat`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_refresh_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var tokens []RefreshToken
	for rows.Next() {
		var token RefreshToken
		if err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.JTI,
			&token.UserAgent,
			&token.IPAddress,
			&token.ExpiresAt,
			&token.IsBlacklisted,
			&token.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_refresh_repo_scan_failed: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_refresh_repo_rows_failed: %w", err)
	}

	return tokens, nil
}

/*
BlacklistAllForUser marks all active token records for a user as blacklisted.

Description: Security nuking of all active tokens for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresRefreshTokenRepository) BlacklistAllForUser(context context.Context, userID string) error {
	const query = "UPDATE users.refresh_token SET isblacklisted = TRUE WHERE userid = $1 AND isblacklisted = FALSE"
	_, err := repository.pool.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_blacklist_all_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all token records past their expiration.

Description: Cleanup task to reclaim storage from stale records.

Parameters:
  - context: context.Context

Returns:
  - error: Cleanup failures
*/
func (repository *PostgresRefreshTokenRepository) DeleteExpired(context context.Context) error {
	const query = "DELETE FROM users.refresh_token WHERE expiresat <= NOW()"
	_, err := repository.pool.Exec(context, query)
	if err != nil {
		return fmt.Errorf("postgres_refresh_repo_delete_expired_failed: %w", err)
	}
	return nil
}
