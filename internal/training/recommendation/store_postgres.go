// Copyright (c) 2026 MindMeld. All rights reserved.

package recommendation

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindmeld/server/internal/platform/apperr"
)

// # Notice Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
Create persists a new notice into the training.recommendation table.

Parameters:
  - context: context.Context
  - recommendation: *Recommendation

Returns:
  - error: Constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, recommendation *Recommendation) error {
	const query = `
		INSERT INTO training.recommendation (
			id, userid, type, title, message, priority, category, data,
			isread, isarchived, expiresat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if recommendation.CreatedAt.IsZero() {
		recommendation.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		recommendation.ID,
		recommendation.UserID,
		recommendation.Type,
		recommendation.Title,
		recommendation.Message,
		recommendation.Priority,
		recommendation.Category,
		recommendation.Data,
		recommendation.IsRead,
		recommendation.IsArchived,
		recommendation.ExpiresAt,
		recommendation.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_recommendation_repo_create_failed: %w", err)
	}

	return nil
}

/*
ListActive returns the user's unexpired, unarchived notices, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - unreadOnly: bool

Returns:
  - []Recommendation: Active notices
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListActive(context context.Context, userID string, unreadOnly bool) ([]Recommendation, error) {
	const query = `
		SELECT id, userid, type, title, message, priority, category, data,
		       isread, isarchived, expiresat, createdat
		FROM training.recommendation
		WHERE userid = $1
		  AND isarchived = FALSE
		  AND expiresat > NOW()
		  AND ($2 = FALSE OR isread = FALSE)
		ORDER BY createdat DESC`

	rows, err := repository.pool.Query(context, query, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("postgres_recommendation_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var notices []Recommendation
	for rows.Next() {
		var notice Recommendation
		if err := rows.Scan(
			&notice.ID,
			&notice.UserID,
			&notice.Type,
			&notice.Title,
			&notice.Message,
			&notice.Priority,
			&notice.Category,
			&notice.Data,
			&notice.IsRead,
			&notice.IsArchived,
			&notice.ExpiresAt,
			&notice.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_recommendation_repo_scan_failed: %w", err)
		}
		notices = append(notices, notice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_recommendation_repo_rows_failed: %w", err)
	}

	return notices, nil
}

/*
ExistsActive reports whether the user has an active notice of a type.

Parameters:
  - context: context.Context
  - userID: string
  - noticeType: string

Returns:
  - bool: True when an active notice of that type exists
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ExistsActive(context context.Context, userID, noticeType string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM training.recommendation
			WHERE userid = $1 AND type = $2
			  AND isarchived = FALSE AND expiresat > NOW()
		)`

	var exists bool
	if err := repository.pool.QueryRow(context, query, userID, noticeType).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres_recommendation_repo_exists_failed: %w", err)
	}

	return exists, nil
}

/*
MarkRead marks a notice as read, scoped to its owner.

Parameters:
  - context: context.Context
  - userID: string
  - recommendationID: string

Returns:
  - error: apperr.NotFound when no active notice matches
*/
func (repository *PostgresRepository) MarkRead(context context.Context, userID, recommendationID string) error {
	const query = `
		UPDATE training.recommendation
		SET isread = TRUE
		WHERE id = $1 AND userid = $2 AND expiresat > NOW()`

	tag, err := repository.pool.Exec(context, query, recommendationID, userID)
	if err != nil {
		return fmt.Errorf("postgres_recommendation_repo_mark_read_failed: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Recommendation")
	}

	return nil
}

/*
DeleteExpired removes every notice past its expiry.

Parameters:
  - context: context.Context

Returns:
  - int: Rows removed
  - error: Execution failures
*/
func (repository *PostgresRepository) DeleteExpired(context context.Context) (int, error) {
	const query = "DELETE FROM training.recommendation WHERE expiresat <= NOW()"

	tag, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, fmt.Errorf("postgres_recommendation_repo_delete_expired_failed: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// # Signal Repository

// PostgresSignalRepository implements SignalRepository over the session and
// account tables.
type PostgresSignalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository creates a new PostgreSQL implementation of SignalRepository.
func NewSignalRepository(pool *pgxpool.Pool) *PostgresSignalRepository {
	return &PostgresSignalRepository{pool: pool}
}

/*
LatestSessions returns the user's most recent sessions, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int

Returns:
  - []SessionSignal: Recent sessions, newest first
  - error: Retrieval failures
*/
func (repository *PostgresSignalRepository) LatestSessions(context context.Context, userID string, limit int) ([]SessionSignal, error) {
	const query = `
		SELECT gameid, domain, score, accuracy, createdat
		FROM training.session
		WHERE userid = $1
		ORDER BY createdat DESC
		LIMIT $2`

	rows, err := repository.pool.Query(context, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_signal_repo_latest_failed: %w", err)
	}
	defer rows.Close()

	var signals []SessionSignal
	for rows.Next() {
		var signal SessionSignal
		if err := rows.Scan(
			&signal.GameID,
			&signal.Domain,
			&signal.Score,
			&signal.Accuracy,
			&signal.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_signal_repo_scan_failed: %w", err)
		}
		signals = append(signals, signal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_signal_repo_rows_failed: %w", err)
	}

	return signals, nil
}

/*
CurrentStreak returns the user's consecutive-day streak.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Streak length in days
  - error: Retrieval failures
*/
func (repository *PostgresSignalRepository) CurrentStreak(context context.Context, userID string) (int, error) {
	const query = "SELECT currentstreak FROM users.account WHERE id = $1"

	var streak int
	if err := repository.pool.QueryRow(context, query, userID).Scan(&streak); err != nil {
		return 0, fmt.Errorf("postgres_signal_repo_streak_failed: %w", err)
	}

	return streak, nil
}
