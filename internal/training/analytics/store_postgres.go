// Copyright (c) 2026 MindMeld. All rights reserved.

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindmeld/server/internal/training/session"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
ListSince returns the user's sessions recorded at or after the given instant,
newest first. A zero instant disables the lower bound.

Parameters:
  - context: context.Context
  - userID: string
  - since: time.Time

Returns:
  - []session.Session: Matching sessions, newest first
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListSince(context context.Context, userID string, since time.Time) ([]session.Session, error) {
	const query = `
		SELECT id, userid, gameid, domain, difficulty, score, accuracy,
		       reactiontimems, durationseconds, xpearned, percentile, flagged,
		       mllabel, predictednextscore, createdat
		FROM training.session
		WHERE userid = $1 AND ($2::timestamptz IS NULL OR createdat >= $2)
		ORDER BY createdat DESC`

	var lowerBound *time.Time
	if !since.IsZero() {
		lowerBound = &since
	}

	rows, err := repository.pool.Query(context, query, userID, lowerBound)
	if err != nil {
		return nil, fmt.Errorf("postgres_analytics_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var record session.Session
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.GameID,
			&record.Domain,
			&record.Difficulty,
			&record.Score,
			&record.Accuracy,
			&record.ReactionTimeMs,
			&record.DurationSeconds,
			&record.XPEarned,
			&record.Percentile,
			&record.Flagged,
			&record.MLLabel,
			&record.PredictedNextScore,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_analytics_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_analytics_repo_rows_failed: %w", err)
	}

	return sessions, nil
}
