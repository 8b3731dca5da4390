// Copyright (c) 2026 MindMeld. All rights reserved.

package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
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
Aggregate groups the window's sessions per user and sorts the result by
mean score, then session count, both descending.

Parameters:
  - context: context.Context
  - since: time.Time

Returns:
  - []Entry: Sorted aggregation over every active user
  - error: Retrieval failures
*/
func (repository *PostgresRepository) Aggregate(context context.Context, since time.Time) ([]Entry, error) {
	const query = `
		SELECT s.userid, a.username, COUNT(*), AVG(s.score), MAX(s.score)
		FROM training.session s
		JOIN users.account a ON a.id = s.userid
		WHERE s.createdat >= $1
		GROUP BY s.userid, a.username
		ORDER BY AVG(s.score) DESC, COUNT(*) DESC`

	rows, err := repository.pool.Query(context, query, since)
	if err != nil {
		return nil, fmt.Errorf("postgres_leaderboard_repo_aggregate_failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.UserID,
			&entry.Username,
			&entry.TotalSessions,
			&entry.MeanScore,
			&entry.BestScore,
		); err != nil {
			return nil, fmt.Errorf("postgres_leaderboard_repo_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_leaderboard_repo_rows_failed: %w", err)
	}

	return entries, nil
}
