// Copyright (c) 2026 MindMeld. All rights reserved.

package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/pkg/pagination"
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
GetProfile retrieves the full profile row for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Hydrated entity including progression counters
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) GetProfile(context context.Context, userID string) (*Profile, error) {
	const query = `
		SELECT id, username, email, age, profession, xp, level, currentstreak,
		       beststreak, lastsessiondate, lastactivedate, totalsessions,
		       totalplaytimeseconds, averagescore, gamesplayed, isverified,
		       createdat, updatedat
		FROM users.account
		WHERE id = $1`

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.Age,
		&profile.Profession,
		&profile.XP,
		&profile.Level,
		&profile.CurrentStreak,
		&profile.BestStreak,
		&profile.LastSessionDate,
		&profile.LastActiveDate,
		&profile.TotalSessions,
		&profile.TotalPlayTimeSeconds,
		&profile.AverageScore,
		&profile.GamesPlayed,
		&profile.IsVerified,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Profile not found")
		}
		return nil, fmt.Errorf("postgres_profile_repo_get_failed: %w", err)
	}

	return profile, nil
}

/*
UpdateIdentity persists the user-editable identity fields.

Parameters:
  - context: context.Context
  - userID: string
  - username: string
  - age: int
  - profession: *string

Returns:
  - error: Unique violations or execution errors
*/
func (repository *PostgresRepository) UpdateIdentity(context context.Context, userID, username string, age int, profession *string) error {
	const query = `
		UPDATE users.account
		SET username = $2, age = $3, profession = $4, updatedat = $5
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query, userID, username, age, profession, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_profile_repo_update_failed: %w", err)
	}

	return nil
}

/*
ListBadges returns every badge the user has earned, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Badge: Earned badges
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListBadges(context context.Context, userID string) ([]Badge, error) {
	const query = `
		SELECT id, userid, slug, awardedat
		FROM users.badge
		WHERE userid = $1
		ORDER BY awardedat DESC`

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_list_badges_failed: %w", err)
	}
	defer rows.Close()

	var badges []Badge
	for rows.Next() {
		var badge Badge
		if err := rows.Scan(&badge.ID, &badge.UserID, &badge.Slug, &badge.AwardedAt); err != nil {
			return nil, fmt.Errorf("postgres_profile_repo_scan_badge_failed: %w", err)
		}
		badges = append(badges, badge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_badge_rows_failed: %w", err)
	}

	return badges, nil
}

/*
CreateFeedback persists a feedback submission into the users.feedback table.

Parameters:
  - context: context.Context
  - feedback: *Feedback

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) CreateFeedback(context context.Context, feedback *Feedback) error {
	const query = `
		INSERT INTO users.feedback (id, userid, category, message, rating, createdat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		feedback.ID,
		feedback.UserID,
		feedback.Category,
		feedback.Message,
		feedback.Rating,
		feedback.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_profile_repo_create_feedback_failed: %w", err)
	}

	return nil
}

/*
ListFeedback returns a page of feedback submissions, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Feedback: Page of submissions
  - int: Total submission count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListFeedback(context context.Context, params pagination.Params) ([]Feedback, int, error) {
	const countQuery = "SELECT COUNT(*) FROM users.feedback"

	var total int
	if err := repository.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_count_feedback_failed: %w", err)
	}

	const query = `
		SELECT id, userid, category, message, rating, createdat
		FROM users.feedback
		ORDER BY createdat DESC
		LIMIT $1 OFFSET $2`

	rows, err := repository.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_list_feedback_failed: %w", err)
	}
	defer rows.Close()

	var items []Feedback
	for rows.Next() {
		var item Feedback
		if err := rows.Scan(&item.ID, &item.UserID, &item.Category, &item.Message, &item.Rating, &item.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("postgres_profile_repo_scan_feedback_failed: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_repo_feedback_rows_failed: %w", err)
	}

	return items, total, nil
}
