// Copyright (c) 2026 MindMeld. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/pkg/pagination"
	"github.com/mindmeld/server/pkg/uuid"
)

// # Session Repository

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const sessionColumns = `id, userid, gameid, domain, difficulty, score, accuracy,
	reactiontimems, durationseconds, xpearned, percentile, flagged, flagreason,
	metrics, mllabel, predictednextscore, createdat`

/*
Create persists a completed session into the training.session table.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Constraint violations or connectivity errors
*/
func (repository *PostgresRepository) Create(context context.Context, session *Session) error {
	const query = `
		INSERT INTO training.session (
			id, userid, gameid, domain, difficulty, score, accuracy,
			reactiontimems, durationseconds, xpearned, percentile, flagged, flagreason,
			metrics, mllabel, predictednextscore, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := repository.pool.Exec(context, query,
		session.ID,
		session.UserID,
		session.GameID,
		session.Domain,
		session.Difficulty,
		session.Score,
		session.Accuracy,
		session.ReactionTimeMs,
		session.DurationSeconds,
		session.XPEarned,
		session.Percentile,
		session.Flagged,
		session.FlagReason,
		session.Metrics,
		session.MLLabel,
		session.PredictedNextScore,
		session.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByID retrieves a single session, scoped to its owner.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, userID, sessionID string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM training.session
		WHERE id = $1 AND userid = $2`, sessionColumns)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, sessionID, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.GameID,
		&session.Domain,
		&session.Difficulty,
		&session.Score,
		&session.Accuracy,
		&session.ReactionTimeMs,
		&session.DurationSeconds,
		&session.XPEarned,
		&session.Percentile,
		&session.Flagged,
		&session.FlagReason,
		&session.Metrics,
		&session.MLLabel,
		&session.PredictedNextScore,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Session")
		}
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", err)
	}

	return session, nil
}

/*
ListByUser returns a page of the user's sessions, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - gameID: string (empty matches all games)
  - params: pagination.Params

Returns:
  - []Session: Page of sessions
  - int: Total matching count
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByUser(context context.Context, userID, gameID string, params pagination.Params) ([]Session, int, error) {

	// The filter collapses to TRUE when no game is requested
	const countQuery = `
		SELECT COUNT(*)
		FROM training.session
		WHERE userid = $1 AND ($2 = '' OR gameid = $2)`

	var total int
	if err := repository.pool.QueryRow(context, countQuery, userID, gameID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_session_repo_count_failed: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM training.session
		WHERE userid = $1 AND ($2 = '' OR gameid = $2)
		ORDER BY createdat DESC
		LIMIT $3 OFFSET $4`, sessionColumns)

	rows, err := repository.pool.Query(context, query, userID, gameID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_session_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.GameID,
			&session.Domain,
			&session.Difficulty,
			&session.Score,
			&session.Accuracy,
			&session.ReactionTimeMs,
			&session.DurationSeconds,
			&session.XPEarned,
			&session.Percentile,
			&session.Flagged,
			&session.FlagReason,
			&session.Metrics,
			&session.MLLabel,
			&session.PredictedNextScore,
			&session.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("postgres_session_repo_scan_failed: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_session_repo_rows_failed: %w", err)
	}

	return sessions, total, nil
}

/*
RecentScores returns the user's most recent scores for a game, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - gameID: string
  - limit: int

Returns:
  - []float64: Scores, newest first
  - error: Retrieval failures
*/
func (repository *PostgresRepository) RecentScores(context context.Context, userID, gameID string, limit int) ([]float64, error) {
	const query = `
		SELECT score
		FROM training.session
		WHERE userid = $1 AND gameid = $2
		ORDER BY createdat DESC
		LIMIT $3`

	rows, err := repository.pool.Query(context, query, userID, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_recent_scores_failed: %w", err)
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, fmt.Errorf("postgres_session_repo_scan_score_failed: %w", err)
		}
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_session_repo_score_rows_failed: %w", err)
	}

	return scores, nil
}

// # Progression Repository

// PostgresProgressionRepository implements ProgressionRepository over users.account.
type PostgresProgressionRepository struct {
	pool *pgxpool.Pool
}

// NewProgressionRepository creates a new PostgreSQL implementation of ProgressionRepository.
func NewProgressionRepository(pool *pgxpool.Pool) *PostgresProgressionRepository {
	return &PostgresProgressionRepository{pool: pool}
}

/*
Get returns the user's current progression counters.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Progression: Current state
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresProgressionRepository) Get(context context.Context, userID string) (*Progression, error) {
	const query = `
		SELECT xp, level, currentstreak, beststreak, lastsessiondate,
		       totalsessions, totalplaytimeseconds, averagescore, gamesplayed
		FROM users.account
		WHERE id = $1`

	progression := &Progression{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&progression.XP,
		&progression.Level,
		&progression.CurrentStreak,
		&progression.BestStreak,
		&progression.LastSessionDate,
		&progression.TotalSessions,
		&progression.TotalPlayTimeSeconds,
		&progression.AverageScore,
		&progression.GamesPlayed,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_progression_repo_get_failed: %w", err)
	}

	return progression, nil
}

/*
Update overwrites the user's progression counters.

Parameters:
  - context: context.Context
  - userID: string
  - progression: *Progression

Returns:
  - error: Execution errors
*/
func (repository *PostgresProgressionRepository) Update(context context.Context, userID string, progression *Progression) error {
	const query = `
		UPDATE users.account
		SET xp = $2, level = $3, currentstreak = $4, beststreak = $5,
		    lastsessiondate = $6, lastactivedate = $6, totalsessions = $7,
		    totalplaytimeseconds = $8, averagescore = $9, gamesplayed = $10,
		    updatedat = $11
		WHERE id = $1`

	_, err := repository.pool.Exec(context, query,
		userID,
		progression.XP,
		progression.Level,
		progression.CurrentStreak,
		progression.BestStreak,
		progression.LastSessionDate,
		progression.TotalSessions,
		progression.TotalPlayTimeSeconds,
		progression.AverageScore,
		progression.GamesPlayed,
		time.Now(),
	)

	if err != nil {
		return fmt.Errorf("postgres_progression_repo_update_failed: %w", err)
	}

	return nil
}

// # Badge Repository

// PostgresBadgeRepository implements BadgeRepository over users.badge.
type PostgresBadgeRepository struct {
	pool *pgxpool.Pool
}

// NewBadgeRepository creates a new PostgreSQL implementation of BadgeRepository.
func NewBadgeRepository(pool *pgxpool.Pool) *PostgresBadgeRepository {
	return &PostgresBadgeRepository{pool: pool}
}

/*
ListSlugs returns the badge slugs the user has already earned.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Earned slugs
  - error: Retrieval failures
*/
func (repository *PostgresBadgeRepository) ListSlugs(context context.Context, userID string) ([]string, error) {
	const query = "SELECT slug FROM users.badge WHERE userid = $1"

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_badge_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("postgres_badge_repo_scan_failed: %w", err)
		}
		slugs = append(slugs, slug)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_badge_repo_rows_failed: %w", err)
	}

	return slugs, nil
}

/*
Award records a newly earned badge.

Description: The (userid, slug) unique constraint guarantees a badge is
never awarded twice even under concurrent recordings.

Parameters:
  - context: context.Context
  - userID: string
  - slug: string

Returns:
  - error: Unique violations or execution errors
*/
func (repository *PostgresBadgeRepository) Award(context context.Context, userID, slug string) error {
	const query = `
		INSERT INTO users.badge (id, userid, slug, awardedat)
		VALUES ($1, $2, $3, $4)`

	_, err := repository.pool.Exec(context, query, uuid.New(), userID, slug, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_badge_repo_award_failed: %w", err)
	}

	return nil
}
