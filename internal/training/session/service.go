// Copyright (c) 2026 MindMeld. All rights reserved.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mindmeld/server/internal/games"
	"github.com/mindmeld/server/internal/ml"
	"github.com/mindmeld/server/internal/platform/validate"
	"github.com/mindmeld/server/internal/users/profile"
	"github.com/mindmeld/server/pkg/pagination"
	"github.com/mindmeld/server/pkg/uuid"
)

// recentScoreWindow is how many prior scores feed the next-score predictor.
const recentScoreWindow = 5

// listenerTimeout bounds the work a listener may do per recording.
const listenerTimeout = 10 * time.Second

// RecordedListener is notified after a session has been stored and the
// user's progression updated.
type RecordedListener interface {
	SessionRecorded(context context.Context, userID string)
}

// Service implements the session recording pipeline.
type Service struct {
	catalog     *games.Catalog
	sessions    Repository
	progression ProgressionRepository
	badges      BadgeRepository
	inference   ml.Client
	logger      *slog.Logger
	random      *rand.Rand
	listeners   []RecordedListener
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	catalog *games.Catalog,
	sessions Repository,
	progressionRepo ProgressionRepository,
	badgeRepo BadgeRepository,
	inference ml.Client,
	logger *slog.Logger,
) *Service {
	return &Service{
		catalog:     catalog,
		sessions:    sessions,
		progression: progressionRepo,
		badges:      badgeRepo,
		inference:   inference,
		logger:      logger,
		random:      rand.New(rand.NewSource(rand.Int63())),
	}
}

// Subscribe registers a listener invoked after every successful recording.
// Not safe for concurrent use; register listeners during composition.
func (service *Service) Subscribe(listener RecordedListener) {
	service.listeners = append(service.listeners, listener)
}

// announce notifies listeners off the request path. Each listener gets its
// own bounded context so slow consumers never hold up the response.
func (service *Service) announce(userID string) {
	for _, listener := range service.listeners {
		go func(listener RecordedListener) {
			notifyContext, cancel := context.WithTimeout(context.Background(), listenerTimeout)
			defer cancel()
			listener.SessionRecorded(notifyContext, userID)
		}(listener)
	}
}

// # Recording Flow

// RecordInput is the client-reported result of a completed session.
type RecordInput struct {
	GameID          string
	Domain          string
	Difficulty      string
	Score           float64
	Accuracy        float64
	ReactionTimeMs  float64
	DurationSeconds int
	Metrics         map[string]any
}

// RecordResult is the full outcome of recording a session.
type RecordResult struct {
	Session     *Session     `json:"session"`
	Progression *Progression `json:"progression"`
	NewBadges   []string     `json:"new_badges"`
	LeveledUp   bool         `json:"leveled_up"`
}

/*
Record validates and persists a session, then advances the user's progression.

Description: The single write path for training results. Validation reports
every violated field at once. Anomalous results are stored but flagged, and
flagged sessions still earn XP: the flag is a review signal, not a rejection.

Parameters:
  - context: context.Context
  - userID: string
  - input: RecordInput

Returns:
  - *RecordResult: Stored session plus updated progression
  - err: Validation or storage errors
*/
func (service *Service) Record(context context.Context, userID string, input RecordInput) (*RecordResult, error) {

	// Validate everything at once so the client gets the complete field list
	game, ok := service.catalog.ByID(input.GameID)
	validator := &validate.Validator{}
	validator.Required(FieldGameID, input.GameID).
		Custom(FieldGameID, input.GameID != "" && !ok, "is not a known game").
		Custom(FieldDomain, !games.ValidDomain(input.Domain),
			"must be one of: working_memory, attention, processing_speed, problem_solving").
		Custom(FieldDomain, ok && games.ValidDomain(input.Domain) && input.Domain != string(game.Domain),
			"does not match the game's domain").
		OneOf(FieldDifficulty, input.Difficulty,
			string(games.DifficultyEasy), string(games.DifficultyMedium), string(games.DifficultyHard)).
		FloatRange(FieldScore, input.Score, 0, 100).
		FloatRange(FieldAccuracy, input.Accuracy, 0, 100).
		Custom(FieldReactionTimeMs, input.ReactionTimeMs < 0, "must not be negative").
		Min(FieldDuration, input.DurationSeconds, 1)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	current, err := service.progression.Get(context, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	metrics := input.Metrics
	if metrics == nil {
		metrics = map[string]any{}
	}

	session := &Session{
		ID:              uuid.New(),
		UserID:          userID,
		GameID:          game.ID,
		Domain:          string(game.Domain),
		Difficulty:      input.Difficulty,
		Score:           input.Score,
		Accuracy:        input.Accuracy,
		ReactionTimeMs:  input.ReactionTimeMs,
		DurationSeconds: input.DurationSeconds,
		XPEarned:        BaseXP(input.Score),
		Percentile:      service.estimatePercentile(input.Score),
		Metrics:         metrics,
		CreatedAt:       now,
	}

	if reason := AnomalyReason(input.Score, input.Accuracy, input.ReactionTimeMs, input.DurationSeconds); reason != "" {
		session.Flagged = true
		session.FlagReason = &reason
	}

	service.enrich(context, session, current)

	if err := service.sessions.Create(context, session); err != nil {
		return nil, fmt.Errorf("session_service_record_failed: %w", err)
	}

	updated, newBadges, err := service.applyProgression(context, userID, current, session, now)
	if err != nil {
		return nil, err
	}

	service.announce(userID)

	return &RecordResult{
		Session:     session,
		Progression: updated,
		NewBadges:   newBadges,
		LeveledUp:   updated.Level > current.Level,
	}, nil
}

// estimatePercentile spreads the score by a uniform jitter and clamps the
// result into the valid percentile band. A proper population-based estimate
// needs a trained model; this keeps the API shape stable until one exists.
func (service *Service) estimatePercentile(score float64) int {
	jitter := service.random.Float64()*float64(2*PercentileJitter) - float64(PercentileJitter)
	percentile := int(score + jitter)

	if percentile < PercentileMin {
		return PercentileMin
	}
	if percentile > PercentileMax {
		return PercentileMax
	}
	return percentile
}

// enrich backfills inference output onto the session. Best effort: a dead
// inference service must never fail a recording.
func (service *Service) enrich(context context.Context, session *Session, current *Progression) {
	classification, err := service.inference.Classify(context, ml.ClassifyInput{
		UserID:        session.UserID,
		AverageScore:  current.AverageScore,
		TotalSessions: current.TotalSessions,
		CurrentStreak: current.CurrentStreak,
	})
	if err == nil {
		session.MLLabel = &classification.Label
	} else {
		service.logger.Warn("session_enrich_classify_failed", slog.Any("error", err))
	}

	recent, err := service.sessions.RecentScores(context, session.UserID, session.GameID, recentScoreWindow)
	if err != nil {
		service.logger.Warn("session_enrich_recent_scores_failed", slog.Any("error", err))
		return
	}
	recent = append([]float64{session.Score}, recent...)

	prediction, err := service.inference.Predict(context, ml.PredictInput{
		UserID:       session.UserID,
		GameID:       session.GameID,
		RecentScores: recent,
	})
	if err == nil {
		session.PredictedNextScore = &prediction.PredictedScore
	} else {
		service.logger.Warn("session_enrich_predict_failed", slog.Any("error", err))
	}
}

// applyProgression advances streak, counters, XP, badges, and level.
func (service *Service) applyProgression(context context.Context, userID string, current *Progression, session *Session, now time.Time) (*Progression, []string, error) {

	updated := &Progression{
		CurrentStreak:        nextStreak(current.CurrentStreak, current.LastSessionDate, now),
		BestStreak:           current.BestStreak,
		LastSessionDate:      &now,
		TotalSessions:        current.TotalSessions + 1,
		TotalPlayTimeSeconds: current.TotalPlayTimeSeconds + session.DurationSeconds,
		GamesPlayed:          make(map[string]int, len(current.GamesPlayed)+1),
	}
	if updated.CurrentStreak > updated.BestStreak {
		updated.BestStreak = updated.CurrentStreak
	}
	for gameID, count := range current.GamesPlayed {
		updated.GamesPlayed[gameID] = count
	}
	updated.GamesPlayed[session.GameID]++

	// Running average over all sessions, no full rescan needed
	n := float64(updated.TotalSessions)
	updated.AverageScore = (current.AverageScore*(n-1) + session.Score) / n

	// Session XP first, then badge bonuses on top
	xp := current.XP + session.XPEarned

	newBadges := service.awardBadges(context, userID, session, updated)
	xp += len(newBadges) * profile.BadgeXPBonus

	updated.XP = xp
	updated.Level = LevelForXP(xp)

	if err := service.progression.Update(context, userID, updated); err != nil {
		return nil, nil, fmt.Errorf("session_service_progression_update_failed: %w", err)
	}

	return updated, newBadges, nil
}

// nextStreak advances the day streak based on the previous session's calendar day.
//
// Same day keeps the streak, the following day extends it, any gap resets to 1.
// Days are compared in UTC.
func nextStreak(current int, lastSession *time.Time, now time.Time) int {
	if lastSession == nil {
		return 1
	}

	today := now.UTC().Truncate(24 * time.Hour)
	lastDay := lastSession.UTC().Truncate(24 * time.Hour)

	switch today.Sub(lastDay) {
	case 0:
		if current < 1 {
			return 1
		}
		return current
	case 24 * time.Hour:
		return current + 1
	default:
		return 1
	}
}

// awardBadges grants every badge whose threshold this session crossed.
// Award failures are logged and skipped: a missed badge is recoverable,
// a failed recording is not.
func (service *Service) awardBadges(context context.Context, userID string, session *Session, updated *Progression) []string {
	earnedSlugs, err := service.badges.ListSlugs(context, userID)
	if err != nil {
		service.logger.Warn("session_badge_list_failed", slog.Any("error", err))
		return nil
	}

	earned := make(map[string]bool, len(earnedSlugs))
	for _, slug := range earnedSlugs {
		earned[slug] = true
	}

	var candidates []string

	if updated.TotalSessions == 1 {
		candidates = append(candidates, profile.BadgeFirstSession)
	}
	if session.Score == 100 {
		candidates = append(candidates, profile.BadgePerfectScore)
	}

	sessionMilestones := map[int]string{
		10:  profile.BadgeSessions10,
		25:  profile.BadgeSessions25,
		50:  profile.BadgeSessions50,
		100: profile.BadgeSessions100,
	}
	if slug, ok := sessionMilestones[updated.TotalSessions]; ok {
		candidates = append(candidates, slug)
	}

	streakMilestones := map[int]string{
		7:  profile.BadgeStreak7,
		14: profile.BadgeStreak14,
		30: profile.BadgeStreak30,
	}
	if slug, ok := streakMilestones[updated.CurrentStreak]; ok {
		candidates = append(candidates, slug)
	}

	var awarded []string
	for _, slug := range candidates {
		if earned[slug] {
			continue
		}
		if err := service.badges.Award(context, userID, slug); err != nil {
			service.logger.Warn("session_badge_award_failed",
				slog.String("slug", slug), slog.Any("error", err))
			continue
		}
		awarded = append(awarded, slug)
	}

	return awarded
}

// # Read Flow

/*
List returns a page of the user's sessions, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - gameID: string (empty for no filter)
  - params: pagination.Params

Returns:
  - []Session: Page of sessions
  - pagination.Meta: Paging metadata
  - err: Validation or storage errors
*/
func (service *Service) List(context context.Context, userID, gameID string, params pagination.Params) ([]Session, pagination.Meta, error) {
	if gameID != "" && !service.catalog.Exists(gameID) {
		return nil, pagination.Meta{}, validate.RequiredError(FieldGameID, "is not a known game")
	}

	sessions, total, err := service.sessions.ListByUser(context, userID, gameID, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("session_service_list_failed: %w", err)
	}

	return sessions, pagination.NewMeta(params.Page, params.Limit, total), nil
}

/*
Get returns a single session owned by the user.

Parameters:
  - context: context.Context
  - userID: string
  - sessionID: string

Returns:
  - *Session: Hydrated entity
  - err: NotFound or storage errors
*/
func (service *Service) Get(context context.Context, userID, sessionID string) (*Session, error) {
	return service.sessions.FindByID(context, userID, sessionID)
}
