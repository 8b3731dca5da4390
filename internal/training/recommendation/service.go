// Copyright (c) 2026 MindMeld. All rights reserved.

package recommendation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindmeld/server/internal/ml"
	"github.com/mindmeld/server/pkg/uuid"
)

// signalWindow is how many recent sessions the rule set inspects.
const signalWindow = 20

// Service evaluates the rule set and manages the notice lifecycle.
type Service struct {
	notices   Repository
	signals   SignalRepository
	inference ml.Client
	logger    *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(notices Repository, signals SignalRepository, inference ml.Client, logger *slog.Logger) *Service {
	return &Service{
		notices:   notices,
		signals:   signals,
		inference: inference,
		logger:    logger.With(slog.String("service", "recommendation")),
	}
}

/*
SessionRecorded evaluates the rule set for a user after a recording.

Description: Invoked off the request path through the recorder's listener
hook. Failures are logged and swallowed: notices are advisory and must
never affect the recording that triggered them.

Parameters:
  - context: context.Context
  - userID: string
*/
func (service *Service) SessionRecorded(context context.Context, userID string) {
	if err := service.EvaluateUser(context, userID); err != nil {
		service.logger.WarnContext(context, "rule_evaluation_failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

/*
EvaluateUser runs every rule against the user's recent activity and
persists the notices that fired.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Signal retrieval failures; per-notice persistence failures are
    logged and skipped
*/
func (service *Service) EvaluateUser(context context.Context, userID string) error {
	sessions, err := service.signals.LatestSessions(context, userID, signalWindow)
	if err != nil {
		return fmt.Errorf("recommendation_signals_failed: %w", err)
	}
	if len(sessions) == 0 {
		return nil
	}

	streak, err := service.signals.CurrentStreak(context, userID)
	if err != nil {
		return fmt.Errorf("recommendation_streak_failed: %w", err)
	}

	candidates := Evaluate(sessions, streak)

	if insight := service.insightNotice(context, userID, sessions); insight != nil {
		candidates = append(candidates, *insight)
	}

	for _, candidate := range candidates {
		service.publish(context, userID, candidate)
	}

	return nil
}

// publish stores one candidate notice unless an active notice of the same
// type already exists.
func (service *Service) publish(context context.Context, userID string, candidate Recommendation) {
	exists, err := service.notices.ExistsActive(context, userID, candidate.Type)
	if err != nil {
		service.logger.WarnContext(context, "notice_dedup_check_failed",
			slog.String("type", candidate.Type),
			slog.String("error", err.Error()),
		)
		return
	}
	if exists {
		return
	}

	candidate.ID = uuid.New()
	candidate.UserID = userID
	candidate.ExpiresAt = time.Now().Add(TTL)

	if err := service.notices.Create(context, &candidate); err != nil {
		service.logger.WarnContext(context, "notice_create_failed",
			slog.String("type", candidate.Type),
			slog.String("error", err.Error()),
		)
		return
	}

	service.logger.InfoContext(context, "notice_published",
		slog.String("user_id", userID),
		slog.String("type", candidate.Type),
	)
}

// insightNotice maps the inference service's recommendation onto a notice.
// Returns nil when inference is unavailable; insights are purely additive.
func (service *Service) insightNotice(context context.Context, userID string, sessions []SessionSignal) *Recommendation {
	averages := domainAverages(sessions)

	var total float64
	for _, signal := range sessions {
		total += signal.Score
	}

	result, err := service.inference.Recommend(context, ml.RecommendInput{
		UserID:         userID,
		DomainAverages: averages,
		AverageScore:   total / float64(len(sessions)),
	})
	if err != nil {
		return nil
	}

	return &Recommendation{
		Type:     TypeInsight,
		Title:    "Your personalized focus",
		Message:  result.Reason,
		Priority: PriorityMedium,
		Category: CategoryInsight,
		Data: map[string]any{
			"focus_domain": result.FocusDomain,
			"difficulty":   result.Difficulty,
			"confidence":   result.Confidence,
		},
	}
}

/*
Insights assembles the combined inference view from stored history.

Description: Backed by the same signals the rule set consumes. Meant to be
called with a fallback-wrapped inference client, so unavailability of the
remote service yields heuristic values rather than an error.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *ml.Insights: Classification plus training recommendation
  - error: Signal retrieval or inference failures
*/
func (service *Service) Insights(context context.Context, userID string) (*ml.Insights, error) {
	sessions, err := service.signals.LatestSessions(context, userID, signalWindow)
	if err != nil {
		return nil, fmt.Errorf("recommendation_insights_signals_failed: %w", err)
	}

	streak, err := service.signals.CurrentStreak(context, userID)
	if err != nil {
		return nil, fmt.Errorf("recommendation_insights_streak_failed: %w", err)
	}

	var total float64
	for _, signal := range sessions {
		total += signal.Score
	}
	average := 0.0
	if len(sessions) > 0 {
		average = total / float64(len(sessions))
	}

	classification, err := service.inference.Classify(context, ml.ClassifyInput{
		UserID:        userID,
		AverageScore:  average,
		TotalSessions: len(sessions),
		CurrentStreak: streak,
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation_insights_classify_failed: %w", err)
	}

	suggestion, err := service.inference.Recommend(context, ml.RecommendInput{
		UserID:         userID,
		DomainAverages: domainAverages(sessions),
		AverageScore:   average,
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation_insights_recommend_failed: %w", err)
	}

	return &ml.Insights{
		Classification: *classification,
		Recommendation: *suggestion,
	}, nil
}

/*
List returns the user's active notices.

Parameters:
  - context: context.Context
  - userID: string
  - unreadOnly: bool

Returns:
  - []Recommendation: Active notices, newest first
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, userID string, unreadOnly bool) ([]Recommendation, error) {
	return service.notices.ListActive(context, userID, unreadOnly)
}

/*
MarkRead marks one notice as read.

Parameters:
  - context: context.Context
  - userID: string
  - recommendationID: string

Returns:
  - error: apperr.NotFound for unknown or foreign notices
*/
func (service *Service) MarkRead(context context.Context, userID, recommendationID string) error {
	return service.notices.MarkRead(context, userID, recommendationID)
}

/*
Sweep removes expired notices. Intended to run periodically.

Parameters:
  - context: context.Context

Returns:
  - error: Execution failures
*/
func (service *Service) Sweep(context context.Context) error {
	removed, err := service.notices.DeleteExpired(context)
	if err != nil {
		return fmt.Errorf("recommendation_sweep_failed: %w", err)
	}

	if removed > 0 {
		service.logger.InfoContext(context, "expired_notices_removed", slog.Int("count", removed))
	}

	return nil
}

// # Rule Set
//
// Evaluate is pure: it maps recent activity to candidate notices without
// touching storage. Sessions arrive newest first.

// Evaluate runs the fixed rule set and returns the notices that fired.
func Evaluate(sessions []SessionSignal, streak int) []Recommendation {
	if len(sessions) == 0 {
		return nil
	}

	var fired []Recommendation

	if notice := lowAccuracyRule(sessions); notice != nil {
		fired = append(fired, *notice)
	}
	if notice := streakRule(streak); notice != nil {
		fired = append(fired, *notice)
	}
	if notice := decliningRule(sessions); notice != nil {
		fired = append(fired, *notice)
	}
	if notice := varietyRule(sessions); notice != nil {
		fired = append(fired, *notice)
	}

	return fired
}

// lowAccuracyRule fires when the latest session's accuracy falls below the
// practice threshold.
func lowAccuracyRule(sessions []SessionSignal) *Recommendation {
	latest := sessions[0]
	if latest.Accuracy >= LowAccuracyThreshold {
		return nil
	}

	return &Recommendation{
		Type:  TypePractice,
		Title: "Time for focused practice",
		Message: fmt.Sprintf(
			"Your accuracy in %s dropped to %.0f%%. Short, regular practice in this domain rebuilds it fastest.",
			latest.Domain, latest.Accuracy),
		Priority: PriorityHigh,
		Category: CategoryTraining,
		Data:     map[string]any{"domain": latest.Domain, "accuracy": latest.Accuracy},
	}
}

// streakRule encourages users who kept a streak going.
func streakRule(streak int) *Recommendation {
	if streak < StreakEncouragementAt {
		return nil
	}

	return &Recommendation{
		Type:     TypeStreak,
		Title:    fmt.Sprintf("%d days and counting", streak),
		Message:  "Consistency beats intensity. Keep the streak alive with one session today.",
		Priority: PriorityLow,
		Category: CategoryHabit,
		Data:     map[string]any{"streak": streak},
	}
}

// decliningRule fires when the latest game's scores fell across three
// consecutive sessions.
func decliningRule(sessions []SessionSignal) *Recommendation {
	gameID := sessions[0].GameID

	var scores []float64
	for _, signal := range sessions {
		if signal.GameID == gameID {
			scores = append(scores, signal.Score)
		}
		if len(scores) == DecliningRunLength {
			break
		}
	}
	if len(scores) < DecliningRunLength {
		return nil
	}

	// Newest first, so a decline means each score is below the one after it
	for i := 0; i < len(scores)-1; i++ {
		if scores[i] >= scores[i+1] {
			return nil
		}
	}

	return &Recommendation{
		Type:  TypeDifficulty,
		Title: "Consider an easier setting",
		Message: fmt.Sprintf(
			"Your last %d scores in %s declined. Dropping the difficulty for a few sessions rebuilds momentum.",
			DecliningRunLength, gameID),
		Priority: PriorityMedium,
		Category: CategoryTraining,
		Data:     map[string]any{"game_id": gameID},
	}
}

// varietyRule nudges heavy users towards mixing their games.
func varietyRule(sessions []SessionSignal) *Recommendation {
	cutoff := time.Now().AddDate(0, 0, -7)

	weekly := 0
	played := map[string]struct{}{}
	for _, signal := range sessions {
		if signal.RecordedAt.After(cutoff) {
			weekly++
			played[signal.GameID] = struct{}{}
		}
	}
	if weekly < WeeklyVarietyThreshold {
		return nil
	}

	return &Recommendation{
		Type:  TypeVariety,
		Title: "Mix up your training",
		Message: fmt.Sprintf(
			"You completed %d sessions this week across %d games. Rotating domains trains a broader range of skills.",
			weekly, len(played)),
		Priority: PriorityLow,
		Category: CategoryHabit,
		Data:     map[string]any{"weekly_sessions": weekly, "distinct_games": len(played)},
	}
}

// domainAverages computes the mean score per domain from recent sessions.
func domainAverages(sessions []SessionSignal) map[string]float64 {
	totals := map[string]float64{}
	counts := map[string]int{}
	for _, signal := range sessions {
		totals[signal.Domain] += signal.Score
		counts[signal.Domain]++
	}

	averages := make(map[string]float64, len(totals))
	for domain, total := range totals {
		averages[domain] = total / float64(counts[domain])
	}

	return averages
}
