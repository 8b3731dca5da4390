// Copyright (c) 2026 MindMeld. All rights reserved.

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindmeld/server/internal/games"
	"github.com/mindmeld/server/internal/ml"
	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/internal/users/profile"
	"github.com/mindmeld/server/pkg/pagination"
)

// # Test Doubles

type fakeSessionRepository struct {
	sessions []Session
}

func (f *fakeSessionRepository) Create(_ context.Context, session *Session) error {
	f.sessions = append(f.sessions, *session)
	return nil
}

func (f *fakeSessionRepository) FindByID(_ context.Context, userID, sessionID string) (*Session, error) {
	for _, session := range f.sessions {
		if session.ID == sessionID && session.UserID == userID {
			copied := session
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (f *fakeSessionRepository) ListByUser(_ context.Context, userID, gameID string, _ pagination.Params) ([]Session, int, error) {
	var matched []Session
	for _, session := range f.sessions {
		if session.UserID == userID && (gameID == "" || session.GameID == gameID) {
			matched = append(matched, session)
		}
	}
	return matched, len(matched), nil
}

func (f *fakeSessionRepository) RecentScores(_ context.Context, userID, gameID string, limit int) ([]float64, error) {
	var scores []float64
	for i := len(f.sessions) - 1; i >= 0 && len(scores) < limit; i-- {
		if f.sessions[i].UserID == userID && f.sessions[i].GameID == gameID {
			scores = append(scores, f.sessions[i].Score)
		}
	}
	return scores, nil
}

type fakeProgressionRepository struct {
	state map[string]*Progression
}

func (f *fakeProgressionRepository) Get(_ context.Context, userID string) (*Progression, error) {
	if progression, ok := f.state[userID]; ok {
		copied := *progression
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeProgressionRepository) Update(_ context.Context, userID string, progression *Progression) error {
	copied := *progression
	f.state[userID] = &copied
	return nil
}

type fakeBadgeRepository struct {
	slugs map[string][]string
}

func (f *fakeBadgeRepository) ListSlugs(_ context.Context, userID string) ([]string, error) {
	return f.slugs[userID], nil
}

func (f *fakeBadgeRepository) Award(_ context.Context, userID, slug string) error {
	f.slugs[userID] = append(f.slugs[userID], slug)
	return nil
}

// # Helpers

func newTestService(inference ml.Client) (*Service, *fakeSessionRepository, *fakeProgressionRepository, *fakeBadgeRepository) {
	sessions := &fakeSessionRepository{}
	progression := &fakeProgressionRepository{state: map[string]*Progression{
		"user-1": {Level: 1},
	}}
	badges := &fakeBadgeRepository{slugs: map[string][]string{}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(games.Default(), sessions, progression, badges, inference, logger)
	return service, sessions, progression, badges
}

func validInput() RecordInput {
	return RecordInput{
		GameID:          games.IDReactionTime,
		Domain:          string(games.DomainProcessingSpeed),
		Difficulty:      "medium",
		Score:           72,
		Accuracy:        85,
		ReactionTimeMs:  320,
		DurationSeconds: 55,
	}
}

// # Tests

func TestService_Record_FirstPerfectSession(t *testing.T) {
	service, _, _, _ := newTestService(&ml.Static{Err: errors.New("offline")})

	input := validInput()
	input.GameID = games.IDNBack
	input.Domain = string(games.DomainWorkingMemory)
	input.Score = 100
	input.Accuracy = 95
	input.DurationSeconds = 120

	result, err := service.Record(context.Background(), "user-1", input)
	require.NoError(t, err)

	// Base XP for a 100 score: 100 + 50 completion bonus
	assert.Equal(t, 150, result.Session.XPEarned)

	// First-session and perfect-score badges add 100 XP each
	assert.ElementsMatch(t, []string{profile.BadgeFirstSession, profile.BadgePerfectScore}, result.NewBadges)
	assert.Equal(t, 350, result.Progression.XP)
	assert.Equal(t, 1, result.Progression.Level)
	assert.False(t, result.LeveledUp)

	assert.Equal(t, 1, result.Progression.TotalSessions)
	assert.Equal(t, 1, result.Progression.CurrentStreak)
	assert.InDelta(t, 100.0, result.Progression.AverageScore, 0.001)

	// Legitimate perfect score over two minutes is not an anomaly
	assert.False(t, result.Session.Flagged)

	// Omitted metrics are stored as an empty object, never null
	assert.NotNil(t, result.Session.Metrics)
}

func TestService_Record_ValidationListsAllFields(t *testing.T) {
	service, _, _, _ := newTestService(&ml.Static{})

	_, err := service.Record(context.Background(), "user-1", RecordInput{
		GameID:          "chess",
		Domain:          "memory",
		Difficulty:      "nightmare",
		Score:           120,
		Accuracy:        -3,
		ReactionTimeMs:  -10,
		DurationSeconds: 0,
	})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)

	violated := map[string]bool{}
	for _, detail := range appError.Details {
		violated[detail.Field] = true
	}
	for _, field := range []string{FieldGameID, FieldDomain, FieldDifficulty, FieldScore, FieldAccuracy, FieldReactionTimeMs, FieldDuration} {
		assert.True(t, violated[field], "expected violation for %s", field)
	}
}

func TestService_Record_AnomalyFlagging(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*RecordInput)
		wantFlagged bool
	}{
		{
			name:        "normal result",
			mutate:      func(*RecordInput) {},
			wantFlagged: false,
		},
		{
			name: "superhuman reaction time",
			mutate: func(input *RecordInput) {
				input.Accuracy = 99
				input.ReactionTimeMs = 120
			},
			wantFlagged: true,
		},
		{
			name: "instant perfect score",
			mutate: func(input *RecordInput) {
				input.Score = 100
				input.DurationSeconds = 8
			},
			wantFlagged: true,
		},
		{
			name: "fast but imperfect accuracy",
			mutate: func(input *RecordInput) {
				input.Accuracy = 90
				input.ReactionTimeMs = 120
			},
			wantFlagged: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			service, _, _, _ := newTestService(&ml.Static{Err: errors.New("offline")})

			input := validInput()
			testCase.mutate(&input)

			result, err := service.Record(context.Background(), "user-1", input)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantFlagged, result.Session.Flagged)
			if testCase.wantFlagged {
				require.NotNil(t, result.Session.FlagReason)
				assert.NotEmpty(t, *result.Session.FlagReason)
			} else {
				assert.Nil(t, result.Session.FlagReason)
			}

			// Flagged sessions still earn XP: the flag is a review signal
			assert.Positive(t, result.Session.XPEarned)
		})
	}
}

func TestService_Record_DomainMustMatchGame(t *testing.T) {
	service, sessions, _, _ := newTestService(&ml.Static{Err: errors.New("offline")})

	input := validInput()
	input.Domain = string(games.DomainAttention)

	_, err := service.Record(context.Background(), "user-1", input)

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	require.Len(t, appError.Details, 1)
	assert.Equal(t, FieldDomain, appError.Details[0].Field)
	assert.Empty(t, sessions.sessions, "mismatched submissions must not be stored")
}

func TestService_Record_PercentileBounds(t *testing.T) {
	service, _, progression, _ := newTestService(&ml.Static{Err: errors.New("offline")})

	tests := []struct {
		name  string
		score float64
		low   int
		high  int
	}{
		{name: "bottom clamp", score: 0, low: PercentileMin, high: PercentileJitter},
		{name: "top clamp", score: 100, low: 90, high: PercentileMax},
		{name: "middle spread", score: 50, low: 40, high: 60},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			for i := 0; i < 30; i++ {
				progression.state["user-1"] = &Progression{Level: 1}

				input := validInput()
				input.Score = testCase.score
				input.DurationSeconds = 60

				result, err := service.Record(context.Background(), "user-1", input)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, result.Session.Percentile, testCase.low)
				assert.LessOrEqual(t, result.Session.Percentile, testCase.high)
			}
		})
	}
}

func TestService_Record_RunningAverage(t *testing.T) {
	service, _, _, _ := newTestService(&ml.Static{Err: errors.New("offline")})

	scores := []float64{80, 60, 70}
	var result *RecordResult
	var err error

	for _, score := range scores {
		input := validInput()
		input.Score = score
		result, err = service.Record(context.Background(), "user-1", input)
		require.NoError(t, err)
	}

	assert.Equal(t, 3, result.Progression.TotalSessions)
	assert.InDelta(t, 70.0, result.Progression.AverageScore, 0.001)

	assert.Equal(t, 165, result.Progression.TotalPlayTimeSeconds)
	assert.Equal(t, 3, result.Progression.GamesPlayed[games.IDReactionTime])
}

func TestService_Record_SessionMilestoneBadge(t *testing.T) {
	service, _, progression, badges := newTestService(&ml.Static{Err: errors.New("offline")})

	// User is one session away from the milestone
	progression.state["user-1"] = &Progression{
		XP: 500, Level: 1, TotalSessions: 9, AverageScore: 65,
	}
	badges.slugs["user-1"] = []string{profile.BadgeFirstSession}

	result, err := service.Record(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	assert.Contains(t, result.NewBadges, profile.BadgeSessions10)
	assert.NotContains(t, result.NewBadges, profile.BadgeFirstSession, "badges are never re-awarded")
}

func TestService_Record_StreakBadgeAndLevelUp(t *testing.T) {
	service, _, progression, _ := newTestService(&ml.Static{Err: errors.New("offline")})

	yesterday := time.Now().Add(-24 * time.Hour)
	progression.state["user-1"] = &Progression{
		XP: 950, Level: 1, CurrentStreak: 6, LastSessionDate: &yesterday,
		TotalSessions: 20, AverageScore: 70,
	}

	result, err := service.Record(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	assert.Equal(t, 7, result.Progression.CurrentStreak)
	assert.Equal(t, 7, result.Progression.BestStreak)
	assert.Contains(t, result.NewBadges, profile.BadgeStreak7)

	// 950 + 120 session XP + 100 badge bonus crosses the 1000 XP boundary
	assert.Equal(t, 1170, result.Progression.XP)
	assert.Equal(t, 2, result.Progression.Level)
	assert.True(t, result.LeveledUp)
}

func TestService_Record_MLEnrichment(t *testing.T) {
	inference := &ml.Static{
		Classification: ml.Classification{Label: ml.LabelIntermediate, Confidence: 0.8},
		Pred:           ml.Prediction{PredictedScore: 74.5, Confidence: 0.7},
	}
	service, sessions, _, _ := newTestService(inference)

	result, err := service.Record(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	require.NotNil(t, result.Session.MLLabel)
	assert.Equal(t, ml.LabelIntermediate, *result.Session.MLLabel)
	require.NotNil(t, result.Session.PredictedNextScore)
	assert.InDelta(t, 74.5, *result.Session.PredictedNextScore, 0.001)

	// Enrichment is persisted, not response-only
	require.Len(t, sessions.sessions, 1)
	assert.NotNil(t, sessions.sessions[0].MLLabel)
}

func TestService_Record_InferenceOutageDoesNotFailRecording(t *testing.T) {
	service, _, _, _ := newTestService(&ml.Static{Err: errors.New("connection refused")})

	result, err := service.Record(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	assert.Nil(t, result.Session.MLLabel)
	assert.Nil(t, result.Session.PredictedNextScore)
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 8, 31, 2, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		current int
		last    *time.Time
		want    int
	}{
		{name: "first ever session", current: 0, last: nil, want: 1},
		{name: "second session same day", current: 4, last: &sameDay, want: 4},
		{name: "consecutive day extends", current: 4, last: &yesterday, want: 5},
		{name: "gap resets", current: 12, last: &lastWeek, want: 1},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, nextStreak(testCase.current, testCase.last, now))
		})
	}
}

func TestBaseXP(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{score: 0, want: 50},
		{score: 9, want: 50},
		{score: 10, want: 60},
		{score: 72, want: 120},
		{score: 100, want: 150},
	}

	for _, testCase := range tests {
		assert.Equal(t, testCase.want, BaseXP(testCase.score), "score %.0f", testCase.score)
	}
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(999))
	assert.Equal(t, 2, LevelForXP(1000))
	assert.Equal(t, 4, LevelForXP(3500))
}

func TestService_List_UnknownGameFilter(t *testing.T) {
	service, _, _, _ := newTestService(&ml.Static{})

	_, _, err := service.List(context.Background(), "user-1", "chess", pagination.Params{Page: 1, Limit: 20})

	require.Error(t, err)
}

func TestService_Get_ScopedToOwner(t *testing.T) {
	service, sessions, _, _ := newTestService(&ml.Static{Err: errors.New("offline")})

	result, err := service.Record(context.Background(), "user-1", validInput())
	require.NoError(t, err)
	require.Len(t, sessions.sessions, 1)

	found, err := service.Get(context.Background(), "user-1", result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Session.ID, found.ID)

	_, err = service.Get(context.Background(), "user-2", result.Session.ID)
	require.Error(t, err, "foreign sessions must be invisible")
}
