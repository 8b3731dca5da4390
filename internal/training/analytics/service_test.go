// Copyright (c) 2026 MindMeld. All rights reserved.

package analytics

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindmeld/server/internal/games"
	"github.com/mindmeld/server/internal/training/session"
)

// # Test Doubles

type fakeRepository struct {
	sessions []session.Session
}

func (f *fakeRepository) ListSince(_ context.Context, userID string, since time.Time) ([]session.Session, error) {
	var matched []session.Session
	for _, record := range f.sessions {
		if record.UserID == userID && (since.IsZero() || !record.CreatedAt.Before(since)) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

// # Helpers

// history builds a newest-first session list from scores, one session per
// day counting back from now.
func history(scores ...float64) []session.Session {
	now := time.Now()
	sessions := make([]session.Session, len(scores))
	for i, score := range scores {
		sessions[i] = session.Session{
			UserID:    "user-1",
			GameID:    games.IDNBack,
			Domain:    string(games.DomainWorkingMemory),
			Score:     score,
			CreatedAt: now.AddDate(0, 0, -i),
		}
	}
	return sessions
}

func newTestService(sessions []session.Session) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(games.Default(), &fakeRepository{sessions: sessions}, logger)
}

// # Tests

func TestComputeTrend(t *testing.T) {
	tests := []struct {
		name          string
		scores        []float64
		wantDirection string
	}{
		{
			name:          "no sessions",
			scores:        nil,
			wantDirection: TrendStable,
		},
		{
			name:          "single session has nothing to compare",
			scores:        []float64{88},
			wantDirection: TrendStable,
		},
		{
			name:          "recent five clearly above preceding five",
			scores:        []float64{90, 88, 92, 85, 90, 60, 62, 58, 61, 59},
			wantDirection: TrendImproving,
		},
		{
			name:          "recent five clearly below preceding five",
			scores:        []float64{50, 52, 48, 51, 49, 80, 78, 82, 79, 81},
			wantDirection: TrendDeclining,
		},
		{
			name:          "change within the five percent band",
			scores:        []float64{71, 70, 72, 70, 71, 70, 69, 71, 70, 70},
			wantDirection: TrendStable,
		},
		{
			name:          "short history splits in half",
			scores:        []float64{90, 90, 60, 60},
			wantDirection: TrendImproving,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			trend := ComputeTrend(history(testCase.scores...))
			assert.Equal(t, testCase.wantDirection, trend.Direction)
		})
	}
}

func TestComputeTrend_ChangePercent(t *testing.T) {
	// Recent five average 66, preceding five average 60: +10%
	trend := ComputeTrend(history(66, 66, 66, 66, 66, 60, 60, 60, 60, 60))

	assert.Equal(t, TrendImproving, trend.Direction)
	assert.InDelta(t, 10.0, trend.ChangePercent, 0.001)
	assert.InDelta(t, 66.0, trend.RecentAverage, 0.001)
	assert.InDelta(t, 60.0, trend.PreviousAverage, 0.001)
}

func TestDomainPerformance(t *testing.T) {
	sessions := []session.Session{
		{Domain: string(games.DomainWorkingMemory), Score: 80, Accuracy: 90},
		{Domain: string(games.DomainWorkingMemory), Score: 60, Accuracy: 70},
		{Domain: string(games.DomainAttention), Score: 95, Accuracy: 99},
	}

	stats := DomainPerformance(sessions)

	// Domains without sessions are omitted entirely
	require.Len(t, stats, 2)

	assert.Equal(t, string(games.DomainWorkingMemory), stats[0].Domain)
	assert.Equal(t, 2, stats[0].Sessions)
	assert.InDelta(t, 70.0, stats[0].AverageScore, 0.001)
	assert.InDelta(t, 80.0, stats[0].AverageAccuracy, 0.001)
	assert.InDelta(t, 80.0, stats[0].BestScore, 0.001)

	assert.Equal(t, string(games.DomainAttention), stats[1].Domain)
	assert.Equal(t, 1, stats[1].Sessions)
}

func TestDomainPerformance_Empty(t *testing.T) {
	assert.Empty(t, DomainPerformance(nil))
}

func TestWeeklyRollup(t *testing.T) {
	now := time.Now()
	sessions := []session.Session{
		{GameID: games.IDNBack, Score: 80, DurationSeconds: 60, CreatedAt: now.Add(-time.Hour)},
		{GameID: games.IDFlanker, Score: 60, DurationSeconds: 90, CreatedAt: now.AddDate(0, 0, -3)},
		{GameID: games.IDNBack, Score: 70, DurationSeconds: 45, CreatedAt: now.AddDate(0, 0, -6)},
		// Older than a week, must not count
		{GameID: games.IDStroopSprint, Score: 10, DurationSeconds: 600, CreatedAt: now.AddDate(0, 0, -10)},
	}

	summary := WeeklyRollup(sessions, now)

	assert.Equal(t, 3, summary.Sessions)
	assert.InDelta(t, 70.0, summary.AverageScore, 0.001)
	assert.Equal(t, 195, summary.TotalDurationSeconds)
	assert.Equal(t, 2, summary.DistinctGames)
}

func TestWeeklyRollup_NoActivity(t *testing.T) {
	summary := WeeklyRollup(nil, time.Now())
	assert.Zero(t, summary)
}

func TestPercentileEstimate(t *testing.T) {
	sessions := []session.Session{
		{Percentile: 40},
		{Percentile: 60},
		{Percentile: 80},
	}

	assert.InDelta(t, 60.0, PercentileEstimate(sessions), 0.001)
	assert.Zero(t, PercentileEstimate(nil))
}

func TestClampWindowDays(t *testing.T) {
	assert.Equal(t, WindowDaysDefault, ClampWindowDays(0))
	assert.Equal(t, WindowDaysDefault, ClampWindowDays(-5))
	assert.Equal(t, 14, ClampWindowDays(14))
	assert.Equal(t, WindowDaysMax, ClampWindowDays(4000))
}

func TestService_Dashboard(t *testing.T) {
	service := newTestService(history(100, 50))

	dashboard, err := service.Dashboard(context.Background(), "user-1", 0)
	require.NoError(t, err)

	assert.Equal(t, WindowDaysDefault, dashboard.WindowDays)
	assert.Equal(t, 2, dashboard.TotalSessions)
	require.Len(t, dashboard.Domains, 1)
	assert.InDelta(t, 75.0, dashboard.Domains[0].AverageScore, 0.001)
}

func TestService_Dashboard_EmptyHistory(t *testing.T) {
	service := newTestService(nil)

	dashboard, err := service.Dashboard(context.Background(), "user-1", 7)
	require.NoError(t, err)

	assert.Zero(t, dashboard.TotalSessions)
	assert.Equal(t, TrendStable, dashboard.Trend.Direction)
	assert.Empty(t, dashboard.Domains)
	assert.Zero(t, dashboard.AveragePercentile)
}

func TestService_Performance_SeriesOrdering(t *testing.T) {
	now := time.Now()
	service := newTestService([]session.Session{
		{UserID: "user-1", GameID: games.IDNBack, Score: 90, CreatedAt: now},
		{UserID: "user-1", GameID: games.IDFlanker, Score: 55, CreatedAt: now.Add(-time.Hour)},
		{UserID: "user-1", GameID: games.IDNBack, Score: 70, CreatedAt: now.Add(-2 * time.Hour)},
	})

	series, err := service.Performance(context.Background(), "user-1", "", 30)
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, games.IDNBack, series[0].GameID)
	require.Len(t, series[0].Points, 2)

	// Chart points run oldest first
	assert.InDelta(t, 70.0, series[0].Points[0].Score, 0.001)
	assert.InDelta(t, 90.0, series[0].Points[1].Score, 0.001)
}

func TestService_Performance_UnknownGame(t *testing.T) {
	service := newTestService(nil)

	_, err := service.Performance(context.Background(), "user-1", "chess", 30)

	require.Error(t, err)
}

func TestService_Export_ReturnsFullHistory(t *testing.T) {
	old := session.Session{UserID: "user-1", GameID: games.IDNBack, Score: 40,
		CreatedAt: time.Now().AddDate(-1, 0, 0)}
	service := newTestService(append(history(80, 70), old))

	sessions, err := service.Export(context.Background(), "user-1")
	require.NoError(t, err)

	// Export ignores the dashboard window
	assert.Len(t, sessions, 3)
}
