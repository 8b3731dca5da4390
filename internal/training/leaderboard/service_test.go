// Copyright (c) 2026 MindMeld. All rights reserved.

package leaderboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// # Test Doubles

type fakeRepository struct {
	entries []Entry
	calls   int
	err     error
}

func (f *fakeRepository) Aggregate(_ context.Context, _ time.Time) ([]Entry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type fakeCache struct {
	boards map[Timeframe][]Entry
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{boards: map[Timeframe][]Entry{}}
}

func (f *fakeCache) Get(_ context.Context, timeframe Timeframe) ([]Entry, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.boards[timeframe], nil
}

func (f *fakeCache) Set(_ context.Context, timeframe Timeframe, entries []Entry, _ time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.boards[timeframe] = entries
	return nil
}

// # Helpers

func newTestService(aggregation *fakeRepository, cache *fakeCache) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(aggregation, cache, logger)
}

// sortedEntries mirrors the repository contract: mean score descending,
// ties broken by session count descending.
func sortedEntries() []Entry {
	return []Entry{
		{UserID: "user-a", Username: "ada", TotalSessions: 12, MeanScore: 91.5, BestScore: 100},
		{UserID: "user-b", Username: "bob", TotalSessions: 30, MeanScore: 84, BestScore: 97},
		{UserID: "user-c", Username: "cleo", TotalSessions: 8, MeanScore: 84, BestScore: 95},
		{UserID: "user-d", Username: "dan", TotalSessions: 4, MeanScore: 70, BestScore: 88},
	}
}

// # Tests

func TestService_Get_RanksAndAnnotation(t *testing.T) {
	service := newTestService(&fakeRepository{entries: sortedEntries()}, newFakeCache())

	board, err := service.Get(context.Background(), "user-c", "weekly", 10)
	require.NoError(t, err)
	require.Len(t, board.Entries, 4)

	// Ranks are 1-based and mean scores never increase down the board
	for i, entry := range board.Entries {
		assert.Equal(t, i+1, entry.Rank)
		if i > 0 {
			assert.LessOrEqual(t, entry.MeanScore, board.Entries[i-1].MeanScore)
		}
	}

	// Equal mean scores are ordered by session count
	assert.Equal(t, "user-b", board.Entries[1].UserID)
	assert.Equal(t, "user-c", board.Entries[2].UserID)

	assert.False(t, board.Entries[0].IsCurrentUser)
	assert.True(t, board.Entries[2].IsCurrentUser)

	require.NotNil(t, board.CurrentUserRank)
	assert.Equal(t, 3, *board.CurrentUserRank)
}

func TestService_Get_XPEstimate(t *testing.T) {
	service := newTestService(&fakeRepository{entries: sortedEntries()}, newFakeCache())

	board, err := service.Get(context.Background(), "user-a", "daily", 10)
	require.NoError(t, err)

	assert.InDelta(t, 9.15, board.Entries[0].TotalXP, 0.001)
}

func TestService_Get_TruncatesAndReportsTrueRank(t *testing.T) {
	service := newTestService(&fakeRepository{entries: sortedEntries()}, newFakeCache())

	board, err := service.Get(context.Background(), "user-d", "weekly", 2)
	require.NoError(t, err)

	require.Len(t, board.Entries, 2)
	for _, entry := range board.Entries {
		assert.False(t, entry.IsCurrentUser)
	}

	// The caller sits below the cut but still learns their standing
	require.NotNil(t, board.CurrentUserRank)
	assert.Equal(t, 4, *board.CurrentUserRank)
}

func TestService_Get_CallerWithoutSessions(t *testing.T) {
	service := newTestService(&fakeRepository{entries: sortedEntries()}, newFakeCache())

	board, err := service.Get(context.Background(), "user-idle", "weekly", 10)
	require.NoError(t, err)

	assert.Nil(t, board.CurrentUserRank)
}

func TestService_Get_ServesFromCache(t *testing.T) {
	aggregation := &fakeRepository{entries: sortedEntries()}
	service := newTestService(aggregation, newFakeCache())

	_, err := service.Get(context.Background(), "user-a", "weekly", 10)
	require.NoError(t, err)
	_, err = service.Get(context.Background(), "user-b", "weekly", 10)
	require.NoError(t, err)

	// Second read is served from the cache
	assert.Equal(t, 1, aggregation.calls)
}

func TestService_Get_CacheFailuresDegrade(t *testing.T) {
	aggregation := &fakeRepository{entries: sortedEntries()}
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	cache.setErr = errors.New("connection refused")
	service := newTestService(aggregation, cache)

	board, err := service.Get(context.Background(), "user-a", "monthly", 10)
	require.NoError(t, err)
	assert.Len(t, board.Entries, 4)
	assert.Equal(t, 1, aggregation.calls)
}

func TestService_Get_InvalidTimeframe(t *testing.T) {
	service := newTestService(&fakeRepository{}, newFakeCache())

	_, err := service.Get(context.Background(), "user-a", "yearly", 10)

	require.Error(t, err)
}

func TestService_Get_LimitClamping(t *testing.T) {
	service := newTestService(&fakeRepository{entries: sortedEntries()}, newFakeCache())

	board, err := service.Get(context.Background(), "user-a", "weekly", 0)
	require.NoError(t, err)

	// Default limit exceeds the population, so everyone is on the board
	assert.Len(t, board.Entries, 4)
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		timeframe Timeframe
		want      time.Time
	}{
		{
			name:      "daily starts at midnight",
			timeframe: TimeframeDaily,
			want:      time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "weekly trails seven days",
			timeframe: TimeframeWeekly,
			want:      time.Date(2026, 8, 24, 14, 30, 0, 0, time.UTC),
		},
		{
			name:      "monthly starts at the first",
			timeframe: TimeframeMonthly,
			want:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, WindowStart(testCase.timeframe, now))
		})
	}
}

func TestValidTimeframe(t *testing.T) {
	assert.True(t, ValidTimeframe("daily"))
	assert.True(t, ValidTimeframe("weekly"))
	assert.True(t, ValidTimeframe("monthly"))
	assert.False(t, ValidTimeframe("yearly"))
	assert.False(t, ValidTimeframe(""))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-1))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, MaxLimit, ClampLimit(500))
}
