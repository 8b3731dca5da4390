// Copyright (c) 2026 MindMeld. All rights reserved.

package leaderboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindmeld/server/internal/platform/validate"
	"github.com/mindmeld/server/pkg/pointer"
)

// CacheTTL is the lifetime of a cached board. Kept short: the board is a
// competitive surface and minute-old data is already noticeable.
const CacheTTL = 60 * time.Second

// Service assembles per-caller leaderboards from the shared aggregation.
type Service struct {
	aggregation Repository
	cache       CacheRepository
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its repository dependencies.
func NewService(aggregation Repository, cache CacheRepository, logger *slog.Logger) *Service {
	return &Service{
		aggregation: aggregation,
		cache:       cache,
		logger:      logger.With(slog.String("service", "leaderboard")),
	}
}

/*
Get returns the board for a timeframe, annotated for the requesting user.

Description: The un-annotated aggregation is shared across callers through
the cache. Ranks are 1-based positions in the sorted aggregation, so ties
on mean score stay ordered by session count. When the caller places outside
the returned page, their true rank is looked up in the full aggregation and
reported separately.

Parameters:
  - context: context.Context
  - userID: string (requesting user, for annotation)
  - timeframe: string
  - limit: int (0 selects the default size)

Returns:
  - *Board: Ranked entries with the caller flagged
  - error: Validation or retrieval failures
*/
func (service *Service) Get(context context.Context, userID, timeframe string, limit int) (*Board, error) {
	if !ValidTimeframe(timeframe) {
		return nil, validate.RequiredError("timeframe", "must be one of: daily, weekly, monthly")
	}

	frame := Timeframe(timeframe)
	size := ClampLimit(limit)

	entries, err := service.load(context, frame)
	if err != nil {
		return nil, err
	}

	board := &Board{
		Timeframe:   frame,
		Entries:     annotate(entries, userID, size),
		GeneratedAt: time.Now(),
	}

	// Callers below the cut still get to see where they stand
	if rank := callerRank(entries, userID); rank > 0 {
		board.CurrentUserRank = pointer.To(rank)
	}

	return board, nil
}

// load serves the shared aggregation from cache when possible. Cache
// failures degrade to a direct query rather than failing the request.
func (service *Service) load(context context.Context, timeframe Timeframe) ([]Entry, error) {
	cached, err := service.cache.Get(context, timeframe)
	if err != nil {
		service.logger.WarnContext(context, "leaderboard_cache_read_failed",
			slog.String("timeframe", string(timeframe)),
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return cached, nil
	}

	entries, err := service.aggregation.Aggregate(context, WindowStart(timeframe, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("leaderboard_aggregate_failed: %w", err)
	}

	if err := service.cache.Set(context, timeframe, entries, CacheTTL); err != nil {
		service.logger.WarnContext(context, "leaderboard_cache_write_failed",
			slog.String("timeframe", string(timeframe)),
			slog.String("error", err.Error()),
		)
	}

	return entries, nil
}

// annotate assigns 1-based ranks, flags the caller, and truncates to size.
func annotate(entries []Entry, userID string, size int) []Entry {
	if size > len(entries) {
		size = len(entries)
	}

	page := make([]Entry, size)
	for i := 0; i < size; i++ {
		page[i] = entries[i]
		page[i].Rank = i + 1
		page[i].TotalXP = page[i].MeanScore * XPFactor
		page[i].IsCurrentUser = entries[i].UserID == userID
	}

	return page
}

// callerRank finds the caller's position in the full aggregation. Returns
// 0 when the caller has no sessions in the window.
func callerRank(entries []Entry, userID string) int {
	for i, entry := range entries {
		if entry.UserID == userID {
			return i + 1
		}
	}
	return 0
}
