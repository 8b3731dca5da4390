// Copyright (c) 2026 MindMeld. All rights reserved.

package leaderboard

import (
	"context"
	"time"
)

// # Aggregation Access

// Repository aggregates session results across all users.
type Repository interface {

	/*
		Aggregate returns one entry per user with sessions recorded at or
		after the given instant, sorted by mean score descending with ties
		broken by session count descending. Rank and caller annotations are
		left zero.

		Parameters:
		  - context: context.Context
		  - since: time.Time

		Returns:
		  - []Entry: Sorted, un-annotated aggregation over every user
		  - error: Database retrieval failures
	*/
	Aggregate(context context.Context, since time.Time) ([]Entry, error)
}

// # Cache Access

// CacheRepository stores the shared, un-annotated board per timeframe.
type CacheRepository interface {

	/*
		Get returns the cached board for a timeframe.

		Parameters:
		  - context: context.Context
		  - timeframe: Timeframe

		Returns:
		  - []Entry: Cached aggregation, nil on a cache miss
		  - error: Connectivity or decoding failures
	*/
	Get(context context.Context, timeframe Timeframe) ([]Entry, error)

	/*
		Set stores a board for a timeframe with the given lifetime.

		Parameters:
		  - context: context.Context
		  - timeframe: Timeframe
		  - entries: []Entry
		  - ttl: time.Duration

		Returns:
		  - error: Connectivity or encoding failures
	*/
	Set(context context.Context, timeframe Timeframe, entries []Entry, ttl time.Duration) error
}
