// Copyright (c) 2026 MindMeld. All rights reserved.

package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindmeld/server/internal/platform/constants"
)

// RedisCacheRepository implements CacheRepository using Redis.
//
// Boards are stored as JSON blobs per timeframe. The short TTL bounds the
// staleness a caller can observe.
type RedisCacheRepository struct {
	client *redis.Client
}

// NewCacheRepository creates a new Redis-backed CacheRepository.
func NewCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{client: client}
}

/*
Get returns the cached board for a timeframe.

Parameters:
  - context: context.Context
  - timeframe: Timeframe

Returns:
  - []Entry: Cached aggregation, nil on a cache miss
  - error: Connectivity or decoding failures
*/
func (repository *RedisCacheRepository) Get(context context.Context, timeframe Timeframe) ([]Entry, error) {

	key := constants.RedisPrefixLeaderboard + string(timeframe)

	payload, err := repository.client.Get(context, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_leaderboard_get_failed: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("redis_leaderboard_decode_failed: %w", err)
	}

	return entries, nil
}

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
func (repository *RedisCacheRepository) Set(context context.Context, timeframe Timeframe, entries []Entry, ttl time.Duration) error {

	key := constants.RedisPrefixLeaderboard + string(timeframe)

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("redis_leaderboard_encode_failed: %w", err)
	}

	if err := repository.client.Set(context, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_leaderboard_set_failed: %w", err)
	}

	return nil
}
