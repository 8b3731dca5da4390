// Copyright (c) 2026 MindMeld. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mindmeld/server/internal/platform/apperr"
	"github.com/mindmeld/server/internal/platform/constants"
)

// # Blacklist Repository

// RedisBlacklistRepository implements BlacklistRepository using Redis.
//
// Keys expire alongside the tokens they invalidate, so the blacklist never
// needs an explicit sweep.
type RedisBlacklistRepository struct {
	client *redis.Client
}

// NewBlacklistRepository creates a new Redis-backed BlacklistRepository.
func NewBlacklistRepository(client *redis.Client) *RedisBlacklistRepository {
	return &RedisBlacklistRepository{client: client}
}

/*
Add records a jti as blacklisted for the token's remaining lifetime.

Parameters:
  - context: context.Context
  - jti: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisBlacklistRepository) Add(context context.Context, jti string, ttl time.Duration) error {

	key := constants.RedisPrefixJTIBlacklist + jti

	// Value is irrelevant; only key presence and TTL matter
	if err := repository.client.Set(context, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_blacklist_add_failed: %w", err)
	}

	return nil
}

/*
Exists reports whether a jti is present on the blacklist.

Parameters:
  - context: context.Context
  - jti: string

Returns:
  - bool: True when blacklisted
  - error: Connectivity errors
*/
func (repository *RedisBlacklistRepository) Exists(context context.Context, jti string) (bool, error) {

	key := constants.RedisPrefixJTIBlacklist + jti

	count, err := repository.client.Exists(context, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis_blacklist_exists_failed: %w", err)
	}

	return count > 0, nil
}

// # Verification Token Repository

// RedisVerificationTokenRepository implements VerificationTokenRepository using Redis.
type RedisVerificationTokenRepository struct {
	client *redis.Client
}

// NewVerificationTokenRepository creates a new Redis-backed VerificationTokenRepository.
func NewVerificationTokenRepository(client *redis.Client) *RedisVerificationTokenRepository {
	return &RedisVerificationTokenRepository{client: client}
}

/*
Set stores a verification token with its associated userID and TTL.

Parameters:
  - context: context.Context
  - token: string
  - userID: string
  - ttl: time.Duration

Returns:
  - error: Storage failures
*/
func (repository *RedisVerificationTokenRepository) Set(context context.Context, token string, userID string, ttl time.Duration) error {

	key := constants.RedisPrefixVerifyToken + token

	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_verify_token_set_failed: %w", err)
	}

	return nil
}

/*
Get retrieves the userID for a given token.

Description: Returns apperr.NotFound if the token is not present.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: UserID
  - error: Resolution failures
*/
func (repository *RedisVerificationTokenRepository) Get(context context.Context, token string) (string, error) {

	key := constants.RedisPrefixVerifyToken + token

	userID, err := repository.client.Get(context, key).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Verification token is invalid or expired")
		}
		return "", fmt.Errorf("redis_verify_token_get_failed: %w", err)
	}

	return userID, nil
}

/*
Delete removes the token from Redis.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Execution failures
*/
func (repository *RedisVerificationTokenRepository) Delete(context context.Context, token string) error {

	key := constants.RedisPrefixVerifyToken + token

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_verify_token_delete_failed: %w", err)
	}

	return nil
}
