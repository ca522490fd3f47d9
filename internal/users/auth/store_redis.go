// Copyright (c) 2026 Inkora. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkora/inkora/internal/platform/apperr"
	"github.com/inkora/inkora/internal/platform/constants"
)

// # Redis Token Store

// RedisTokenStore implements [TokenStore] on Redis with a key prefix that
// separates the reset and verification namespaces.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewResetTokenStore creates the Redis store for password reset tokens.
func NewResetTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client, prefix: constants.RedisPrefixResetToken}
}

// NewVerificationTokenStore creates the Redis store for email verification tokens.
func NewVerificationTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client, prefix: constants.RedisPrefixVerifyToken}
}

func (store *RedisTokenStore) key(token string) string {
	return store.prefix + token
}

/*
Set stores a token with its associated accountID and TTL.

Parameters:
  - context: context.Context
  - token: string
  - accountID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (store *RedisTokenStore) Set(context context.Context, token string, accountID string, ttl time.Duration) error {
	if err := store.client.Set(context, store.key(token), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_token_store_set_failed: %w", err)
	}
	return nil
}

/*
Get retrieves the accountID for a given token.

Description: Returns apperr.NotFound if the token is absent or expired —
Redis expiry IS the token expiry.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: AccountID
  - error: apperr.NotFound or connectivity errors
*/
func (store *RedisTokenStore) Get(context context.Context, token string) (string, error) {
	accountID, err := store.client.Get(context, store.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Token is invalid or expired")
		}
		return "", fmt.Errorf("redis_token_store_get_failed: %w", err)
	}
	return accountID, nil
}

/*
Delete removes a token after successful use.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Execution errors
*/
func (store *RedisTokenStore) Delete(context context.Context, token string) error {
	if err := store.client.Del(context, store.key(token)).Err(); err != nil {
		return fmt.Errorf("redis_token_store_delete_failed: %w", err)
	}
	return nil
}
