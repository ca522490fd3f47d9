// Copyright (c) 2026 Inkora. All rights reserved.

/*
Package ranking serves the top-novels leaderboard.

Rankings are computed from the denormalized vote counters maintained by the
social domain and cached in Redis, so the leaderboard query never hits
Postgres on the hot path.
*/
package ranking

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkora/inkora/internal/novel"
	"github.com/inkora/inkora/internal/platform/constants"
)

// CacheTTL is how long a computed leaderboard stays fresh. Rankings shift
// slowly; five minutes keeps the hot path off Postgres.
const CacheTTL = 5 * time.Minute

// DefaultSize is the leaderboard length used when the caller does not ask
// for a specific one.
const DefaultSize = 20

// MaxSize caps the leaderboard length a caller may request.
const MaxSize = 100

// NovelSource is the lookup port for ranked novels, implemented by the
// novel repository.
type NovelSource interface {
	List(context stdctx.Context, filter novel.Filter, limit, offset int) ([]*novel.Novel, int, error)
}

// # Service Layer

// Service computes and caches the top-novels leaderboard.
type Service struct {
	novels NovelSource
	cache  *redis.Client
	logger *slog.Logger
}

// NewService constructs a new ranking [Service].
func NewService(novels NovelSource, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		novels: novels,
		cache:  cache,
		logger: logger,
	}
}

/*
TopNovels returns the published novels with the highest vote counts.

Description: Cache-aside — a fresh Redis entry is served directly; on a miss
the leaderboard is computed from Postgres and written back with [CacheTTL].
Cache failures degrade to the database, never to an error.

Parameters:
  - context: context.Context
  - size: int (leaderboard length; clamped to [1, MaxSize])

Returns:
  - []*novel.Novel: Ranked novels, highest votes first
  - error: Storage failures
*/
func (service *Service) TopNovels(context stdctx.Context, size int) ([]*novel.Novel, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	key := fmt.Sprintf("%s%d", constants.RedisPrefixRanking, size)

	// 1. Cache lookup
	cached, err := service.cache.Get(context, key).Result()
	if err == nil {
		var novels []*novel.Novel
		if err := json.Unmarshal([]byte(cached), &novels); err == nil {
			return novels, nil
		}
		// Corrupt entries are dropped and recomputed.
		service.cache.Del(context, key)
	} else if !errors.Is(err, redis.Nil) {
		service.logger.Warn("ranking_cache_read_failed", slog.Any("error", err))
	}

	// 2. Recompute from the source of truth
	novels, _, err := service.novels.List(context, novel.Filter{
		States: []novel.State{novel.StatePublished},
		Sort:   "votes",
	}, size, 0)
	if err != nil {
		return nil, fmt.Errorf("ranking_service_compute_failed: %w", err)
	}

	// 3. Write back (best effort)
	if encoded, err := json.Marshal(novels); err == nil {
		if err := service.cache.Set(context, key, encoded, CacheTTL).Err(); err != nil {
			service.logger.Warn("ranking_cache_write_failed", slog.Any("error", err))
		}
	}

	return novels, nil
}

/*
Invalidate drops every cached leaderboard.

Description: Called by moderation flows that hide novels, so a removed
novel does not linger on the public leaderboard for a full TTL.

Returns:
  - error: Cache connectivity failures
*/
func (service *Service) Invalidate(context stdctx.Context) error {
	iterator := service.cache.Scan(context, 0, constants.RedisPrefixRanking+"*", 0).Iterator()

	for iterator.Next(context) {
		if err := service.cache.Del(context, iterator.Val()).Err(); err != nil {
			return fmt.Errorf("ranking_service_invalidate_failed: %w", err)
		}
	}

	if err := iterator.Err(); err != nil {
		return fmt.Errorf("ranking_service_scan_failed: %w", err)
	}

	return nil
}
