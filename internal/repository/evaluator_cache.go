package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"osero_view/internal/domain/board"
	"osero_view/internal/domain/evaluation"
)

const cacheKeyPrefix = "osero:cpu:"

type cacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// EvaluationCache remembers evaluator answers for CPU moves in redis.
// Placements always go to the evaluator.
type EvaluationCache struct {
	next  Evaluator
	store cacheStore
	ttl   time.Duration
	log   *zap.SugaredLogger
}

func NewEvaluationCache(next Evaluator, store cacheStore, ttl time.Duration, log *zap.SugaredLogger) *EvaluationCache {
	return &EvaluationCache{
		next:  next,
		store: store,
		ttl:   ttl,
		log:   log,
	}
}

func (c *EvaluationCache) RequestMove(ctx context.Context, grid board.Grid, player board.Cell) (board.Grid, error) {
	key, err := cacheKey(grid, player)
	if err != nil {
		return nil, unavailable("failed to build cache key", err)
	}

	if cached, ok := c.lookup(ctx, key, len(grid)); ok {
		return cached, nil
	}

	next, err := c.next.RequestMove(ctx, grid, player)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(evaluation.Response{Board: evaluation.EncodeGrid(next)})
	if err != nil {
		c.log.Warnw("failed to marshal evaluation for cache", "error", err)
		return next, nil
	}
	if err = c.store.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warnw("failed to store evaluation in redis", "key", key, "error", err)
	}

	return next, nil
}

func (c *EvaluationCache) RequestPlacement(ctx context.Context, grid board.Grid, col, row int, player board.Cell) (board.Grid, bool, error) {
	return c.next.RequestPlacement(ctx, grid, col, row, player)
}

func (c *EvaluationCache) lookup(ctx context.Context, key string, dimension int) (board.Grid, bool) {
	val, err := c.store.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	} else if err != nil {
		c.log.Warnw("failed to read evaluation from redis", "key", key, "error", err)
		return nil, false
	}

	var resp evaluation.Response
	if err = json.Unmarshal([]byte(val), &resp); err != nil {
		c.log.Warnw("dropping unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	g, err := decodeReply(resp, dimension)
	if err != nil {
		c.log.Warnw("dropping malformed cache entry", "key", key, "error", err)
		return nil, false
	}

	c.log.Debugw("evaluation cache hit", "key", key)
	return g, true
}

func cacheKey(grid board.Grid, player board.Cell) (string, error) {
	data, err := json.Marshal(evaluation.NewRequest(grid, player))
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}
