package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/actuallystonmai/canteen-recommendation/internal/model"
)

// Completer is the model call the engines depend on.
type Completer interface {
	Complete(ctx context.Context, messages []model.Message) (string, error)
}

// CachingCompleter serves repeated prompts from redis. Only successful
// completions are stored, and a cache outage degrades to a direct call.
type CachingCompleter struct {
	next      Completer
	cache     *Cache
	modelName string
	logger    *zap.Logger
}

func NewCachingCompleter(next Completer, cache *Cache, modelName string, logger *zap.Logger) *CachingCompleter {
	return &CachingCompleter{
		next:      next,
		cache:     cache,
		modelName: modelName,
		logger:    logger.Named("cache"),
	}
}

// Complete stores every successful completion. Callers that can tell a
// usable reply from an unusable one should use CompleteValidated.
func (c *CachingCompleter) Complete(ctx context.Context, messages []model.Message) (string, error) {
	return c.CompleteValidated(ctx, messages, nil)
}

// CompleteValidated stores a completion only when accept approves it, so an
// unusable reply is asked for again on the next identical request instead of
// being replayed for the whole TTL. A nil accept approves everything.
func (c *CachingCompleter) CompleteValidated(ctx context.Context, messages []model.Message, accept func(reply string) bool) (string, error) {
	cached, found, err := c.cache.Get(ctx, c.modelName, messages)
	if err != nil {
		c.logger.Warn("cache get failed", zap.Error(err))
	}
	if found {
		return cached, nil
	}

	completion, err := c.next.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	if accept != nil && !accept(completion) {
		c.logger.Debug("completion rejected, not cached")
		return completion, nil
	}
	if err := c.cache.Set(ctx, c.modelName, messages, completion); err != nil {
		c.logger.Warn("cache set failed", zap.Error(err))
	}
	return completion, nil
}
