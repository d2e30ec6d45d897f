package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

const (
	personalityCachePrefix  = "match:profile:"
	personalityCacheTimeout = 500 * time.Millisecond
)

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedPersonalityRepository cachea en Redis los perfiles leidos de next.
// Una falla de Redis nunca corta la lectura: se sigue contra next.
// Los perfiles ausentes no se cachean porque el clasificador puede
// producirlos en cualquier momento.
type CachedPersonalityRepository struct {
	next   PersonalityRepository
	client redisKV
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewCachedPersonalityRepository devuelve next sin envolver si no hay cliente.
func NewCachedPersonalityRepository(next PersonalityRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) PersonalityRepository {
	if client == nil {
		return next
	}
	return newCachedPersonalityRepository(next, client, ttl, logger)
}

func newCachedPersonalityRepository(next PersonalityRepository, client redisKV, ttl time.Duration, logger *zap.Logger) *CachedPersonalityRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedPersonalityRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: personalityCachePrefix,
		logger: logger,
	}
}

func (c *CachedPersonalityRepository) FindBySubmission(ctx context.Context, submissionID string) (domain.PersonalityProfile, error) {
	cctx, cancel := context.WithTimeout(ctx, personalityCacheTimeout)
	raw, err := c.client.Get(cctx, c.prefix+submissionID).Bytes()
	cancel()
	switch {
	case err == nil:
		var p domain.PersonalityProfile
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return p, nil
		}
		c.logger.Warn("discarding corrupt cached profile", zap.String("submission_id", submissionID))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("profile cache get failed", zap.String("submission_id", submissionID), zap.Error(err))
	}

	p, err := c.next.FindBySubmission(ctx, submissionID)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}
	c.store(ctx, p)
	return p, nil
}

func (c *CachedPersonalityRepository) FindBySubmissions(ctx context.Context, submissionIDs []string) (map[string]domain.PersonalityProfile, error) {
	out := make(map[string]domain.PersonalityProfile, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(submissionIDs))
	for i, id := range submissionIDs {
		keys[i] = c.prefix + id
	}
	cctx, cancel := context.WithTimeout(ctx, personalityCacheTimeout)
	vals, err := c.client.MGet(cctx, keys...).Result()
	cancel()
	if err != nil {
		c.logger.Warn("profile cache mget failed", zap.Int("keys", len(keys)), zap.Error(err))
		vals = nil
	}

	var misses []string
	for i, id := range submissionIDs {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				var p domain.PersonalityProfile
				if json.Unmarshal([]byte(s), &p) == nil {
					out[id] = p
					continue
				}
			}
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return out, nil
	}

	found, err := c.next.FindBySubmissions(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, p := range found {
		out[id] = p
		c.store(ctx, p)
	}
	return out, nil
}

func (c *CachedPersonalityRepository) store(ctx context.Context, p domain.PersonalityProfile) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, personalityCacheTimeout)
	defer cancel()
	if err := c.client.Set(cctx, c.prefix+p.SubmissionID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("profile cache set failed", zap.String("submission_id", p.SubmissionID), zap.Error(err))
	}
}
