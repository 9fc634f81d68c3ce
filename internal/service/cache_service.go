package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/ego-calendar-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type localEntry struct {
	payload []byte
	expires time.Time
}

// CacheService layers an in-process LRU in front of the shared Redis cache.
// Either tier may be absent.
type CacheService struct {
	repo       CacheRepository
	local      *lru.Cache[string, localEntry]
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewCacheService constructs a cache service. localSize <= 0 disables the LRU tier.
func NewCacheService(repo CacheRepository, localSize int, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, now: time.Now}
	if localSize > 0 {
		if local, err := lru.New[string, localEntry](localSize); err == nil {
			svc.local = local
		}
	}
	return svc
}

// Enabled indicates whether any cache tier is active.
func (s *CacheService) Enabled() bool {
	return s != nil && (s.repo != nil || s.local != nil)
}

// Get attempts to retrieve a cached entry. It returns true when the cache was hit.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()

	if s.local != nil {
		if entry, ok := s.local.Get(key); ok && s.now().Before(entry.expires) {
			if err := json.Unmarshal(entry.payload, dest); err == nil {
				s.metrics.RecordCacheOperation("local", true, time.Since(start))
				return true, nil
			}
		}
		s.metrics.RecordCacheOperation("local", false, time.Since(start))
	}

	if s.repo == nil {
		return false, nil
	}
	err := s.repo.Get(ctx, key, dest)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheOperation("redis", false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	s.metrics.RecordCacheOperation("redis", true, duration)
	s.storeLocal(key, dest, s.defaultTTL)
	return true, nil
}

// Set stores the value in every active tier.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.storeLocal(key, value, ttl)
	if s.repo == nil {
		return nil
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate removes cached values for the provided pattern. The local tier is purged entirely.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	if s.local != nil {
		s.local.Purge()
	}
	if s.repo == nil {
		return nil
	}
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidate failed", zap.String("pattern", pattern), zap.Error(err))
		return err
	}
	return nil
}

// Remember returns the cached value for key or loads, stores and returns it.
// Cache failures never fail the call.
func Remember[T any](ctx context.Context, s *CacheService, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	var cached T
	if hit, _ := s.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}
	value, err := load(ctx)
	if err != nil {
		return value, false, err
	}
	_ = s.Set(ctx, key, value, ttl)
	return value, false, nil
}

func (s *CacheService) storeLocal(key string, value interface{}, ttl time.Duration) {
	if s.local == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.local.Add(key, localEntry{payload: payload, expires: s.now().Add(ttl)})
}
