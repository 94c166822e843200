package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"vaccitrack/internal/domain/model"
	"vaccitrack/internal/domain/repository"

	"go.uber.org/zap"
)

const (
	statsCacheKey        = "stats:users"
	DefaultStatsCacheTTL = 60 * time.Second
)

// SnapshotCache is the subset of cache.JSONStore the stats service needs.
// Get returns (nil, nil) on a miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type StatsService struct {
	userRepo repository.UserRepository
	cache    SnapshotCache
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewStatsService builds the service; cache may be nil, in which case
// GetStats always computes from the store.
func NewStatsService(userRepo repository.UserRepository, cache SnapshotCache, ttl time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultStatsCacheTTL
	}
	return &StatsService{
		userRepo: userRepo,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.Named("stats"),
		now:      time.Now,
	}
}

func (s *StatsService) GetStatsAccurate(ctx context.Context) (*model.Stats, error) {
	buckets, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate user stats: %w", err)
	}
	return model.NewStats(buckets, s.now()), nil
}

// GetStats serves a cached snapshot when one is fresh. Cache failures are
// logged and never fail the request.
func (s *StatsService) GetStats(ctx context.Context) (*model.Stats, error) {
	if s.cache == nil {
		return s.GetStatsAccurate(ctx)
	}

	raw, err := s.cache.Get(ctx, statsCacheKey)
	if err != nil {
		s.logger.Warn("stats cache read failed", zap.Error(err))
	} else if raw != nil {
		var cached model.Stats
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		s.logger.Warn("discarding malformed stats snapshot")
	}

	stats, err := s.GetStatsAccurate(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stats snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, statsCacheKey, payload, s.ttl); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
	return stats, nil
}
