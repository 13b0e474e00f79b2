package redis

import (
	"context"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE
// Typed cache for school-wide aggregates. A toggled mark invalidates both
// keys so users never see a stale school summary for longer than the TTL.
// ══════════════════════════════════════════════════════════════════════════════

// Cache keys for school-wide aggregates.
const (
	keySchoolStats     = PrefixStats + "school"
	keyMostActiveClass = PrefixStats + "most_active_class"
)

// StatsCache caches school-wide statistics.
type StatsCache struct {
	cache *Cache
}

// NewStatsCache creates a new StatsCache.
func NewStatsCache(cache *Cache) *StatsCache {
	return &StatsCache{cache: cache}
}

// mostActiveEntry is the stored form of the most-active-class answer.
type mostActiveEntry struct {
	Class string `json:"class"`
	Count int    `json:"count"`
}

// GetSchoolStats returns cached school-wide stats.
// Returns ErrCacheMiss when absent or expired.
func (s *StatsCache) GetSchoolStats(ctx context.Context) (*checkin.ScopeStats, error) {
	var stats checkin.ScopeStats
	if err := s.cache.Get(ctx, keySchoolStats, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// SetSchoolStats stores school-wide stats.
func (s *StatsCache) SetSchoolStats(ctx context.Context, stats *checkin.ScopeStats) error {
	return s.cache.Set(ctx, keySchoolStats, stats, TTLSchoolStats)
}

// GetMostActiveClass returns the cached weekly most-active-class answer.
// Returns ErrCacheMiss when absent or expired.
func (s *StatsCache) GetMostActiveClass(ctx context.Context) (user.Class, int, error) {
	var entry mostActiveEntry
	if err := s.cache.Get(ctx, keyMostActiveClass, &entry); err != nil {
		return user.None, 0, err
	}
	return user.Class(entry.Class), entry.Count, nil
}

// SetMostActiveClass stores the weekly most-active-class answer.
func (s *StatsCache) SetMostActiveClass(ctx context.Context, class user.Class, count int) error {
	return s.cache.Set(ctx, keyMostActiveClass, mostActiveEntry{
		Class: class.String(),
		Count: count,
	}, TTLMostActiveClass)
}

// Invalidate drops all cached school aggregates.
func (s *StatsCache) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, keySchoolStats, keyMostActiveClass)
}
