package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type memoryCacheRepo struct {
	items   map[string][]byte
	deleted []string
	failGet bool
}

func newMemoryCache() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.failGet {
		return errors.New("connection refused")
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheKeysShareLearnerPrefix(t *testing.T) {
	pattern := strings.TrimSuffix(learnerCachePattern("stu-1"), "*")
	assert.True(t, strings.HasPrefix(resultCacheKey("stu-1", "Term 1", "2024/2025"), pattern))
	assert.True(t, strings.HasPrefix(gradeStatsCacheKey("stu-1", "Term 1", "2024/2025"), pattern))
	assert.False(t, strings.HasPrefix(resultCacheKey("stu-10", "Term 1", "2024/2025"), pattern))
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	repo := newMemoryCache()
	cache := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out map[string]int
	assert.False(t, cache.Get(ctx, "academic:stu-1:x", &out))
	cache.Set(ctx, "academic:stu-1:x", map[string]int{"n": 1})
	require.True(t, cache.Get(ctx, "academic:stu-1:x", &out))
	assert.Equal(t, 1, out["n"])

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.Equal(t, 0.5, snap.CacheHitRatio)

	cache.InvalidateLearner(ctx, "stu-1")
	assert.False(t, cache.Get(ctx, "academic:stu-1:x", &out))
}

func TestCacheServiceDisabledAndFailuresAreSilent(t *testing.T) {
	ctx := context.Background()
	var out map[string]int

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	assert.False(t, nilCache.Get(ctx, "k", &out))
	nilCache.Set(ctx, "k", 1)
	nilCache.InvalidateLearner(ctx, "stu-1")

	repo := newMemoryCache()
	disabled := NewCacheService(repo, nil, 0, nil, false)
	disabled.Set(ctx, "k", 1)
	assert.Empty(t, repo.items)

	repo.failGet = true
	broken := NewCacheService(repo, nil, 0, nil, true)
	assert.False(t, broken.Get(ctx, "k", &out))
}
