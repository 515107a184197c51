package services

import (
	"context"
	"fmt"

	"github.com/newsroomkit/newsroomkit/internal/core"
	"github.com/newsroomkit/newsroomkit/internal/fallback"
)

const cacheKeyBreaking = "breaking"

// BreakingService serves the breaking-news ticker. The public site polls
// this, so reads are cached briefly.
type BreakingService struct {
	*base
}

// Active returns the currently active ticker items.
func (s *BreakingService) Active(ctx context.Context) ([]core.BreakingNews, error) {
	var cached []core.BreakingNews
	if s.cache.get(cacheKeyBreaking, &cached) {
		return cached, nil
	}

	env, err := s.api.Get(ctx, "/breaking-news")
	if err != nil {
		if s.substitutable(err) {
			s.logFallback("breaking-news", err)
			return fallback.BreakingNews()
		}
		return nil, err
	}

	var items []core.BreakingNews
	if err := env.Decode(&items); err != nil {
		return nil, fmt.Errorf("breaking news: %w", err)
	}
	s.cache.put(cacheKeyBreaking, items)
	return items, nil
}

// Set replaces the active ticker item via the admin API.
func (s *BreakingService) Set(ctx context.Context, item core.BreakingNews) error {
	if _, err := s.api.Put(ctx, "/admin/breaking-news", item); err != nil {
		return err
	}
	s.cache.invalidate(cacheKeyBreaking)
	return nil
}

// Clear deactivates the ticker via the admin API.
func (s *BreakingService) Clear(ctx context.Context) error {
	if _, err := s.api.Delete(ctx, "/admin/breaking-news"); err != nil {
		return err
	}
	s.cache.invalidate(cacheKeyBreaking)
	return nil
}
