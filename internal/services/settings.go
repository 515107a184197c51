package services

import (
	"context"
	"fmt"

	"github.com/newsroomkit/newsroomkit/internal/core"
)

const cacheKeySettings = "settings"

// SettingsService serves the admin site-settings panel. There is no
// fallback for settings: the admin UI needs the real state or an error.
type SettingsService struct {
	*base
}

func (s *SettingsService) Get(ctx context.Context) (*core.SiteSettings, error) {
	var cached core.SiteSettings
	if s.cache.get(cacheKeySettings, &cached) {
		return &cached, nil
	}

	env, err := s.api.Get(ctx, "/settings")
	if err != nil {
		return nil, err
	}
	var settings core.SiteSettings
	if err := env.Decode(&settings); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	s.cache.put(cacheKeySettings, settings)
	return &settings, nil
}

func (s *SettingsService) Update(ctx context.Context, settings core.SiteSettings) error {
	if _, err := s.api.Put(ctx, "/admin/settings", settings); err != nil {
		return err
	}
	s.cache.invalidate(cacheKeySettings)
	return nil
}
