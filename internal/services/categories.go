package services

import (
	"context"
	"fmt"

	"github.com/newsroomkit/newsroomkit/internal/core"
	"github.com/newsroomkit/newsroomkit/internal/fallback"
)

const cacheKeyCategories = "categories"

// CategoriesService serves the public category navigation and the admin
// category editor.
type CategoriesService struct {
	*base
}

// List returns all categories, cached briefly; falls back to the static
// dataset on eligible failures.
func (s *CategoriesService) List(ctx context.Context) ([]core.Category, error) {
	var cached []core.Category
	if s.cache.get(cacheKeyCategories, &cached) {
		return cached, nil
	}

	env, err := s.api.Get(ctx, "/categories")
	if err != nil {
		if s.substitutable(err) {
			s.logFallback("categories", err)
			return fallback.Categories()
		}
		return nil, err
	}

	var categories []core.Category
	if err := env.Decode(&categories); err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	s.cache.put(cacheKeyCategories, categories)
	return categories, nil
}

// Get returns one category by id.
func (s *CategoriesService) Get(ctx context.Context, id string) (*core.Category, error) {
	env, err := s.api.Get(ctx, "/categories/"+id)
	if err != nil {
		return nil, err
	}
	var category core.Category
	if err := env.Decode(&category); err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}
	return &category, nil
}

// Create adds a category via the admin API.
func (s *CategoriesService) Create(ctx context.Context, category core.Category) (*core.Category, error) {
	env, err := s.api.Post(ctx, "/admin/categories", category)
	if err != nil {
		return nil, err
	}
	var created core.Category
	if err := env.Decode(&created); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.cache.invalidate(cacheKeyCategories)
	return &created, nil
}

// Update replaces a category via the admin API.
func (s *CategoriesService) Update(ctx context.Context, category core.Category) error {
	if _, err := s.api.Put(ctx, "/admin/categories/"+category.ID, category); err != nil {
		return err
	}
	s.cache.invalidate(cacheKeyCategories)
	return nil
}

// Delete removes a category via the admin API.
func (s *CategoriesService) Delete(ctx context.Context, id string) error {
	if _, err := s.api.Delete(ctx, "/admin/categories/"+id); err != nil {
		return err
	}
	s.cache.invalidate(cacheKeyCategories)
	return nil
}
