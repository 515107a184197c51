package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/newsroomkit/newsroomkit/internal/core"
	"github.com/newsroomkit/newsroomkit/internal/fallback"
)

// ArticlesService serves article listings, single-article pages and the
// admin article editor.
type ArticlesService struct {
	*base
}

// ListOptions filter an article listing.
type ListOptions struct {
	CategoryID string
	Limit      int
	Offset     int
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.CategoryID != "" {
		q.Set("category", o.CategoryID)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// List returns articles matching the options; falls back to the static
// dataset on eligible failures.
func (s *ArticlesService) List(ctx context.Context, opts ListOptions) ([]core.Article, error) {
	env, err := s.api.Get(ctx, "/articles"+opts.query())
	if err != nil {
		if s.substitutable(err) {
			s.logFallback("articles", err)
			return fallback.Articles()
		}
		return nil, err
	}

	var articles []core.Article
	if err := env.Decode(&articles); err != nil {
		return nil, fmt.Errorf("articles: %w", err)
	}
	return articles, nil
}

// Get returns one article by id.
func (s *ArticlesService) Get(ctx context.Context, id string) (*core.Article, error) {
	env, err := s.api.Get(ctx, "/articles/"+id)
	if err != nil {
		return nil, err
	}
	var article core.Article
	if err := env.Decode(&article); err != nil {
		return nil, fmt.Errorf("article %s: %w", id, err)
	}
	return &article, nil
}

// GetBySlug resolves an article by its URL slug.
func (s *ArticlesService) GetBySlug(ctx context.Context, slug string) (*core.Article, error) {
	env, err := s.api.Get(ctx, "/articles/slug/"+url.PathEscape(slug))
	if err != nil {
		return nil, err
	}
	var article core.Article
	if err := env.Decode(&article); err != nil {
		return nil, fmt.Errorf("article %s: %w", slug, err)
	}
	return &article, nil
}

// Create adds an article via the admin API.
func (s *ArticlesService) Create(ctx context.Context, article core.Article) (*core.Article, error) {
	env, err := s.api.Post(ctx, "/admin/articles", article)
	if err != nil {
		return nil, err
	}
	var created core.Article
	if err := env.Decode(&created); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return &created, nil
}

// Update replaces an article via the admin API.
func (s *ArticlesService) Update(ctx context.Context, article core.Article) error {
	_, err := s.api.Put(ctx, "/admin/articles/"+article.ID, article)
	return err
}

// Publish flips the published flag without resubmitting the body.
func (s *ArticlesService) Publish(ctx context.Context, id string, published bool) error {
	_, err := s.api.Patch(ctx, "/admin/articles/"+id, map[string]bool{"published": published})
	return err
}

// Delete removes an article via the admin API.
func (s *ArticlesService) Delete(ctx context.Context, id string) error {
	_, err := s.api.Delete(ctx, "/admin/articles/"+id)
	return err
}
