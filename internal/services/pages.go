package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/newsroomkit/newsroomkit/internal/core"
	"github.com/newsroomkit/newsroomkit/internal/fallback"
)

// PagesService serves editor-managed static pages (about, imprint, ...).
type PagesService struct {
	*base
}

func (s *PagesService) List(ctx context.Context) ([]core.StaticPage, error) {
	env, err := s.api.Get(ctx, "/pages")
	if err != nil {
		if s.substitutable(err) {
			s.logFallback("pages", err)
			return fallback.StaticPages()
		}
		return nil, err
	}

	var pages []core.StaticPage
	if err := env.Decode(&pages); err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	return pages, nil
}

// GetBySlug resolves a page by its URL slug, falling back to the static
// dataset so the site chrome (about/contact links) keeps working offline.
func (s *PagesService) GetBySlug(ctx context.Context, slug string) (*core.StaticPage, error) {
	env, err := s.api.Get(ctx, "/pages/"+url.PathEscape(slug))
	if err != nil {
		if s.substitutable(err) {
			s.logFallback("pages", err)
			pages, ferr := fallback.StaticPages()
			if ferr != nil {
				return nil, err
			}
			for i := range pages {
				if pages[i].Slug == slug {
					return &pages[i], nil
				}
			}
		}
		return nil, err
	}

	var page core.StaticPage
	if err := env.Decode(&page); err != nil {
		return nil, fmt.Errorf("page %s: %w", slug, err)
	}
	return &page, nil
}

func (s *PagesService) Create(ctx context.Context, page core.StaticPage) (*core.StaticPage, error) {
	env, err := s.api.Post(ctx, "/admin/pages", page)
	if err != nil {
		return nil, err
	}
	var created core.StaticPage
	if err := env.Decode(&created); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &created, nil
}

func (s *PagesService) Update(ctx context.Context, page core.StaticPage) error {
	_, err := s.api.Put(ctx, "/admin/pages/"+page.ID, page)
	return err
}

func (s *PagesService) Delete(ctx context.Context, id string) error {
	_, err := s.api.Delete(ctx, "/admin/pages/"+id)
	return err
}
