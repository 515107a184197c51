package services

import (
	"context"
	"fmt"

	"github.com/newsroomkit/newsroomkit/internal/core"
	"github.com/newsroomkit/newsroomkit/internal/fallback"
)

// AuthorsService serves bylines and the admin author editor.
type AuthorsService struct {
	*base
}

func (s *AuthorsService) List(ctx context.Context) ([]core.Author, error) {
	env, err := s.api.Get(ctx, "/authors")
	if err != nil {
		if s.substitutable(err) {
			s.logFallback("authors", err)
			return fallback.Authors()
		}
		return nil, err
	}

	var authors []core.Author
	if err := env.Decode(&authors); err != nil {
		return nil, fmt.Errorf("authors: %w", err)
	}
	return authors, nil
}

func (s *AuthorsService) Get(ctx context.Context, id string) (*core.Author, error) {
	env, err := s.api.Get(ctx, "/authors/"+id)
	if err != nil {
		return nil, err
	}
	var author core.Author
	if err := env.Decode(&author); err != nil {
		return nil, fmt.Errorf("author %s: %w", id, err)
	}
	return &author, nil
}

func (s *AuthorsService) Create(ctx context.Context, author core.Author) (*core.Author, error) {
	env, err := s.api.Post(ctx, "/admin/authors", author)
	if err != nil {
		return nil, err
	}
	var created core.Author
	if err := env.Decode(&created); err != nil {
		return nil, fmt.Errorf("create author: %w", err)
	}
	return &created, nil
}

func (s *AuthorsService) Update(ctx context.Context, author core.Author) error {
	_, err := s.api.Put(ctx, "/admin/authors/"+author.ID, author)
	return err
}

func (s *AuthorsService) Delete(ctx context.Context, id string) error {
	_, err := s.api.Delete(ctx, "/admin/authors/"+id)
	return err
}
