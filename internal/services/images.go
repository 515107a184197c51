package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/newsroomkit/newsroomkit/internal/core"
	"github.com/newsroomkit/newsroomkit/internal/fallback"
)

// ImagesService serves the media library and the admin upload form.
type ImagesService struct {
	*base
}

func (s *ImagesService) List(ctx context.Context) ([]core.Image, error) {
	env, err := s.api.Get(ctx, "/images")
	if err != nil {
		if s.substitutable(err) {
			s.logFallback("images", err)
			return fallback.Images()
		}
		return nil, err
	}

	var images []core.Image
	if err := env.Decode(&images); err != nil {
		return nil, fmt.Errorf("images: %w", err)
	}
	return images, nil
}

type uploadRequest struct {
	Filename string `json:"filename"`
	AltText  string `json:"altText,omitempty"`
	Content  string `json:"content"` // base64
}

// Upload sends image bytes to the admin media endpoint and returns the
// stored asset reference.
func (s *ImagesService) Upload(ctx context.Context, filename, altText string, data []byte) (*core.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("upload %s: empty image", filename)
	}
	env, err := s.api.Post(ctx, "/admin/images", uploadRequest{
		Filename: filename,
		AltText:  altText,
		Content:  base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, err
	}
	var image core.Image
	if err := env.Decode(&image); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	return &image, nil
}

func (s *ImagesService) Delete(ctx context.Context, id string) error {
	_, err := s.api.Delete(ctx, "/admin/images/"+id)
	return err
}
