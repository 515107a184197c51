package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/newsroomkit/newsroomkit/internal/core"
)

// ContactService submits the public contact form. No fallback: a message
// either reaches the backend or the user sees the error.
type ContactService struct {
	*base
}

func (s *ContactService) Send(ctx context.Context, msg core.ContactMessage) error {
	if strings.TrimSpace(msg.Email) == "" || strings.TrimSpace(msg.Body) == "" {
		return fmt.Errorf("contact message needs an email and a body")
	}
	_, err := s.api.Post(ctx, "/contact", msg)
	return err
}
