// Package services holds the feature-level data access modules the site and
// the admin CMS are built on. Each service wraps the HTTP facade, decodes
// envelopes into domain types, and — for the read endpoints the fallback
// dataset covers — substitutes static data when the facade reports a
// fallback-eligible failure.
package services

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/newsroomkit/newsroomkit/internal/apiclient"
)

// API is the slice of the HTTP facade the services consume. Satisfied by
// *apiclient.Client; tests substitute fakes.
type API interface {
	Get(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Envelope, error)
	Post(ctx context.Context, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Envelope, error)
	Put(ctx context.Context, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Envelope, error)
	Patch(ctx context.Context, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Envelope, error)
	Delete(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Envelope, error)
}

// Options tunes the service layer.
type Options struct {
	// FallbackEnabled additionally substitutes fallback data for network
	// failures, not just fallback-eligible 404s. Meant for development-like
	// modes where the backend may simply not be running.
	FallbackEnabled bool

	// Read cache for hot GET endpoints (categories, settings, breaking).
	CacheSize int
	CacheTTL  time.Duration

	Logger *logging.Logger
}

// Services bundles all feature modules over one facade.
type Services struct {
	Categories *CategoriesService
	Authors    *AuthorsService
	Articles   *ArticlesService
	Images     *ImagesService
	Pages      *PagesService
	Settings   *SettingsService
	Breaking   *BreakingService
	Contact    *ContactService
}

// New wires every feature service around the given facade.
func New(api API, opts Options) *Services {
	b := &base{
		api:             api,
		fallbackEnabled: opts.FallbackEnabled,
		cache:           newReadCache(opts.CacheSize, opts.CacheTTL),
		logger:          opts.Logger,
	}
	return &Services{
		Categories: &CategoriesService{base: b},
		Authors:    &AuthorsService{base: b},
		Articles:   &ArticlesService{base: b},
		Images:     &ImagesService{base: b},
		Pages:      &PagesService{base: b},
		Settings:   &SettingsService{base: b},
		Breaking:   &BreakingService{base: b},
		Contact:    &ContactService{base: b},
	}
}

type base struct {
	api             API
	fallbackEnabled bool
	cache           *readCache
	logger          *logging.Logger
}

// substitutable decides whether a failed read may be answered from the
// fallback dataset: always for fallback-eligible 404s, and for network
// failures when fallback mode is on.
func (b *base) substitutable(err error) bool {
	if apiclient.IsFallbackEligible(err) {
		return true
	}
	return b.fallbackEnabled && apiclient.IsNetworkFailure(err)
}

func (b *base) logFallback(resource string, err error) {
	if b.logger != nil {
		b.logger.Warn("serving fallback data",
			zap.String("resource", resource),
			zap.String("reason", err.Error()))
	}
}
