package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/newsroomkit/newsroomkit/internal/apiclient"
	"github.com/newsroomkit/newsroomkit/internal/core"
)

// fakeAPI scripts the facade: each path maps to a canned envelope or error.
type fakeAPI struct {
	responses map[string]*apiclient.Envelope
	errs      map[string]error
	calls     []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		responses: map[string]*apiclient.Envelope{},
		errs:      map[string]error{},
	}
}

func (f *fakeAPI) respond(path string, payload any) {
	env, err := apiclient.NewEnvelope(payload)
	if err != nil {
		panic(err)
	}
	f.responses[path] = env
}

func (f *fakeAPI) dispatch(method, path string) (*apiclient.Envelope, error) {
	key := method + " " + path
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if env, ok := f.responses[key]; ok {
		return env, nil
	}
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	if env, ok := f.responses[path]; ok {
		return env, nil
	}
	return &apiclient.Envelope{Success: true}, nil
}

func (f *fakeAPI) Get(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Envelope, error) {
	return f.dispatch("GET", path)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Envelope, error) {
	return f.dispatch("POST", path)
}

func (f *fakeAPI) Put(ctx context.Context, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Envelope, error) {
	return f.dispatch("PUT", path)
}

func (f *fakeAPI) Patch(ctx context.Context, path string, body any, opts ...apiclient.RequestOption) (*apiclient.Envelope, error) {
	return f.dispatch("PATCH", path)
}

func (f *fakeAPI) Delete(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Envelope, error) {
	return f.dispatch("DELETE", path)
}

func notFoundEligible() error {
	return &apiclient.APIError{
		Kind:             apiclient.KindNotFound,
		Status:           404,
		Message:          "not found",
		FallbackEligible: true,
	}
}

func networkDown() error {
	return &apiclient.APIError{
		Kind:    apiclient.KindNetworkUnreachable,
		Message: "connection refused",
	}
}

func TestCategoriesListDecodesEnvelope(t *testing.T) {
	api := newFakeAPI()
	api.respond("/categories", []core.Category{{ID: "c1", Name: "Politics", Slug: "politics"}})

	svc := New(api, Options{})
	categories, err := svc.Categories.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, "Politics", categories[0].Name)
}

func TestCategoriesListServesFallbackOnEligible404(t *testing.T) {
	api := newFakeAPI()
	api.errs["/categories"] = notFoundEligible()

	svc := New(api, Options{})
	categories, err := svc.Categories.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, categories, "static dataset substitutes the failed read")
}

func TestNetworkFailureSubstitutesOnlyInFallbackMode(t *testing.T) {
	api := newFakeAPI()
	api.errs["/categories"] = networkDown()

	strict := New(api, Options{FallbackEnabled: false})
	_, err := strict.Categories.List(context.Background())
	require.Error(t, err)
	require.Equal(t, apiclient.KindNetworkUnreachable, apiclient.KindOf(err))

	lenient := New(api, Options{FallbackEnabled: true})
	categories, err := lenient.Categories.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, categories)
}

func TestCategoriesListIsCached(t *testing.T) {
	api := newFakeAPI()
	api.respond("/categories", []core.Category{{ID: "c1", Name: "Sports", Slug: "sports"}})

	svc := New(api, Options{CacheTTL: time.Minute})
	_, err := svc.Categories.List(context.Background())
	require.NoError(t, err)
	_, err = svc.Categories.List(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"GET /categories"}, api.calls, "second read served from cache")
}

func TestCategoryMutationsInvalidateCache(t *testing.T) {
	api := newFakeAPI()
	api.respond("/categories", []core.Category{{ID: "c1", Name: "Sports", Slug: "sports"}})
	api.respond("POST /admin/categories", core.Category{ID: "c2", Name: "Tech", Slug: "tech"})

	svc := New(api, Options{CacheTTL: time.Minute})
	_, err := svc.Categories.List(context.Background())
	require.NoError(t, err)

	_, err = svc.Categories.Create(context.Background(), core.Category{Name: "Tech", Slug: "tech"})
	require.NoError(t, err)

	_, err = svc.Categories.List(context.Background())
	require.NoError(t, err)

	var gets int
	for _, call := range api.calls {
		if call == "GET /categories" {
			gets++
		}
	}
	require.Equal(t, 2, gets, "create invalidated the cached listing")
}

func TestArticlesListBuildsQuery(t *testing.T) {
	api := newFakeAPI()
	api.respond("/articles?category=c1&limit=10", []core.Article{{ID: "a1", Title: "Hello"}})

	svc := New(api, Options{})
	articles, err := svc.Articles.List(context.Background(), ListOptions{CategoryID: "c1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, []string{"GET /articles?category=c1&limit=10"}, api.calls)
}

func TestArticlesListFallsBackOnEligibleFailure(t *testing.T) {
	api := newFakeAPI()
	api.errs["/articles"] = notFoundEligible()

	svc := New(api, Options{})
	articles, err := svc.Articles.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "1", articles[0].ID)
}

func TestArticleGetDoesNotFallBack(t *testing.T) {
	api := newFakeAPI()
	api.errs["/articles/42"] = notFoundEligible()

	svc := New(api, Options{})
	_, err := svc.Articles.Get(context.Background(), "42")
	require.Error(t, err, "single-resource reads surface the miss")
	require.Equal(t, apiclient.KindNotFound, apiclient.KindOf(err))
}

func TestArticlePublishPatchesAdminPath(t *testing.T) {
	api := newFakeAPI()
	svc := New(api, Options{})
	require.NoError(t, svc.Articles.Publish(context.Background(), "a1", true))
	require.Equal(t, []string{"PATCH /admin/articles/a1"}, api.calls)
}

func TestBreakingActiveCachesAndClearInvalidates(t *testing.T) {
	api := newFakeAPI()
	api.respond("/breaking-news", []core.BreakingNews{{ID: "b1", Headline: "Snow closes schools", Active: true}})

	svc := New(api, Options{CacheTTL: time.Minute})
	items, err := svc.Breaking.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = svc.Breaking.Active(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"GET /breaking-news"}, api.calls)

	require.NoError(t, svc.Breaking.Clear(context.Background()))
	_, err = svc.Breaking.Active(context.Background())
	require.NoError(t, err)

	var gets int
	for _, call := range api.calls {
		if call == "GET /breaking-news" {
			gets++
		}
	}
	require.Equal(t, 2, gets)
}

func TestContactSendValidatesInput(t *testing.T) {
	api := newFakeAPI()
	svc := New(api, Options{})

	err := svc.Contact.Send(context.Background(), core.ContactMessage{Email: "  ", Body: "hi"})
	require.Error(t, err)
	require.Empty(t, api.calls, "invalid messages never hit the network")

	err = svc.Contact.Send(context.Background(), core.ContactMessage{
		Name:  "Reader",
		Email: "reader@example.com",
		Body:  "Love the site",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"POST /contact"}, api.calls)
}
