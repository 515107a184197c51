// Package fallback supplies canned successful responses for the read
// endpoints when the backend cannot. It is a pure, deterministic mapping
// from resource kind to static data; feature services decide when to use
// it, the HTTP facade never does.
package fallback

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/newsroomkit/newsroomkit/internal/apiclient"
	"github.com/newsroomkit/newsroomkit/internal/core"
)

// Kind names a fallback-capable resource collection.
type Kind string

const (
	KindCategories   Kind = "categories"
	KindAuthors      Kind = "authors"
	KindArticles     Kind = "articles"
	KindImages       Kind = "images"
	KindBreakingNews Kind = "breaking-news"
	KindStaticPages  Kind = "static-pages"
)

//go:embed data.yaml
var rawDataset []byte

type dataset struct {
	Categories   []core.Category     `yaml:"categories"`
	Authors      []core.Author       `yaml:"authors"`
	Articles     []core.Article      `yaml:"articles"`
	Images       []core.Image        `yaml:"images"`
	BreakingNews []core.BreakingNews `yaml:"breaking_news"`
	StaticPages  []core.StaticPage   `yaml:"static_pages"`
}

var (
	loadOnce sync.Once
	loaded   dataset
	loadErr  error
)

func load() (*dataset, error) {
	loadOnce.Do(func() {
		loadErr = yaml.Unmarshal(rawDataset, &loaded)
	})
	if loadErr != nil {
		return nil, fmt.Errorf("parse fallback dataset: %w", loadErr)
	}
	return &loaded, nil
}

// Supply returns the canned success envelope for a resource kind.
func Supply(kind Kind) (*apiclient.Envelope, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindCategories:
		return apiclient.NewEnvelope(d.Categories)
	case KindAuthors:
		return apiclient.NewEnvelope(d.Authors)
	case KindArticles:
		return apiclient.NewEnvelope(d.Articles)
	case KindImages:
		return apiclient.NewEnvelope(d.Images)
	case KindBreakingNews:
		return apiclient.NewEnvelope(d.BreakingNews)
	case KindStaticPages:
		return apiclient.NewEnvelope(d.StaticPages)
	default:
		return nil, fmt.Errorf("no fallback data for kind %q", kind)
	}
}

// Typed accessors for callers that want the data rather than an envelope.

func Categories() ([]core.Category, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	return d.Categories, nil
}

func Authors() ([]core.Author, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	return d.Authors, nil
}

func Articles() ([]core.Article, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	return d.Articles, nil
}

func Images() ([]core.Image, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	return d.Images, nil
}

func BreakingNews() ([]core.BreakingNews, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	return d.BreakingNews, nil
}

func StaticPages() ([]core.StaticPage, error) {
	d, err := load()
	if err != nil {
		return nil, err
	}
	return d.StaticPages, nil
}
