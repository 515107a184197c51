package fallback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newsroomkit/newsroomkit/internal/core"
)

func TestDatasetParsesAndCoversEveryKind(t *testing.T) {
	kinds := []Kind{
		KindCategories, KindAuthors, KindArticles,
		KindImages, KindBreakingNews, KindStaticPages,
	}
	for _, kind := range kinds {
		env, err := Supply(kind)
		require.NoError(t, err, "kind %s", kind)
		require.True(t, env.Success)
		require.NotEmpty(t, env.Data)
	}
}

func TestSupplyRejectsUnknownKind(t *testing.T) {
	_, err := Supply(Kind("podcasts"))
	require.Error(t, err)
}

func TestArticlesDataset(t *testing.T) {
	articles, err := Articles()
	require.NoError(t, err)
	require.Len(t, articles, 1)
	require.Equal(t, "1", articles[0].ID)
	require.NotEmpty(t, articles[0].Title)
	require.NotEmpty(t, articles[0].Slug)
}

func TestCategoriesDataset(t *testing.T) {
	categories, err := Categories()
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	for _, c := range categories {
		require.NotEmpty(t, c.ID)
		require.NotEmpty(t, c.Name)
		require.NotEmpty(t, c.Slug)
	}
}

func TestSupplyEnvelopeDecodesIntoDomainTypes(t *testing.T) {
	env, err := Supply(KindBreakingNews)
	require.NoError(t, err)

	var items []core.BreakingNews
	require.NoError(t, env.Decode(&items))
	require.NotEmpty(t, items)
}

func TestStaticPagesIncludeAboutAndContact(t *testing.T) {
	pages, err := StaticPages()
	require.NoError(t, err)

	slugs := make(map[string]bool, len(pages))
	for _, p := range pages {
		slugs[p.Slug] = true
	}
	require.True(t, slugs["about"])
	require.True(t, slugs["contact"])
}
