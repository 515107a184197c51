package output

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/newsroomkit/newsroomkit/internal/core"
)

// CategoriesTable renders categories as an ASCII table.
func CategoriesTable(categories []core.Category) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Slug", "Position"})
	for _, c := range categories {
		t.AppendRow(table.Row{c.ID, c.Name, c.Slug, c.Position})
	}
	return t.Render()
}

// ArticlesTable renders an article listing as an ASCII table.
func ArticlesTable(articles []core.Article) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Title", "Category", "Published", "Published At"})
	for _, a := range articles {
		t.AppendRow(table.Row{a.ID, a.Title, a.CategoryID, publishedLabel(a), publishedAt(a)})
	}
	return t.Render()
}

// BreakingTable renders ticker items as an ASCII table.
func BreakingTable(items []core.BreakingNews) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Headline", "Active"})
	for _, b := range items {
		t.AppendRow(table.Row{b.ID, b.Headline, b.Active})
	}
	return t.Render()
}

func publishedLabel(a core.Article) string {
	if a.Published {
		return "yes"
	}
	return "draft"
}

func publishedAt(a core.Article) string {
	if a.PublishedAt == nil {
		return ""
	}
	return a.PublishedAt.Format(time.RFC3339)
}
