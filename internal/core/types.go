// Package core defines the domain types shared by the API client, the
// feature services, the fallback dataset and the CLI.
package core

import "time"

// Category is a news section (politics, sports, ...).
type Category struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Slug     string `json:"slug" yaml:"slug"`
	Color    string `json:"color,omitempty" yaml:"color,omitempty"`
	Position int    `json:"position,omitempty" yaml:"position,omitempty"`
}

// Author is a byline entry.
type Author struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email,omitempty" yaml:"email,omitempty"`
	Bio    string `json:"bio,omitempty" yaml:"bio,omitempty"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Article is a published or draft news article.
type Article struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Slug        string     `json:"slug" yaml:"slug"`
	Excerpt     string     `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Body        string     `json:"body,omitempty" yaml:"body,omitempty"`
	CategoryID  string     `json:"categoryId,omitempty" yaml:"category_id,omitempty"`
	AuthorID    string     `json:"authorId,omitempty" yaml:"author_id,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty" yaml:"cover_image,omitempty"`
	Published   bool       `json:"published" yaml:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"published_at,omitempty"`
}

// Image is an uploaded media asset reference.
type Image struct {
	ID       string `json:"id" yaml:"id"`
	URL      string `json:"url" yaml:"url"`
	AltText  string `json:"altText,omitempty" yaml:"alt_text,omitempty"`
	Width    int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int    `json:"height,omitempty" yaml:"height,omitempty"`
	MimeType string `json:"mimeType,omitempty" yaml:"mime_type,omitempty"`
}

// BreakingNews is the ticker item shown above the fold.
type BreakingNews struct {
	ID        string     `json:"id" yaml:"id"`
	Headline  string     `json:"headline" yaml:"headline"`
	ArticleID string     `json:"articleId,omitempty" yaml:"article_id,omitempty"`
	Active    bool       `json:"active" yaml:"active"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" yaml:"expires_at,omitempty"`
}

// StaticPage is editor-managed content (about, imprint, privacy, ...).
type StaticPage struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Slug  string `json:"slug" yaml:"slug"`
	Body  string `json:"body,omitempty" yaml:"body,omitempty"`
}

// SiteSettings is the admin-editable site configuration blob.
type SiteSettings struct {
	SiteName      string            `json:"siteName" yaml:"site_name"`
	Tagline       string            `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	ContactEmail  string            `json:"contactEmail,omitempty" yaml:"contact_email,omitempty"`
	SocialLinks   map[string]string `json:"socialLinks,omitempty" yaml:"social_links,omitempty"`
	MaintenanceOn bool              `json:"maintenanceOn,omitempty" yaml:"maintenance_on,omitempty"`
}

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Subject string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Body    string `json:"body" yaml:"body"`
}

// User is the authenticated CMS user profile persisted alongside the
// credential in the session store.
type User struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}
