// Package devstub is a local stand-in for the real CMS backend: it serves
// the fallback dataset over the same envelope API the client expects, mints
// short-lived credentials, and accepts admin mutations in memory. Used by
// `newsroomkit serve-stub` and by integration-style tests.
package devstub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/newsroomkit/newsroomkit/internal/apiclient"
	"github.com/newsroomkit/newsroomkit/internal/core"
	"github.com/newsroomkit/newsroomkit/internal/fallback"
)

// Server is the dev stub HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	host   string
	port   int
	logger *logging.Logger
	secret []byte

	mu   sync.Mutex
	data *stubData
}

// stubData is the mutable in-memory content, seeded from the fallback
// dataset.
type stubData struct {
	categories []core.Category
	authors    []core.Author
	articles   []core.Article
	images     []core.Image
	breaking   []core.BreakingNews
	pages      []core.StaticPage
	settings   core.SiteSettings
	nextID     int
}

// New builds a stub server. secret signs the minted credentials; logger may
// be nil.
func New(host string, port int, secret string, logger *logging.Logger) (*Server, error) {
	data, err := seed()
	if err != nil {
		return nil, err
	}

	s := &Server{
		host:   host,
		port:   port,
		logger: logger,
		secret: []byte(secret),
		data:   data,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(s.requestID)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}).Handler)

	r.Route("/api", s.registerRoutes)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		s.writeError(w, http.StatusNotFound, "the requested resource was not found")
	})

	s.router = r
	return s, nil
}

func seed() (*stubData, error) {
	categories, err := fallback.Categories()
	if err != nil {
		return nil, fmt.Errorf("seed stub: %w", err)
	}
	authors, _ := fallback.Authors()
	articles, _ := fallback.Articles()
	images, _ := fallback.Images()
	breaking, _ := fallback.BreakingNews()
	pages, _ := fallback.StaticPages()

	return &stubData{
		categories: append([]core.Category(nil), categories...),
		authors:    append([]core.Author(nil), authors...),
		articles:   append([]core.Article(nil), articles...),
		images:     append([]core.Image(nil), images...),
		breaking:   append([]core.BreakingNews(nil), breaking...),
		pages:      append([]core.StaticPage(nil), pages...),
		settings: core.SiteSettings{
			SiteName:     "Newsroom (stub)",
			ContactEmail: "staff@example.com",
		},
		nextID: 100,
	}, nil
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/health", s.handleHealth)

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/refresh", s.handleRefresh)

	r.Get("/categories", s.handleListCategories)
	r.Get("/authors", s.handleListAuthors)
	r.Get("/articles", s.handleListArticles)
	r.Get("/articles/slug/{slug}", s.handleGetArticleBySlug)
	r.Get("/articles/{id}", s.handleGetArticle)
	r.Get("/images", s.handleListImages)
	r.Get("/breaking-news", s.handleListBreaking)
	r.Get("/pages", s.handleListPages)
	r.Get("/pages/{slug}", s.handleGetPage)
	r.Get("/settings", s.handleGetSettings)

	r.Post("/contact", s.handleContact)

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(s.requireAuth)
		admin.Post("/categories", s.handleCreateCategory)
		admin.Put("/categories/{id}", s.handleUpdateCategory)
		admin.Delete("/categories/{id}", s.handleDeleteCategory)
		admin.Post("/authors", s.handleCreateAuthor)
		admin.Put("/authors/{id}", s.handleUpdateAuthor)
		admin.Delete("/authors/{id}", s.handleDeleteAuthor)
		admin.Post("/articles", s.handleCreateArticle)
		admin.Put("/articles/{id}", s.handleUpdateArticle)
		admin.Patch("/articles/{id}", s.handlePatchArticle)
		admin.Delete("/articles/{id}", s.handleDeleteArticle)
		admin.Post("/images", s.handleUploadImage)
		admin.Delete("/images/{id}", s.handleDeleteImage)
		admin.Post("/pages", s.handleCreatePage)
		admin.Put("/pages/{id}", s.handleUpdatePage)
		admin.Delete("/pages/{id}", s.handleDeletePage)
		admin.Put("/settings", s.handleUpdateSettings)
		admin.Put("/breaking-news", s.handleSetBreaking)
		admin.Delete("/breaking-news", s.handleClearBreaking)
	})
}

// Start runs the server until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if s.logger != nil {
		s.logger.Info("Starting dev stub server", zap.String("addr", addr))
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("Shutting down dev stub server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// requestID mirrors the client's correlation header.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// Handlers.

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeData(w, map[string]string{"status": "ok"})
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeData(w, s.data.categories)
}

func (s *Server) handleListAuthors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeData(w, s.data.authors)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	s.mu.Lock()
	defer s.mu.Unlock()
	if category == "" {
		s.writeData(w, s.data.articles)
		return
	}
	matched := make([]core.Article, 0, len(s.data.articles))
	for _, a := range s.data.articles {
		if a.CategoryID == category {
			matched = append(matched, a)
		}
	}
	s.writeData(w, matched)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.data.articles {
		if a.ID == id {
			s.writeData(w, a)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "article not found")
}

func (s *Server) handleGetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.data.articles {
		if a.Slug == slug {
			s.writeData(w, a)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "article not found")
}

func (s *Server) handleListImages(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeData(w, s.data.images)
}

func (s *Server) handleListBreaking(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeData(w, s.data.breaking)
}

func (s *Server) handleListPages(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeData(w, s.data.pages)
}

func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.data.pages {
		if p.Slug == slug {
			s.writeData(w, p)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "page not found")
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeData(w, s.data.settings)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var msg core.ContactMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil || msg.Email == "" || msg.Body == "" {
		s.writeError(w, http.StatusBadRequest, "a contact message needs an email and a body")
		return
	}
	if s.logger != nil {
		s.logger.Info("contact message received",
			zap.String("from", msg.Email),
			zap.String("subject", msg.Subject))
	}
	s.writeData(w, map[string]string{"status": "received"})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var category core.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil || category.Name == "" {
		s.writeError(w, http.StatusBadRequest, "a category needs a name")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	category.ID = s.allocID()
	s.data.categories = append(s.data.categories, category)
	s.writeData(w, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var category core.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil || category.Name == "" {
		s.writeError(w, http.StatusBadRequest, "a category needs a name")
		return
	}
	category.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.categories {
		if s.data.categories[i].ID == id {
			s.data.categories[i] = category
			s.writeData(w, category)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "category not found")
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.categories {
		if s.data.categories[i].ID == id {
			s.data.categories = append(s.data.categories[:i], s.data.categories[i+1:]...)
			s.writeData(w, map[string]string{"status": "deleted"})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "category not found")
}

func (s *Server) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var author core.Author
	if err := json.NewDecoder(r.Body).Decode(&author); err != nil || author.Name == "" {
		s.writeError(w, http.StatusBadRequest, "an author needs a name")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	author.ID = s.allocID()
	s.data.authors = append(s.data.authors, author)
	s.writeData(w, author)
}

func (s *Server) handleUpdateAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var author core.Author
	if err := json.NewDecoder(r.Body).Decode(&author); err != nil || author.Name == "" {
		s.writeError(w, http.StatusBadRequest, "an author needs a name")
		return
	}
	author.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.authors {
		if s.data.authors[i].ID == id {
			s.data.authors[i] = author
			s.writeData(w, author)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "author not found")
}

func (s *Server) handleDeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.authors {
		if s.data.authors[i].ID == id {
			s.data.authors = append(s.data.authors[:i], s.data.authors[i+1:]...)
			s.writeData(w, map[string]string{"status": "deleted"})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "author not found")
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var article core.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil || article.Title == "" {
		s.writeError(w, http.StatusBadRequest, "an article needs a title")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	article.ID = s.allocID()
	s.data.articles = append(s.data.articles, article)
	s.writeData(w, article)
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var article core.Article
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil || article.Title == "" {
		s.writeError(w, http.StatusBadRequest, "an article needs a title")
		return
	}
	article.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.articles {
		if s.data.articles[i].ID == id {
			s.data.articles[i] = article
			s.writeData(w, article)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "article not found")
}

func (s *Server) handlePatchArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch struct {
		Published *bool `json:"published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch.Published == nil {
		s.writeError(w, http.StatusBadRequest, "patch carries no published flag")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.articles {
		if s.data.articles[i].ID == id {
			s.data.articles[i].Published = *patch.Published
			if *patch.Published && s.data.articles[i].PublishedAt == nil {
				now := time.Now()
				s.data.articles[i].PublishedAt = &now
			}
			s.writeData(w, s.data.articles[i])
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "article not found")
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.articles {
		if s.data.articles[i].ID == id {
			s.data.articles = append(s.data.articles[:i], s.data.articles[i+1:]...)
			s.writeData(w, map[string]string{"status": "deleted"})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "article not found")
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	var upload struct {
		Filename string `json:"filename"`
		AltText  string `json:"altText"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&upload); err != nil || upload.Filename == "" || upload.Content == "" {
		s.writeError(w, http.StatusBadRequest, "an upload needs a filename and content")
		return
	}
	if _, err := base64.StdEncoding.DecodeString(upload.Content); err != nil {
		s.writeError(w, http.StatusBadRequest, "content must be base64")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	image := core.Image{
		ID:      s.allocID(),
		URL:     "/static/uploads/" + upload.Filename,
		AltText: upload.AltText,
	}
	s.data.images = append(s.data.images, image)
	s.writeData(w, image)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.images {
		if s.data.images[i].ID == id {
			s.data.images = append(s.data.images[:i], s.data.images[i+1:]...)
			s.writeData(w, map[string]string{"status": "deleted"})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "image not found")
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var page core.StaticPage
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil || page.Title == "" || page.Slug == "" {
		s.writeError(w, http.StatusBadRequest, "a page needs a title and a slug")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	page.ID = s.allocID()
	s.data.pages = append(s.data.pages, page)
	s.writeData(w, page)
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var page core.StaticPage
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil || page.Title == "" {
		s.writeError(w, http.StatusBadRequest, "a page needs a title")
		return
	}
	page.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.pages {
		if s.data.pages[i].ID == id {
			s.data.pages[i] = page
			s.writeData(w, page)
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "page not found")
}

func (s *Server) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.pages {
		if s.data.pages[i].ID == id {
			s.data.pages = append(s.data.pages[:i], s.data.pages[i+1:]...)
			s.writeData(w, map[string]string{"status": "deleted"})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "page not found")
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.settings = settings
	s.writeData(w, settings)
}

func (s *Server) handleSetBreaking(w http.ResponseWriter, r *http.Request) {
	var item core.BreakingNews
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.Headline == "" {
		s.writeError(w, http.StatusBadRequest, "a ticker item needs a headline")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == "" {
		item.ID = s.allocID()
	}
	item.Active = true
	s.data.breaking = []core.BreakingNews{item}
	s.writeData(w, item)
}

func (s *Server) handleClearBreaking(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.breaking = nil
	s.writeData(w, []core.BreakingNews{})
}

// allocID hands out sequential ids; callers hold s.mu.
func (s *Server) allocID() string {
	s.data.nextID++
	return strconv.Itoa(s.data.nextID)
}

// Envelope writers.

func (s *Server) writeData(w http.ResponseWriter, payload any) {
	env, err := apiclient.NewEnvelope(payload)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil && s.logger != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiclient.Envelope{Success: false, Message: message})
}
