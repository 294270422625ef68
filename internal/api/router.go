package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/blog"
)

// NewRouter creates a chi router with all API routes mounted.
// Reads are public; authEnabled only guards POST /rebuild.
// events, if non-nil, is mounted at GET /events.
func NewRouter(svc *blog.Service, authEnabled bool, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/posts", h.ListPosts)
	r.Get("/posts/{slug}", h.GetPost)
	r.Get("/posts/{slug}/toc", h.TOC)
	r.Get("/search", h.Search)

	r.With(AuthMiddleware(authEnabled, token)).Post("/rebuild", h.Rebuild)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
