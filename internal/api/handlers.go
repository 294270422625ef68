package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blog"
	"github.com/starford/folio/internal/posts"
)

// Handler holds API route handlers.
type Handler struct {
	svc *blog.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *blog.Service) *Handler {
	return &Handler{svc: svc}
}

// fieldsParam parses the optional comma-separated fields query parameter.
func fieldsParam(r *http.Request) ([]posts.Field, error) {
	raw := r.URL.Query().Get("fields")
	if raw == "" {
		return nil, nil
	}
	return posts.ParseFieldList(raw)
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrUnknownField), errors.Is(err, apperr.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("unavailable"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	fields, err := fieldsParam(r)
	if err != nil {
		writeError(w, "list posts", err)
		return
	}
	list, err := h.svc.ListPosts(r.Context(), fields...)
	if err != nil {
		writeError(w, "list posts", err)
		return
	}
	writeJSONTagged(w, r, PostListResponse{Posts: list, Total: len(list)})
}

// GetPost handles GET /api/posts/{slug}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	fields, err := fieldsParam(r)
	if err != nil {
		writeError(w, "get post", err)
		return
	}
	p, err := h.svc.GetPost(r.Context(), chi.URLParam(r, "slug"), fields...)
	if err != nil {
		writeError(w, "get post", err)
		return
	}
	writeJSONTagged(w, r, p)
}

// TOC handles GET /api/posts/{slug}/toc.
func (h *Handler) TOC(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	toc, err := h.svc.TOC(r.Context(), slug)
	if err != nil {
		writeError(w, "toc", err)
		return
	}
	writeJSONTagged(w, r, TOCResponse{Slug: slug, Headings: toc})
}

// Search handles GET /api/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Rebuild handles POST /api/rebuild.
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Rebuild(r.Context(), nil)
	if err != nil {
		writeError(w, "rebuild", err)
		return
	}
	writeJSON(w, http.StatusOK, RebuildResponse{
		Posts:      report.Posts,
		Pages:      report.Pages,
		Removed:    report.Removed,
		DurationMS: report.Duration.Milliseconds(),
	})
}
