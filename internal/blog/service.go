// Package blog coordinates the post repository, renderer, search index and
// site builder behind the operations the HTTP API and MCP server expose.
package blog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/site"
	"github.com/starford/folio/internal/sse"
)

// DefaultListFields are returned by ListPosts when no fields are given.
var DefaultListFields = []posts.Field{
	posts.FieldSlug, posts.FieldTitle, posts.FieldDate, posts.FieldCoverImage,
	posts.FieldAuthor, posts.FieldExcerpt,
}

// Notifier is told about finished rebuilds.
type Notifier interface {
	PublishRebuild(changed []string, info sse.RebuildInfo)
	PublishFailure(err error)
}

// Option configures a Service.
type Option func(*Service)

// WithIndex enables Search and index resync after rebuilds.
func WithIndex(db index.PostIndex) Option {
	return func(s *Service) { s.db = db }
}

// WithBuilder enables Rebuild.
func WithBuilder(b *site.Builder) Option {
	return func(s *Service) { s.builder = b }
}

// WithNotifier sets who hears about rebuilds.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service serves published posts. Drafts are reported as not found.
type Service struct {
	repo     *posts.Repository
	renderer *render.Renderer
	db       index.PostIndex
	builder  *site.Builder
	notifier Notifier
	logger   *slog.Logger

	rebuildMu sync.Mutex
}

// NewService creates a Service.
func NewService(repo *posts.Repository, renderer *render.Renderer, opts ...Option) *Service {
	s := &Service{repo: repo, renderer: renderer}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// ListPosts returns published posts newest first.
func (s *Service) ListPosts(ctx context.Context, fields ...posts.Field) ([]*posts.Post, error) {
	if len(fields) == 0 {
		fields = DefaultListFields
	}
	return s.repo.ListAllPosts(ctx, fields...)
}

// GetPost returns one published post with the requested fields, or every
// field when none are given.
func (s *Service) GetPost(ctx context.Context, slug string, fields ...posts.Field) (*posts.Post, error) {
	if len(fields) == 0 {
		fields = posts.AllFields
	}
	p, err := s.published(ctx, slug, append([]posts.Field{posts.FieldPublish}, fields...)...)
	if err != nil {
		return nil, err
	}
	p.Only(fields...)
	return p, nil
}

// TOC returns the table of contents of a published post.
func (s *Service) TOC(ctx context.Context, slug string) ([]render.Heading, error) {
	p, err := s.published(ctx, slug, posts.FieldPublish, posts.FieldContent)
	if err != nil {
		return nil, err
	}
	toc := s.renderer.TOC(p.Content)
	if toc == nil {
		toc = []render.Heading{}
	}
	return toc, nil
}

func (s *Service) published(ctx context.Context, slug string, fields ...posts.Field) (*posts.Post, error) {
	p, err := s.repo.GetPostBySlug(ctx, slug, fields...)
	if err != nil {
		return nil, err
	}
	if !p.IsPublished() {
		return nil, fmt.Errorf("blog: %s is a draft: %w", slug, apperr.ErrNotFound)
	}
	return p, nil
}

// Search result limits shared by every transport.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// Search queries the index. An empty query is an invalid argument. limit
// falls back to DefaultSearchLimit when not positive and is capped at
// MaxSearchLimit.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("blog: empty query: %w", apperr.ErrInvalidArgument)
	}
	if s.db == nil {
		return nil, fmt.Errorf("blog: search: %w", apperr.ErrUnavailable)
	}
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	return s.db.Search(ctx, query, limit)
}

// SyncIndex brings the search index in line with the published posts
// without rebuilding the site.
func (s *Service) SyncIndex(ctx context.Context) (*index.SyncReport, error) {
	if s.db == nil {
		return nil, fmt.Errorf("blog: sync: %w", apperr.ErrUnavailable)
	}
	return index.Sync(ctx, s.db, s.repo, s.logger)
}

// Rebuild regenerates the site and resyncs the index. Calls are serialized.
// changed lists the slugs that triggered the rebuild, if known.
func (s *Service) Rebuild(ctx context.Context, changed []string) (*site.Report, error) {
	if s.builder == nil {
		return nil, fmt.Errorf("blog: rebuild: %w", apperr.ErrUnavailable)
	}
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	report, err := s.builder.Build(ctx)
	if err != nil {
		if s.notifier != nil {
			s.notifier.PublishFailure(err)
		}
		return nil, err
	}

	if s.db != nil {
		if _, err := index.Sync(ctx, s.db, s.repo, s.logger); err != nil {
			s.logger.Warn("rebuild: index sync failed", slog.String("error", err.Error()))
		}
	}

	if s.notifier != nil {
		s.notifier.PublishRebuild(changed, sse.RebuildInfo{
			Posts:      report.Posts,
			Pages:      report.Pages,
			DurationMS: report.Duration.Milliseconds(),
		})
	}
	return report, nil
}
