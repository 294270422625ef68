// Package site generates the static blog from the post repository.
package site

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/metrics"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/render"
	"github.com/starford/folio/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// listFields are loaded for the home page and posts.json.
var listFields = []posts.Field{
	posts.FieldSlug, posts.FieldTitle, posts.FieldCoverImage,
	posts.FieldAuthor, posts.FieldExcerpt,
}

// Config holds the site-wide values the templates need.
type Config struct {
	Title       string
	BasePath    string
	LiveReload  bool
	Concurrency int
	// StaticDir, when set, is copied into the output root before pages are
	// written. Generated pages win over static files with the same path.
	StaticDir string
}

// Report summarizes one build.
type Report struct {
	Posts    int           `json:"posts"`
	Pages    int           `json:"pages"`
	Removed  int           `json:"removed"`
	Assets   int           `json:"assets"`
	Duration time.Duration `json:"duration"`
}

// Builder renders the site into an output Provider.
type Builder struct {
	repo     *posts.Repository
	renderer *render.Renderer
	out      storage.Provider
	cfg      Config
	logger   *slog.Logger
	recorder metrics.Recorder

	home *template.Template
	post *template.Template
}

// NewBuilder parses the embedded layouts and returns a Builder.
func NewBuilder(repo *posts.Repository, renderer *render.Renderer, out storage.Provider, cfg Config, logger *slog.Logger, recorder metrics.Recorder) (*Builder, error) {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	home, err := template.ParseFS(templateFS, "templates/base.html", "templates/home.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse home layout: %w", err)
	}
	post, err := template.ParseFS(templateFS, "templates/base.html", "templates/post.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse post layout: %w", err)
	}
	return &Builder{
		repo:     repo,
		renderer: renderer,
		out:      out,
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		home:     home,
		post:     post,
	}, nil
}

type homeData struct {
	Site  Config
	Posts []*posts.Post
}

type postData struct {
	Site Config
	Post *posts.Post
	TOC  []render.Heading
	HTML template.HTML
}

type listItem struct {
	Slug    string `json:"slug"`
	Title   string `json:"title,omitempty"`
	Date    string `json:"date,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
	URL     string `json:"url"`
}

// Build regenerates the home page, one page per published post and
// posts.json, then removes pages of posts that are gone or unpublished.
// Any failing post fails the build.
func (b *Builder) Build(ctx context.Context) (report *Report, err error) {
	start := time.Now()
	report = &Report{}
	defer func() {
		report.Duration = time.Since(start)
		outcome := metrics.OutcomeSuccess
		switch {
		case errors.Is(err, context.Canceled):
			outcome = metrics.OutcomeCanceled
		case err != nil:
			outcome = metrics.OutcomeFailed
		}
		b.recorder.ObserveBuild(outcome, report.Duration)
		b.recorder.AddPagesWritten(report.Pages)
	}()

	list, err := b.repo.ListAllPosts(ctx, listFields...)
	if err != nil {
		return report, fmt.Errorf("site: list posts: %w", err)
	}
	report.Posts = len(list)

	assets, err := b.copyStatic()
	report.Assets = assets
	if err != nil {
		return report, err
	}

	if err := b.writeTemplate(b.home, "index.html", homeData{Site: b.cfg, Posts: list}); err != nil {
		return report, err
	}
	report.Pages++

	var written atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for _, p := range list {
		postSlug := p.Slug
		g.Go(func() error {
			if err := b.buildPost(gCtx, postSlug); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	err = g.Wait()
	report.Pages += int(written.Load())
	if err != nil {
		return report, err
	}

	if err := b.writeIndexJSON(list); err != nil {
		return report, err
	}
	report.Pages++

	removed, err := b.removeStale(list)
	report.Removed = removed
	if err != nil {
		return report, err
	}

	b.recorder.SetPublishedPosts(report.Posts)
	b.logger.Info("site: built",
		slog.Int("posts", report.Posts),
		slog.Int("pages", report.Pages),
		slog.Int("removed", report.Removed),
		slog.Int("assets", report.Assets),
		slog.Duration("duration", time.Since(start)))
	return report, nil
}

func (b *Builder) buildPost(ctx context.Context, postSlug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.repo.GetPostBySlug(ctx, postSlug, posts.AllFields...)
	if err != nil {
		return fmt.Errorf("site: load %s: %w", postSlug, err)
	}
	html, err := b.renderer.HTML(p.Content)
	if err != nil {
		return fmt.Errorf("site: render %s: %w", postSlug, err)
	}
	data := postData{
		Site: b.cfg,
		Post: p,
		TOC:  b.renderer.TOC(p.Content),
		HTML: html,
	}
	if err := b.writeTemplate(b.post, PostPath(postSlug), data); err != nil {
		return err
	}
	b.logger.Debug("site: wrote post", slog.String("slug", postSlug))
	return nil
}

func (b *Builder) writeTemplate(t *template.Template, dst string, data any) error {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("site: execute %s: %w", dst, err)
	}
	if err := b.out.Write(dst, buf.Bytes()); err != nil {
		return fmt.Errorf("site: write %s: %w", dst, err)
	}
	return nil
}

func (b *Builder) writeIndexJSON(list []*posts.Post) error {
	items := make([]listItem, 0, len(list))
	for _, p := range list {
		items = append(items, listItem{
			Slug:    p.Slug,
			Title:   p.Title,
			Date:    p.Date,
			Excerpt: p.Excerpt,
			URL:     b.cfg.BasePath + "/posts/" + p.Slug + "/",
		})
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("site: encode posts.json: %w", err)
	}
	if err := b.out.Write("posts.json", data); err != nil {
		return fmt.Errorf("site: write posts.json: %w", err)
	}
	return nil
}

// copyStatic mirrors the static directory into the output root.
func (b *Builder) copyStatic() (int, error) {
	if b.cfg.StaticDir == "" {
		return 0, nil
	}
	copied := 0
	err := filepath.WalkDir(b.cfg.StaticDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(b.cfg.StaticDir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := b.out.Write(filepath.ToSlash(rel), data); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("site: copy static: %w", err)
	}
	return copied, nil
}

// removeStale deletes posts/<slug>/ directories that no longer match a
// published post.
func (b *Builder) removeStale(list []*posts.Post) (int, error) {
	entries, err := b.out.List("posts")
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("site: list stale pages: %w", err)
	}
	keep := make(map[string]struct{}, len(list))
	for _, p := range list {
		keep[p.Slug] = struct{}{}
	}
	removed := 0
	for _, e := range entries {
		if !e.IsDir {
			continue
		}
		if _, ok := keep[e.Name]; ok {
			continue
		}
		if err := b.out.Remove(e.Path); err != nil {
			return removed, fmt.Errorf("site: remove stale %s: %w", e.Path, err)
		}
		b.logger.Debug("site: removed stale page", slog.String("path", e.Path))
		removed++
	}
	return removed, nil
}

// PostPath is the output file of a post page relative to the site root.
func PostPath(postSlug string) string {
	return path.Join("posts", postSlug, "index.html")
}
