// Package posts reads post records from the content root.
//
// Every call goes back to the files: nothing is cached between calls.
package posts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/slug"
	"github.com/starford/folio/internal/storage"
)

const ext = ".md"

// Repository lists and loads posts stored as Markdown files directly under
// the root of store.
type Repository struct {
	store storage.Provider
	tr    *content.Transformer
}

// NewRepository creates a Repository. tr produces the content field.
func NewRepository(store storage.Provider, tr *content.Transformer) *Repository {
	if tr == nil {
		tr = &content.Transformer{}
	}
	return &Repository{store: store, tr: tr}
}

// ListSlugs returns the slug of every Markdown file in the content root,
// ordered by file name.
func (r *Repository) ListSlugs(_ context.Context) ([]string, error) {
	entries, err := r.store.List("")
	if err != nil {
		return nil, fmt.Errorf("posts: list: %w", err)
	}
	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir || path.Ext(e.Name) != ext {
			continue
		}
		slugs = append(slugs, slug.FromFilename(e.Name))
	}
	return slugs, nil
}

// GetPostBySlug loads one post with the requested fields. The slug may carry
// the .md extension. A missing file yields an error matching
// apperr.ErrNotFound. Requested front-matter fields that are absent are left
// out of the result.
func (r *Repository) GetPostBySlug(_ context.Context, postSlug string, fields ...Field) (*Post, error) {
	name := strings.TrimSuffix(postSlug, ext)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("posts: %q: %w", postSlug, apperr.ErrNotFound)
	}

	data, err := r.store.Read(name + ext)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("posts: %s: %w: %w", name, apperr.ErrNotFound, err)
		}
		return nil, fmt.Errorf("posts: %s: %w", name, err)
	}

	res, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("posts: %s: %w: %w", name, apperr.ErrInvalidPost, err)
	}

	p := &Post{}
	for _, f := range fields {
		switch f {
		case FieldSlug:
			p.Slug = name
			p.set(f)
		case FieldContent:
			body, err := r.tr.Transform(data)
			if err != nil {
				return nil, fmt.Errorf("posts: %s: %w: %w", name, apperr.ErrInvalidPost, err)
			}
			p.Content = body
			p.set(f)
		default:
			if p.fill(f, res.Matter) {
				p.set(f)
			}
		}
	}
	return p, nil
}

// ListAllPosts returns the published posts, newest first. date and publish
// are always loaded in addition to fields. Dates are compared as strings, so
// they must share one ISO-8601 layout. Posts with equal dates keep slug order.
func (r *Repository) ListAllPosts(ctx context.Context, fields ...Field) ([]*Post, error) {
	slugs, err := r.ListSlugs(ctx)
	if err != nil {
		return nil, err
	}
	want := withRequired(fields)

	out := make([]*Post, 0, len(slugs))
	for _, s := range slugs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := r.GetPostBySlug(ctx, s, want...)
		if err != nil {
			return nil, err
		}
		if p.IsPublished() {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out, nil
}

func withRequired(fields []Field) []Field {
	out := []Field{FieldDate, FieldPublish}
	for _, f := range fields {
		if f == FieldDate || f == FieldPublish {
			continue
		}
		out = append(out, f)
	}
	return out
}
