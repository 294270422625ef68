package api

import (
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/posts"
	"github.com/starford/folio/internal/render"
)

// PostListResponse wraps post listings.
type PostListResponse struct {
	Posts []*posts.Post `json:"posts"`
	Total int           `json:"total"`
}

// TOCResponse wraps the table of contents of one post.
type TOCResponse struct {
	Slug     string           `json:"slug"`
	Headings []render.Heading `json:"headings"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}

// RebuildResponse is returned after a successful rebuild.
type RebuildResponse struct {
	Posts      int   `json:"posts"`
	Pages      int   `json:"pages"`
	Removed    int   `json:"removed"`
	DurationMS int64 `json:"durationMs"`
}
