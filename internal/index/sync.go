package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/posts"
)

// syncFields are the post fields stored in the index.
var syncFields = []posts.Field{
	posts.FieldSlug, posts.FieldTitle, posts.FieldExcerpt, posts.FieldContent,
}

// SyncReport counts what one Sync pass changed.
type SyncReport struct {
	Indexed   int
	Unchanged int
	Removed   int
}

// Sync brings the index up to date with the published posts in repo:
//   - new or changed posts are upserted
//   - posts that were deleted or unpublished are removed
//
// A post that fails to load fails the whole pass, the same way a static
// build does.
func Sync(ctx context.Context, db PostIndex, repo *posts.Repository, logger *slog.Logger) (*SyncReport, error) {
	list, err := repo.ListAllPosts(ctx, syncFields...)
	if err != nil {
		return nil, fmt.Errorf("index: sync: %w", err)
	}

	checksums, err := db.AllChecksums(ctx)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{}
	published := make(map[string]struct{}, len(list))
	for _, p := range list {
		published[p.Slug] = struct{}{}

		cs := postChecksum(p)
		if checksums[p.Slug] == cs {
			report.Unchanged++
			continue
		}
		row := PostRow{
			Slug:     p.Slug,
			Title:    p.Title,
			Date:     p.Date,
			Excerpt:  p.Excerpt,
			Checksum: cs,
		}
		if err := db.UpsertPost(ctx, row, p.Content); err != nil {
			return report, err
		}
		report.Indexed++
		logger.Debug("sync: indexed", slog.String("slug", p.Slug))
	}

	for s := range checksums {
		if _, ok := published[s]; ok {
			continue
		}
		if err := db.DeletePost(ctx, s); err != nil {
			logger.Warn("sync: delete failed", slog.String("slug", s), slog.String("error", err.Error()))
			continue
		}
		report.Removed++
		logger.Debug("sync: removed stale", slog.String("slug", s))
	}

	return report, nil
}

// postChecksum fingerprints the indexed fields of p.
func postChecksum(p *posts.Post) string {
	var buf []byte
	for _, s := range []string{p.Title, p.Date, p.Excerpt, p.Content} {
		buf = append(buf, s...)
		buf = append(buf, 0)
	}
	return checksum.Sum(buf)
}
