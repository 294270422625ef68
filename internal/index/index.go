package index

import "context"

// PostIndex defines the search index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type PostIndex interface {
	UpsertPost(ctx context.Context, p PostRow, body string) error
	DeletePost(ctx context.Context, slug string) error
	AllChecksums(ctx context.Context) (map[string]string, error)
	Count(ctx context.Context) (int, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies PostIndex at compile time.
var _ PostIndex = (*DB)(nil)
