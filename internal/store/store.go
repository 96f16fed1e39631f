// Package store persists forum posts and serves the dedup history window.
// Two implementations share one interface: direct Postgres and a
// Supabase-style REST endpoint.
package store

import (
	"context"
	"time"

	"newsbot/internal/post"
)

// PostStore is the persistence boundary of the pipeline. The handle is owned
// by the caller: constructed once, reused across sequential runs, closed
// explicitly. Not designed for concurrent use.
type PostStore interface {
	// InsertPost writes one forum post row.
	InsertPost(ctx context.Context, p post.ForumPost) error
	// RecentPostTitles returns titles of posts by the author created after
	// the cutoff, newest first. Used by the deduplicator.
	RecentPostTitles(ctx context.Context, authorID string, since time.Time) ([]string, error)
	Close() error
}
