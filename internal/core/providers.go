package core

import (
	"context"
	"time"
)

// Provider is the remote social API. Calls block; rate limit waiting is the
// implementation's business.
type Provider interface {
	Me(ctx context.Context) (User, error)
	SearchRecent(ctx context.Context, query string, since time.Time, max int) ([]Item, error)
	HomeTimeline(ctx context.Context, userID string, max int) ([]Item, error)
	Repost(ctx context.Context, userID, itemID string) error
}

// FeedReader is a read-only source of items, e.g. an RSS mirror.
type FeedReader interface {
	Read(ctx context.Context, max int) ([]Item, error)
}

type Notifier interface {
	Notify(ctx context.Context, summary RunSummary) error
}
