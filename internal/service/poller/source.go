package poller

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
)

// Source produces the candidate items of one run, oldest first.
type Source interface {
	Fetch(ctx context.Context, me core.User, now time.Time) ([]core.Item, error)
}

// NewSource picks the reader for cfg.Source. feed is only used by the
// nitter source and may be nil otherwise.
func NewSource(cfg config.RunConfig, provider core.Provider, feed core.FeedReader) (Source, error) {
	switch cfg.SourceKind() {
	case core.SourceSearch:
		query, err := cfg.Query()
		if err != nil {
			return nil, err
		}
		return &searchSource{
			provider: provider,
			query:    fmt.Sprintf("(%s) -is:retweet", query),
			lookback: cfg.Lookback(),
			max:      cfg.MaxResults,
		}, nil
	case core.SourceTimeline:
		return &timelineSource{provider: provider, max: cfg.MaxResults}, nil
	case core.SourceNitter:
		if feed == nil {
			return nil, fmt.Errorf("%w: nitter source needs a feed reader", core.ErrConfiguration)
		}
		return &feedSource{feed: feed, max: cfg.MaxResults}, nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q", core.ErrConfiguration, cfg.Source)
	}
}

type searchSource struct {
	provider core.Provider
	query    string
	lookback time.Duration
	max      int
}

func (s *searchSource) Fetch(ctx context.Context, _ core.User, now time.Time) ([]core.Item, error) {
	items, err := s.provider.SearchRecent(ctx, s.query, now.Add(-s.lookback), s.max)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", core.ErrFetch, s.query, err)
	}
	return chronological(items), nil
}

type timelineSource struct {
	provider core.Provider
	max      int
}

func (s *timelineSource) Fetch(ctx context.Context, me core.User, _ time.Time) ([]core.Item, error) {
	items, err := s.provider.HomeTimeline(ctx, me.ID, s.max)
	if err != nil {
		return nil, fmt.Errorf("%w: home timeline: %w", core.ErrFetch, err)
	}
	return chronological(items), nil
}

type feedSource struct {
	feed core.FeedReader
	max  int
}

func (s *feedSource) Fetch(ctx context.Context, _ core.User, _ time.Time) ([]core.Item, error) {
	items, err := s.feed.Read(ctx, s.max)
	if err != nil {
		return nil, fmt.Errorf("%w: feed: %w", core.ErrFetch, err)
	}
	return chronological(items), nil
}

// chronological turns a newest-first provider list into oldest-first.
// Items without a timestamp sort first; the recency gate drops them anyway.
func chronological(items []core.Item) []core.Item {
	out := make([]core.Item, len(items))
	for i, it := range items {
		out[len(items)-1-i] = it
	}
	key := func(it core.Item) time.Time {
		if it.CreatedAt == nil {
			return time.Time{}
		}
		return *it.CreatedAt
	}
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]).Before(key(out[j]))
	})
	return out
}
