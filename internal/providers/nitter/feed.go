package nitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"github.com/mmcdole/gofeed"
	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/log"
	"github.com/sandevgo/rtbot/pkg/retry"
)

var statusID = regexp.MustCompile(`/status/(\d+)`)

// Feed reads account timelines from a Nitter instance's RSS endpoints.
type Feed struct {
	baseURL  string
	accounts []string
	client   *http.Client
	parser   *gofeed.Parser
	retrier  *retry.Retrier
}

func NewFeed(cfg config.NitterConfig) *Feed {
	base := strings.TrimRight(cfg.Instance, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Feed{
		baseURL:  base,
		accounts: cfg.Accounts,
		client:   &http.Client{Timeout: 15 * time.Second},
		parser:   gofeed.NewParser(),
		retrier:  retry.NewDefaultRetrier(),
	}
}

func (f *Feed) WithRetrier(r *retry.Retrier) *Feed {
	f.retrier = r
	return f
}

// Read merges the feeds of all accounts, newest first, and keeps at most
// limit items. An account that cannot be read is skipped; Read fails only
// when none could be read.
func (f *Feed) Read(ctx context.Context, limit int) ([]core.Item, error) {
	logger := log.FromCtx(ctx)

	var (
		items []core.Item
		errs  []error
	)
	for _, account := range f.accounts {
		got, err := f.readAccount(ctx, account)
		if err != nil {
			logger.Warn().Err(err).Str("account", account).Msg("failed to read nitter feed")
			errs = append(errs, err)
			continue
		}
		items = append(items, got...)
	}
	if len(errs) > 0 && len(errs) == len(f.accounts) {
		return nil, errors.Join(errs...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].CreatedAt, items[j].CreatedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (f *Feed) readAccount(ctx context.Context, account string) ([]core.Item, error) {
	account = strings.TrimPrefix(strings.TrimSpace(account), "@")
	url := fmt.Sprintf("%s/%s/rss", f.baseURL, account)

	var feed *gofeed.Feed
	err := f.retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("User-Agent", core.BotUserAgent)
		req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
		}

		feed, err = f.parser.Parse(resp.Body)
		if err != nil {
			return retry.Permanent(fmt.Errorf("parse feed: %w", err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]core.Item, 0, len(feed.Items))
	for _, it := range feed.Items {
		item, ok := toItem(it, account)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// toItem maps an RSS entry. Entries without a recognisable status id are
// dropped.
func toItem(it *gofeed.Item, account string) (core.Item, bool) {
	id := ""
	for _, s := range []string{it.Link, it.GUID} {
		if m := statusID.FindStringSubmatch(s); m != nil {
			id = m[1]
			break
		}
	}
	if id == "" {
		return core.Item{}, false
	}

	text := it.Description
	if text != "" {
		if plain, err := html2text.FromString(text, html2text.Options{OmitLinks: true}); err == nil {
			text = plain
		}
	} else {
		text = it.Title
	}

	author := account
	if len(it.Authors) > 0 && it.Authors[0].Name != "" {
		author = strings.TrimPrefix(it.Authors[0].Name, "@")
	}

	item := core.Item{
		ID:        id,
		Text:      strings.TrimSpace(text),
		AuthorID:  author,
		Reference: referenceFromTitle(it.Title, author, account),
	}
	if it.PublishedParsed != nil {
		ts := it.PublishedParsed.UTC()
		item.CreatedAt = &ts
	}
	return item, true
}

// referenceFromTitle reads Nitter's title conventions: "RT by @x: ..." for
// reposts and "R to @y: ..." for replies. A post by someone other than the
// feed's account is also a repost.
func referenceFromTitle(title, author, account string) core.ReferenceKind {
	switch {
	case strings.HasPrefix(title, "RT by "):
		return core.RefRetweet
	case strings.HasPrefix(title, "R to "):
		return core.RefReply
	case author != "" && !strings.EqualFold(author, account):
		return core.RefRetweet
	default:
		return core.RefNone
	}
}
