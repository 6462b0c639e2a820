package xapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sandevgo/rtbot/internal/core"
)

const tweetFields = "created_at,author_id,referenced_tweets"

const (
	searchMinResults = 10
	searchMaxResults = 100
)

type tweet struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	AuthorID         string `json:"author_id"`
	CreatedAt        string `json:"created_at"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

type tweetsResponse struct {
	Data []tweet `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// toItem maps the wire shape onto core.Item. When a post references more
// than one other post, retweet beats quote beats reply.
func (t tweet) toItem() core.Item {
	item := core.Item{
		ID:        t.ID,
		Text:      t.Text,
		AuthorID:  t.AuthorID,
		Reference: core.RefNone,
	}
	if ts, err := time.Parse(time.RFC3339, t.CreatedAt); err == nil {
		ts = ts.UTC()
		item.CreatedAt = &ts
	}

	for _, ref := range t.ReferencedTweets {
		kind := referenceKind(ref.Type)
		if precedence[kind] > precedence[item.Reference] {
			item.Reference = kind
		}
	}
	return item
}

var precedence = map[core.ReferenceKind]int{
	core.RefNone:    0,
	core.RefReply:   1,
	core.RefQuote:   2,
	core.RefRetweet: 3,
}

func referenceKind(wire string) core.ReferenceKind {
	switch wire {
	case "retweeted":
		return core.RefRetweet
	case "quoted":
		return core.RefQuote
	case "replied_to":
		return core.RefReply
	default:
		return core.RefNone
	}
}

func toItems(ts []tweet) []core.Item {
	items := make([]core.Item, 0, len(ts))
	for _, t := range ts {
		items = append(items, t.toItem())
	}
	return items
}

func (c *Client) Me(ctx context.Context) (core.User, error) {
	var resp struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Name     string `json:"name"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &resp); err != nil {
		if isUnauthorized(err) {
			return core.User{}, fmt.Errorf("%w: %w", core.ErrAuthentication, err)
		}
		return core.User{}, fmt.Errorf("%w: users/me: %w", core.ErrFetch, err)
	}
	if resp.Data.ID == "" {
		return core.User{}, fmt.Errorf("%w: users/me returned no id", core.ErrAuthentication)
	}
	return core.User{ID: resp.Data.ID, Username: resp.Data.Username, Name: resp.Data.Name}, nil
}

// SearchRecent returns at most limit posts matching query created since
// since, newest first. The API refuses pages below ten, so a smaller limit
// asks for ten and trims.
func (c *Client) SearchRecent(ctx context.Context, query string, since time.Time, limit int) ([]core.Item, error) {
	page := min(max(limit, searchMinResults), searchMaxResults)

	q := url.Values{}
	q.Set("query", query)
	q.Set("max_results", strconv.Itoa(page))
	q.Set("tweet.fields", tweetFields)
	if !since.IsZero() {
		q.Set("start_time", since.UTC().Format(time.RFC3339))
	}

	var resp tweetsResponse
	if err := c.do(ctx, http.MethodGet, "/tweets/search/recent?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	items := toItems(resp.Data)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (c *Client) HomeTimeline(ctx context.Context, userID string, limit int) ([]core.Item, error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(min(max(limit, 1), searchMaxResults)))
	q.Set("tweet.fields", tweetFields)

	path := "/users/" + url.PathEscape(userID) + "/timelines/reverse_chronological?" + q.Encode()
	var resp tweetsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return toItems(resp.Data), nil
}

var errNotReposted = errors.New("repost was not applied")

func (c *Client) Repost(ctx context.Context, userID, itemID string) error {
	var resp struct {
		Data struct {
			Retweeted bool `json:"retweeted"`
		} `json:"data"`
	}
	body := map[string]string{"tweet_id": itemID}
	if err := c.doOnce(ctx, http.MethodPost, "/users/"+url.PathEscape(userID)+"/retweets", body, &resp); err != nil {
		return err
	}
	if !resp.Data.Retweeted {
		return errNotReposted
	}
	return nil
}
