package xapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler, cfg config.XConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	c, err := NewClient(context.Background(), cfg)
	require.NoError(t, err)
	return c.WithRetrier(retry.NewRetrier(&retry.Config{
		MaxRetries:    2,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		MaxWait:       10 * time.Millisecond,
	}))
}

func bearer() config.XConfig {
	return config.XConfig{BearerToken: "tok"}
}

func TestClient_Me(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, core.BotUserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(`{"data":{"id":"42","username":"rt","name":"RT Bot"}}`))
	}), bearer())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.User{ID: "42", Username: "rt", Name: "RT Bot"}, me)
}

func TestClient_MeUnauthorized(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"title":"Unauthorized","detail":"Unauthorized","status":401}`))
	}), bearer())

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrAuthentication)
	assert.Equal(t, int32(1), calls.Load(), "4xx is not retried")
}

func TestClient_OAuth1SignsRequests(t *testing.T) {
	cfg := config.XConfig{APIKey: "k", APISecret: "s", AccessToken: "t", AccessTokenSecret: "ts"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "OAuth "), auth)
		assert.Contains(t, auth, `oauth_consumer_key="k"`)
		w.Write([]byte(`{"data":{"id":"1","username":"u"}}`))
	}), cfg)

	_, err := c.Me(context.Background())
	require.NoError(t, err)
}

func TestClient_SearchRecent(t *testing.T) {
	since := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tweets/search/recent", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "(cover) -is:retweet", q.Get("query"))
		assert.Equal(t, "10", q.Get("max_results"))
		assert.Equal(t, "2025-06-01T09:00:00Z", q.Get("start_time"))
		assert.Equal(t, tweetFields, q.Get("tweet.fields"))
		w.Write([]byte(`{"data":[
			{"id":"3","text":"cover","author_id":"a","created_at":"2025-06-01T11:00:00.000Z"},
			{"id":"2","text":"rt","author_id":"b","created_at":"2025-06-01T10:00:00.000Z",
			 "referenced_tweets":[{"type":"replied_to","id":"9"},{"type":"retweeted","id":"8"}]},
			{"id":"1","text":"q","author_id":"c","created_at":"bogus",
			 "referenced_tweets":[{"type":"quoted","id":"7"}]}
		],"meta":{"result_count":3}}`))
	}), bearer())

	items, err := c.SearchRecent(context.Background(), "(cover) -is:retweet", since, 2)
	require.NoError(t, err)
	require.Len(t, items, 2, "trimmed to the requested limit")

	assert.Equal(t, "3", items[0].ID)
	assert.Equal(t, core.RefNone, items[0].Reference)
	require.NotNil(t, items[0].CreatedAt)
	assert.Equal(t, time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), *items[0].CreatedAt)

	assert.Equal(t, core.RefRetweet, items[1].Reference)
}

func TestClient_SearchEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{"result_count":0}}`))
	}), bearer())

	items, err := c.SearchRecent(context.Background(), "x", time.Time{}, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTweetToItem(t *testing.T) {
	var tw tweet
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","text":"q","referenced_tweets":[{"type":"replied_to","id":"2"},{"type":"quoted","id":"3"}]}`), &tw))

	item := tw.toItem()
	assert.Equal(t, core.RefQuote, item.Reference)
	assert.Nil(t, item.CreatedAt)
}

func TestClient_RateLimitWaitsAndRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("x-rate-limit-reset", strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}), bearer())

	_, err := c.HomeTimeline(context.Background(), "42", 5)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), bearer())

	_, err := c.HomeTimeline(context.Background(), "42", 5)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_HomeTimeline(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42/timelines/reverse_chronological", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("max_results"))
		w.Write([]byte(`{"data":[{"id":"1","text":"hi","author_id":"42","created_at":"2025-06-01T10:00:00Z"}]}`))
	}), bearer())

	items, err := c.HomeTimeline(context.Background(), "42", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "42", items[0].AuthorID)
}

func TestClient_Repost(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/42/retweets", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["tweet_id"] == "bad" {
			w.Write([]byte(`{"data":{"retweeted":false}}`))
			return
		}
		assert.Equal(t, "7", body["tweet_id"])
		w.Write([]byte(`{"data":{"retweeted":true}}`))
	}), bearer())

	assert.NoError(t, c.Repost(context.Background(), "42", "7"))
	assert.Error(t, c.Repost(context.Background(), "42", "bad"))
}

func TestClient_RepostServerErrorIsNotResent(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}), bearer())

	err := c.Repost(context.Background(), "42", "7")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RepostWaitsOutRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("x-rate-limit-reset", strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":{"retweeted":true}}`))
	}), bearer())

	require.NoError(t, c.Repost(context.Background(), "42", "7"))
	assert.Equal(t, int32(2), calls.Load())
}
