package nitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliceRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>alice / @alice</title>
  <link>https://nitter.example/alice</link>
  <item>
    <title>New cover is up</title>
    <dc:creator>@alice</dc:creator>
    <description><![CDATA[<p>New <b>cover</b> is up <a href="https://nitter.example/x">link</a></p>]]></description>
    <pubDate>Sun, 01 Jun 2025 11:00:00 GMT</pubDate>
    <guid>https://nitter.example/alice/status/1002#m</guid>
    <link>https://nitter.example/alice/status/1002#m</link>
  </item>
  <item>
    <title>RT by @alice: singing tonight</title>
    <dc:creator>@bob</dc:creator>
    <description><![CDATA[<p>singing tonight</p>]]></description>
    <pubDate>Sun, 01 Jun 2025 10:00:00 GMT</pubDate>
    <guid>https://nitter.example/bob/status/1001#m</guid>
    <link>https://nitter.example/bob/status/1001#m</link>
  </item>
  <item>
    <title>R to @bob: agreed</title>
    <dc:creator>@alice</dc:creator>
    <description><![CDATA[<p>agreed</p>]]></description>
    <pubDate>Sun, 01 Jun 2025 09:00:00 GMT</pubDate>
    <guid>https://nitter.example/alice/status/1000#m</guid>
    <link>https://nitter.example/alice/status/1000#m</link>
  </item>
  <item>
    <title>pinned profile card</title>
    <link>https://nitter.example/alice</link>
  </item>
</channel>
</rss>`

func newTestFeed(t *testing.T, h http.Handler, accounts ...string) *Feed {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	f := NewFeed(config.NitterConfig{Instance: srv.URL + "/", Accounts: accounts})
	return f.WithRetrier(retry.NewRetrier(&retry.Config{
		MaxRetries:    1,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	}))
}

func TestFeed_Read(t *testing.T) {
	f := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alice/rss", r.URL.Path)
		assert.Equal(t, core.BotUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(aliceRSS))
	}), "@alice")

	items, err := f.Read(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "1002", items[0].ID)
	assert.Equal(t, "alice", items[0].AuthorID)
	assert.Equal(t, core.RefNone, items[0].Reference)
	assert.Contains(t, items[0].Text, "cover")
	assert.NotContains(t, items[0].Text, "<b>")
	require.NotNil(t, items[0].CreatedAt)
	assert.Equal(t, time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), *items[0].CreatedAt)

	assert.Equal(t, "1001", items[1].ID)
	assert.Equal(t, core.RefRetweet, items[1].Reference)

	assert.Equal(t, "1000", items[2].ID)
	assert.Equal(t, core.RefReply, items[2].Reference)
}

func TestFeed_ReadTrimsToLimit(t *testing.T) {
	f := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(aliceRSS))
	}), "alice")

	items, err := f.Read(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1002", items[0].ID)
}

func TestFeed_PartialFailure(t *testing.T) {
	f := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone/rss" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(aliceRSS))
	}), "gone", "alice")

	items, err := f.Read(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestFeed_AllAccountsFail(t *testing.T) {
	f := newTestFeed(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), "alice")

	_, err := f.Read(context.Background(), 10)
	assert.Error(t, err)
}

func TestReferenceFromTitle(t *testing.T) {
	assert.Equal(t, core.RefRetweet, referenceFromTitle("RT by @a: x", "b", "a"))
	assert.Equal(t, core.RefReply, referenceFromTitle("R to @b: x", "a", "a"))
	assert.Equal(t, core.RefRetweet, referenceFromTitle("x", "b", "a"))
	assert.Equal(t, core.RefNone, referenceFromTitle("x", "A", "a"))
}
