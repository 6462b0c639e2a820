package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/rtbot/internal/core"
)

var baseNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := baseNow.Add(-d)
	return &t
}

type fakeProvider struct {
	mu sync.Mutex

	me       core.User
	meErr    error
	search   []core.Item
	timeline []core.Item
	fetchErr error
	failIDs  map[string]bool

	queries  []string
	reposted []string
}

func (f *fakeProvider) Me(ctx context.Context) (core.User, error) {
	if f.meErr != nil {
		return core.User{}, f.meErr
	}
	return f.me, nil
}

func (f *fakeProvider) SearchRecent(ctx context.Context, query string, since time.Time, max int) ([]core.Item, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.search, nil
}

func (f *fakeProvider) HomeTimeline(ctx context.Context, userID string, max int) ([]core.Item, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.timeline, nil
}

func (f *fakeProvider) Repost(ctx context.Context, userID, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[itemID] {
		return errors.New("forbidden")
	}
	f.reposted = append(f.reposted, itemID)
	return nil
}

type memStore struct {
	entries []core.LedgerEntry
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) LoadAll(ctx context.Context) ([]core.LedgerEntry, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]core.LedgerEntry(nil), m.entries...), nil
}

func (m *memStore) SaveAll(ctx context.Context, entries []core.LedgerEntry) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries = append([]core.LedgerEntry(nil), entries...)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) outcome(id string) (core.Outcome, bool) {
	for _, e := range m.entries {
		if e.ItemID == id {
			return e.Outcome, true
		}
	}
	return "", false
}

type setDedup map[string]bool

func (s setDedup) Contains(id string) bool { return s[id] }

type recordingNotifier struct {
	summaries []core.RunSummary
	err       error
}

func (n *recordingNotifier) Notify(ctx context.Context, s core.RunSummary) error {
	n.summaries = append(n.summaries, s)
	return n.err
}
