package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/log"
)

// Ledger is the in-memory view of the dedup store for one run. It is not
// safe for concurrent use; a run is sequential.
type Ledger struct {
	store   core.LedgerStore
	entries map[string]core.LedgerEntry
	changed map[string]struct{}
	now     func() time.Time
}

func New(store core.LedgerStore) *Ledger {
	return &Ledger{
		store:   store,
		entries: make(map[string]core.LedgerEntry),
		changed: make(map[string]struct{}),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for RecordedAt.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Load replaces the view with the store's contents. A store that cannot be
// read leaves the ledger empty; this is logged and never fails the run.
// Changes not yet flushed survive the reload and stay pending.
func (l *Ledger) Load(ctx context.Context) {
	pending := make([]core.LedgerEntry, 0, len(l.changed))
	for id := range l.changed {
		pending = append(pending, l.entries[id])
	}

	l.entries = make(map[string]core.LedgerEntry)
	l.changed = make(map[string]struct{})

	entries, err := l.store.LoadAll(ctx)
	if err != nil {
		log.FromCtx(ctx).Warn().
			Err(fmt.Errorf("%w: %w", core.ErrPersistence, err)).
			Msg("ledger unreadable, starting with an empty ledger")
		entries = nil
	}

	for _, e := range entries {
		l.put(e)
	}
	for _, e := range pending {
		if l.put(e) {
			l.changed[e.ItemID] = struct{}{}
		}
	}
	if len(pending) > 0 {
		log.FromCtx(ctx).Warn().Int("pending", len(pending)).Msg("carrying unsaved ledger changes over")
	}
	log.FromCtx(ctx).Debug().Int("entries", len(l.entries)).Msg("ledger loaded")
}

// put stores e unless the id is already acted. It reports whether e was kept.
func (l *Ledger) put(e core.LedgerEntry) bool {
	if prev, ok := l.entries[e.ItemID]; ok && prev.Outcome == core.OutcomeActed {
		return false
	}
	l.entries[e.ItemID] = e
	return true
}

func (l *Ledger) Contains(id string) bool {
	_, ok := l.entries[id]
	return ok
}

func (l *Ledger) Get(id string) (core.LedgerEntry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

// Record stores outcome for id. An id already recorded as acted is left
// untouched; any other existing outcome is overwritten.
func (l *Ledger) Record(id string, outcome core.Outcome) {
	e := core.LedgerEntry{
		ItemID:     id,
		Outcome:    outcome,
		RecordedAt: l.now().UTC(),
	}
	if l.put(e) {
		l.changed[id] = struct{}{}
	}
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// Changes is the number of ids recorded since Load.
func (l *Ledger) Changes() int {
	return len(l.changed)
}

// Entries returns the full view ordered by RecordedAt then ItemID.
func (l *Ledger) Entries() []core.LedgerEntry {
	out := make([]core.LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// Flush writes the full view back to the store. Nothing is written when the
// run recorded nothing.
func (l *Ledger) Flush(ctx context.Context) error {
	if len(l.changed) == 0 {
		log.FromCtx(ctx).Debug().Msg("ledger unchanged, skipping flush")
		return nil
	}
	if err := l.store.SaveAll(ctx, l.Entries()); err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	l.changed = make(map[string]struct{})
	return nil
}
