package ledger

import (
	"context"
	"fmt"

	"github.com/sandevgo/rtbot/internal/core"
)

// unavailableStore stands in for a store that could not be opened. Every
// load and save fails with the open error, so a run starts empty and
// reports the unsaved ledger.
type unavailableStore struct {
	err error
}

func Unavailable(err error) core.LedgerStore {
	return &unavailableStore{err: err}
}

func (s *unavailableStore) LoadAll(ctx context.Context) ([]core.LedgerEntry, error) {
	return nil, fmt.Errorf("ledger store unavailable: %w", s.err)
}

func (s *unavailableStore) SaveAll(ctx context.Context, entries []core.LedgerEntry) error {
	return fmt.Errorf("ledger store unavailable: %w", s.err)
}

func (s *unavailableStore) Close() error { return nil }
