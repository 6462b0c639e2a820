package core

import "context"

// LedgerStore persists the dedup ledger. It is read wholesale at start and
// written wholesale at the end of a run.
type LedgerStore interface {
	LoadAll(ctx context.Context) ([]LedgerEntry, error)
	SaveAll(ctx context.Context, entries []LedgerEntry) error
	Close() error
}
