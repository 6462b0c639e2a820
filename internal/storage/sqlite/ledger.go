package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/log"
)

type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Open opens (and migrates) the database at path and returns a repo owning it.
func Open(ctx context.Context, path string) (*LedgerRepo, error) {
	db, err := NewDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewLedgerRepo(db), nil
}

// OpenOrReset is Open, except that a file sqlite does not recognise as a
// database is moved aside to <path>.corrupt-<unix> and a fresh ledger is
// created in its place.
func OpenOrReset(ctx context.Context, path string) (*LedgerRepo, error) {
	repo, err := Open(ctx, path)
	if err == nil || !isCorrupt(err) {
		return repo, err
	}

	aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
	log.FromCtx(ctx).Warn().
		Err(fmt.Errorf("%w: %w", core.ErrPersistence, err)).
		Str("path", path).
		Str("moved_to", aside).
		Msg("ledger database is corrupt, starting with an empty ledger")
	if rerr := os.Rename(path, aside); rerr != nil {
		return nil, fmt.Errorf("failed to move corrupt ledger aside: %w", rerr)
	}
	return Open(ctx, path)
}

func isCorrupt(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrNotADB || se.Code == sqlite3.ErrCorrupt) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "file is not a database") || strings.Contains(msg, "disk image is malformed")
}

func (r *LedgerRepo) LoadAll(ctx context.Context) ([]core.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id, outcome, recorded_at FROM ledger ORDER BY recorded_at ASC, item_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []core.LedgerEntry
	for rows.Next() {
		var e core.LedgerEntry
		var outcome string
		if err := rows.Scan(&e.ItemID, &outcome, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Outcome = core.Outcome(outcome)
		e.RecordedAt = e.RecordedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(entries)).Msg("loaded ledger entries")
	return entries, nil
}

// SaveAll upserts every entry in one transaction. A row that is already
// "acted" keeps its outcome and timestamp.
func (r *LedgerRepo) SaveAll(ctx context.Context, entries []core.LedgerEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger (item_id, outcome, recorded_at) VALUES (?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			outcome = excluded.outcome,
			recorded_at = excluded.recorded_at
		WHERE ledger.outcome != 'acted'`)
	if err != nil {
		return fmt.Errorf("failed to prepare ledger upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ItemID, string(e.Outcome), e.RecordedAt.UTC()); err != nil {
			return fmt.Errorf("failed to upsert ledger entry %s: %w", e.ItemID, err)
		}
	}

	return tx.Commit()
}

func (r *LedgerRepo) Close() error {
	return r.db.Close()
}
