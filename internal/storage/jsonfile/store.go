package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/log"
)

const formatVersion = 1

type document struct {
	Version int                `json:"version"`
	Entries []core.LedgerEntry `json:"entries"`
}

// Store keeps the ledger in a single JSON document.
type Store struct {
	path string
	mu   sync.RWMutex
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

// LoadAll reads the document. A missing file is an empty ledger. A bare
// JSON array of ids, as written by older processed-id files, is read as a
// list of acted items.
func (s *Store) LoadAll(ctx context.Context) ([]core.LedgerEntry, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.FromCtx(ctx).Debug().Str("path", s.path).Msg("ledger file not found, starting empty")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var ids []string
		if err := json.Unmarshal(trimmed, &ids); err != nil {
			return nil, fmt.Errorf("failed to parse ledger id list: %w", err)
		}
		recordedAt := s.now().UTC()
		entries := make([]core.LedgerEntry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, core.LedgerEntry{ItemID: id, Outcome: core.OutcomeActed, RecordedAt: recordedAt})
		}
		return entries, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if doc.Version > formatVersion {
		return nil, fmt.Errorf("unsupported ledger version %d", doc.Version)
	}

	for _, e := range doc.Entries {
		if _, err := core.ParseOutcome(string(e.Outcome)); err != nil {
			return nil, fmt.Errorf("invalid ledger entry %s: %w", e.ItemID, err)
		}
	}
	return doc.Entries, nil
}

// SaveAll replaces the document with entries, writing a temp file first and
// renaming it over the old one.
func (s *Store) SaveAll(ctx context.Context, entries []core.LedgerEntry) error {
	sorted := append([]core.LedgerEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].RecordedAt.Equal(sorted[j].RecordedAt) {
			return sorted[i].RecordedAt.Before(sorted[j].RecordedAt)
		}
		return sorted[i].ItemID < sorted[j].ItemID
	})

	data, err := json.MarshalIndent(document{Version: formatVersion, Entries: sorted}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}

	log.FromCtx(ctx).Debug().Int("count", len(sorted)).Str("path", s.path).Msg("ledger written")
	return nil
}

func (s *Store) Close() error {
	return nil
}
