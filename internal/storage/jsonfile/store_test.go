package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandevgo/rtbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissingFile(t *testing.T) {
	t.Parallel()
	s := NewStore(filepath.Join(t.TempDir(), "ledger.json"))

	entries, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "ledger.json")
	s := NewStore(path)
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAll(ctx, []core.LedgerEntry{
		{ItemID: "b", Outcome: core.OutcomeNoMatch, RecordedAt: now.Add(time.Minute)},
		{ItemID: "a", Outcome: core.OutcomeActed, RecordedAt: now},
	}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	out, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ItemID, "entries are written oldest first")
	assert.Equal(t, core.OutcomeActed, out[0].Outcome)
	assert.True(t, now.Equal(out[0].RecordedAt))
}

func TestStore_LoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr bool
		wantLen int
	}{
		{name: "empty file", content: "", wantLen: 0},
		{name: "truncated json", content: `{"version":1,"entries":[{"item_id":"1"`, wantErr: true},
		{name: "garbage", content: "\x00\x01binary", wantErr: true},
		{name: "unknown outcome", content: `{"version":1,"entries":[{"item_id":"1","outcome":"liked"}]}`, wantErr: true},
		{name: "future version", content: `{"version":9,"entries":[]}`, wantErr: true},
		{name: "legacy id list", content: `["100", "200"]`, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			out, err := NewStore(path).LoadAll(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, out, tt.wantLen)
		})
	}
}

func TestStore_LegacyIDsAreActed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "processed.json")
	require.NoError(t, os.WriteFile(path, []byte(`["7"]`), 0644))

	out, err := NewStore(path).LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, core.OutcomeActed, out[0].Outcome)
	assert.False(t, out[0].RecordedAt.IsZero())
}

func TestStore_SaveReadOnlyDirectory(t *testing.T) {
	t.Parallel()
	if os.Getuid() == 0 {
		t.Skip("skipping permission test when running as root")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	err := NewStore(filepath.Join(dir, "ledger.json")).SaveAll(context.Background(), nil)
	assert.Error(t, err)
}
