package ui

import (
	"testing"
	"time"

	"github.com/sandevgo/rtbot/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestLedgerTable(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := LedgerTable([]core.LedgerEntry{
		{ItemID: "100", Outcome: core.OutcomeActed, RecordedAt: at},
		{ItemID: "101", Outcome: core.OutcomeNoMatch, RecordedAt: at},
	})

	assert.Contains(t, out, "ITEM")
	assert.Contains(t, out, "100")
	assert.Contains(t, out, "no_match")
}

func TestLedgerStats(t *testing.T) {
	out := LedgerStats([]core.LedgerEntry{
		{ItemID: "1", Outcome: core.OutcomeActed},
		{ItemID: "2", Outcome: core.OutcomeActed},
		{ItemID: "3", Outcome: core.OutcomeNoMatch},
	})

	assert.Contains(t, out, "3 entries")
	assert.Contains(t, out, "acted 2")
	assert.Contains(t, out, "no_match 1")
	assert.NotContains(t, out, "skipped_duplicate")
}
