package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sandevgo/rtbot/internal/core"
)

// LedgerTable renders entries as a bordered table, newest last.
func LedgerTable(entries []core.LedgerEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ItemID, string(e.Outcome), e.RecordedAt.Local().Format(time.DateTime)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(DescStyle).
		Headers("ITEM", "OUTCOME", "RECORDED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			if col == 1 && row >= 0 && row < len(entries) {
				return OutcomeStyle(entries[row].Outcome)
			}
			return CellStyle
		})
	return t.String()
}

// LedgerStats renders per-outcome counts on one line.
func LedgerStats(entries []core.LedgerEntry) string {
	counts := make(map[core.Outcome]int)
	for _, e := range entries {
		counts[e.Outcome]++
	}
	out := DescStyle.Render(fmt.Sprintf("%d entries", len(entries)))
	for _, o := range core.Outcomes() {
		if counts[o] == 0 {
			continue
		}
		out += "  " + OutcomeStyle(o).UnsetPadding().Render(fmt.Sprintf("%s %d", o, counts[o]))
	}
	return out
}
