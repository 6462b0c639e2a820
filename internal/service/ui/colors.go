package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/rtbot/internal/core"
)

var (
	// ANSI palette indexes
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)
	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	DescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	FlagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// OutcomeStyle colors a ledger outcome: acted green, rejections gray.
func OutcomeStyle(o core.Outcome) lipgloss.Style {
	switch o {
	case core.OutcomeActed:
		return CellStyle.Foreground(lipgloss.Color("2"))
	case core.OutcomeSkippedOwnAuthor:
		return CellStyle.Foreground(lipgloss.Color("3"))
	default:
		return CellStyle.Foreground(lipgloss.Color("8"))
	}
}
