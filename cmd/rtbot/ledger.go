package main

import (
	"fmt"

	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/internal/service/ledger"
	"github.com/sandevgo/rtbot/internal/service/ui"
	"github.com/spf13/cobra"
)

var (
	ledgerOutcome string
	ledgerLimit   int
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the dedup ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entries, most recent last",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		var filter core.Outcome
		if ledgerOutcome != "" {
			o, err := core.ParseOutcome(ledgerOutcome)
			if err != nil {
				return fmt.Errorf("%w: --outcome: %w", core.ErrConfiguration, err)
			}
			filter = o
		}

		appCfg, err := loadAppConfig(ctx)
		if err != nil {
			return err
		}
		store, err := openStoreNoReset(ctx, appCfg)
		if err != nil {
			return err
		}
		defer store.Close()

		led := ledger.New(store)
		led.Load(ctx)

		entries := filterEntries(led.Entries(), filter, ledgerLimit)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.LedgerTable(entries))
		fmt.Fprintln(out, ui.LedgerStats(led.Entries()))
		return nil
	},
}

// filterEntries keeps entries with outcome (all when empty) and returns the
// last limit of them (all when limit <= 0).
func filterEntries(entries []core.LedgerEntry, outcome core.Outcome, limit int) []core.LedgerEntry {
	var out []core.LedgerEntry
	for _, e := range entries {
		if outcome == "" || e.Outcome == outcome {
			out = append(out, e)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func init() {
	ledgerListCmd.Flags().StringVar(&ledgerOutcome, "outcome", "", "only show entries with this outcome")
	ledgerListCmd.Flags().IntVar(&ledgerLimit, "limit", 20, "show at most this many entries, 0 for all")
	ledgerCmd.AddCommand(ledgerListCmd)
	rootCmd.AddCommand(ledgerCmd)
}
