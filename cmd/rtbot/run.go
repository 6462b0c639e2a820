package main

import (
	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/pkg/log"
	"github.com/spf13/cobra"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one fetch, filter and repost cycle",
	Long:  `Fetches recent candidates, filters them against the ledger, recency window and keywords, reposts up to MAX_RETWEETS_PER_RUN of them and saves the ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		appCfg, err := loadAppConfig(ctx)
		if err != nil {
			return err
		}
		runCfg, err := config.NewRunConfig()
		if err != nil {
			return err
		}
		if runDryRun {
			runCfg.DryRun = true
		}

		loop, closeStore, err := newLoop(ctx, appCfg, runCfg)
		if err != nil {
			return err
		}
		defer closeStore()

		summary, err := loop.Run(ctx)
		if err != nil {
			return err
		}

		log.FromCtx(ctx).Info().
			Str("run_id", summary.RunID).
			Strs("acted", summary.Acted).
			Bool("dry_run", summary.DryRun).
			Msg("done")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "log intended reposts without calling the API (overrides DRY_RUN)")
	rootCmd.AddCommand(runCmd)
}
