package main

import (
	"time"

	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/service/poller"
	"github.com/sandevgo/rtbot/pkg/log"
	"github.com/sandevgo/rtbot/pkg/srv"
	"github.com/spf13/cobra"
)

var (
	serveInterval time.Duration
	serveDryRun   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run cycles on a fixed interval until interrupted",
	Long:  `Runs one cycle immediately and then one per interval. A failed cycle is logged and retried on the next tick; authentication and configuration errors stop the process.`,
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
		if serveDryRun {
			runCfg.DryRun = true
		}

		interval := appCfg.ServeInterval
		if serveInterval > 0 {
			interval = serveInterval
		}

		loop, closeStore, err := newLoop(ctx, appCfg, runCfg)
		if err != nil {
			return err
		}

		logger := log.FromCtx(ctx)
		logger.Info().Dur("interval", interval).Bool("dry_run", runCfg.DryRun).Msg("starting rtbot")

		services := []srv.Service{
			poller.NewScheduler(loop, interval),
			srv.NewCleanup(closeStore),
		}
		err = srv.Run(ctx, services)

		logger.Info().Msg("rtbot has been shut down gracefully")
		return err
	},
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "time between cycles (overrides SERVE_INTERVAL)")
	serveCmd.Flags().BoolVar(&serveDryRun, "dry-run", false, "log intended reposts without calling the API (overrides DRY_RUN)")
	rootCmd.AddCommand(serveCmd)
}
