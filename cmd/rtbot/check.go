package main

import (
	"fmt"
	"time"

	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/internal/providers/xapi"
	"github.com/sandevgo/rtbot/pkg/conv"
	"github.com/sandevgo/rtbot/pkg/log"
	"github.com/spf13/cobra"
)

const checkTextLen = 80

var checkSample int

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify credentials and show a sample of the home timeline",
	Long:  `Authenticates against the X API, prints the caller's id and username and a few home timeline posts. Nothing is reposted and the ledger is not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if _, err := loadAppConfig(ctx); err != nil {
			return err
		}
		xCfg, err := config.NewXConfig()
		if err != nil {
			return err
		}
		client, err := xapi.NewClient(ctx, *xCfg)
		if err != nil {
			return err
		}

		logger := log.FromCtx(ctx)
		me, err := client.Me(ctx)
		if err != nil {
			return err
		}
		logger.Info().Str("user_id", me.ID).Str("username", me.Username).Msg("authenticated")

		items, err := client.HomeTimeline(ctx, me.ID, checkSample)
		if err != nil {
			return fmt.Errorf("%w: home timeline: %w", core.ErrFetch, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "authenticated as @%s (%s)\n", me.Username, me.ID)
		for _, it := range items {
			when := "unknown time"
			if it.CreatedAt != nil {
				when = it.CreatedAt.Local().Format(time.DateTime)
			}
			fmt.Fprintf(out, "- %s [%s, %s] %s\n", it.ID, when, it.Reference, conv.OneLine(it.Text, checkTextLen))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().IntVar(&checkSample, "sample", 5, "number of timeline posts to show")
	rootCmd.AddCommand(checkCmd)
}
