package main

import (
	"fmt"

	cenv "github.com/caarlos0/env/v11"
	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/pkg/env"
	"github.com/spf13/cobra"
)

var envAll bool

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the effective configuration with secrets masked",
	Long:  `Prints the configuration as .env lines, after defaults and the runtime .env file are applied. Values that fail to parse are reported on stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		sections := []struct {
			name string
			cfg  any
		}{
			{"app", &config.AppConfig{}},
			{"run", &config.RunConfig{}},
			{"x api", &config.XConfig{}},
			{"nitter", &config.NitterConfig{}},
			{"telegram", &config.TelegramConfig{}},
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# runtime: %s\n", config.GetRuntimePath())
		for _, s := range sections {
			// partially parsed values are still worth showing
			if err := cenv.Parse(s.cfg); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", s.name, err)
			}
			body, err := env.MarshalEnv(s.cfg, env.Options{MaskSecrets: true, IncludeZero: envAll})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n# %s\n%s", s.name, body)
		}
		return nil
	},
}

func init() {
	envCmd.Flags().BoolVar(&envAll, "all", false, "also print unset and zero values")
	rootCmd.AddCommand(envCmd)
}
