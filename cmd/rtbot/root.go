package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/internal/service/ui"
	"github.com/sandevgo/rtbot/pkg/log"
	"github.com/spf13/cobra"
)

const (
	exitOK     = 0
	exitFetch  = 1
	exitConfig = 2
	exitAuth   = 3
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:          "rtbot",
	Short:        "rtbot: keyword repost bot for X",
	Long:         `rtbot polls X for recent posts matching a keyword expression and reposts the matches, remembering what it has seen.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context) int {
	CustomizeHelp(rootCmd)
	return exitCode(rootCmd.ExecuteContext(ctx))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, core.ErrConfiguration):
		return exitConfig
	case errors.Is(err, core.ErrAuthentication):
		return exitAuth
	default:
		return exitFetch
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func isDebug() bool {
	return debug || config.IsDebug()
}

// setupLogger starts at info (debug with --debug); loadAppConfig applies
// LOG_LEVEL once it is known.
func setupLogger(ctx context.Context) (context.Context, func()) {
	level := zerolog.InfoLevel
	if isDebug() {
		level = zerolog.DebugLevel
	}
	return log.NewContextWithLogger(ctx, level)
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return ui.TitleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return ui.UsageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return ui.FlagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return ui.DescStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{StyleUsage .UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}{{if .HasAvailableInheritedFlags}}{{StyleTitle "GLOBAL FLAGS"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
