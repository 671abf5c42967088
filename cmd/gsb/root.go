package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/gsb/internal/config"
	"github.com/sandevgo/gsb/internal/core"
	"github.com/sandevgo/gsb/internal/service/ui"
	"github.com/sandevgo/gsb/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:     core.AppName,
	Short:   core.AppTitle + " - a line-oriented command server",
	Long:    "gsb serves a command-driven chat room over telnet, Telegram and the local console.\n\n" + core.RepositoryURL,
	Version: core.Version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

// setupLogger writes to stderr when the console transport owns stdout.
func setupLogger(ctx context.Context, console bool) (context.Context, func()) {
	opts := log.Options{Debug: debug || config.IsDebug()}
	if console {
		opts.Out = os.Stderr
	}
	return log.NewContextWithLogger(ctx, opts)
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
{{StyleFlag (.LocalFlags.FlagUsages | trimTrailingWhitespaces)}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
