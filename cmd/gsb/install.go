package main

import (
	"github.com/spf13/cobra"

	"github.com/sandevgo/gsb/internal/config"
	"github.com/sandevgo/gsb/internal/service/installer"
	"github.com/sandevgo/gsb/pkg/log"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Configure gsb interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, false)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		runtimePath := config.GetRuntimePath()
		state, err := installer.RunWizard(runtimePath)
		if err != nil {
			return err
		}

		logger.Info().Str("path", state.EnvPath()).Msg("configuration written")
		logger.Info().Msg("Installation complete! You can now run 'gsb start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
