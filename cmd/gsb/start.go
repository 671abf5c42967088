package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandevgo/gsb/internal/config"
	"github.com/sandevgo/gsb/pkg/log"
	"github.com/sandevgo/gsb/pkg/srv"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gsb services",
	Long:  `Initializes the session and starts every enabled transport (telnet, Telegram, console).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// .env decides whether the console owns stdout, so load it before the logger.
		envErr := loadEnv(config.GetRuntimePath())
		console := os.Getenv("GSB_ENABLE_CONSOLE") == "true"

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, console)
		defer flushLog()

		logger := log.FromCtx(ctx)
		if envErr != nil {
			logger.Warn().Err(envErr).Msg("failed to load .env file")
		}
		logger.Info().Msg("starting gsb")

		services := NewServices(ctx, stop)

		failures := srv.StartServices(ctx, services)
		if err := srv.ShutdownServices(ctx, services, failures); err != nil {
			return err
		}

		logger.Info().Msg("gsb has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
