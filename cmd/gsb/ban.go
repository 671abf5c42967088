package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandevgo/gsb/internal/config"
	"github.com/sandevgo/gsb/internal/service/ui"
	"github.com/sandevgo/gsb/internal/storage/sqlite"
)

var banCmd = &cobra.Command{
	Use:   "ban",
	Short: "Manage banned hosts",
	Long:  `Edits the ban list in the gsb database. Running servers see changes on the next connection attempt.`,
}

var banAddCmd = &cobra.Command{
	Use:   "add <host> [reason]",
	Short: "Ban a host",
	Args:  cobra.MinimumNArgs(1),
	RunE: withBans(func(ctx context.Context, cmd *cobra.Command, bans *sqlite.BanRepo, args []string) error {
		reason := strings.Join(args[1:], " ")
		if err := bans.Ban(ctx, args[0], reason); err != nil {
			return err
		}
		cmd.Printf("Banned %s.\n", args[0])
		return nil
	}),
}

var banRemoveCmd = &cobra.Command{
	Use:     "remove <host>",
	Aliases: []string{"rm"},
	Short:   "Lift the ban on a host",
	Args:    cobra.ExactArgs(1),
	RunE: withBans(func(ctx context.Context, cmd *cobra.Command, bans *sqlite.BanRepo, args []string) error {
		ok, err := bans.Unban(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s is not banned", args[0])
		}
		cmd.Printf("Unbanned %s.\n", args[0])
		return nil
	}),
}

var banListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List banned hosts",
	Args:    cobra.NoArgs,
	RunE: withBans(func(ctx context.Context, cmd *cobra.Command, bans *sqlite.BanRepo, args []string) error {
		list, err := bans.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			cmd.Println("No hosts are banned.")
			return nil
		}
		cmd.Println(ui.TitleStyle.Render("BANNED HOSTS"))
		for _, b := range list {
			cmd.Printf("  %-24s %s %s\n", b.Host, ui.DescStyle.Render(b.CreatedAt.Format(time.DateTime)), b.Reason)
		}
		return nil
	}),
}

// withBans opens the database for the duration of one ban subcommand.
func withBans(run func(ctx context.Context, cmd *cobra.Command, bans *sqlite.BanRepo, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := loadEnv(config.GetRuntimePath()); err != nil {
			return err
		}

		ctx, flushLog := setupLogger(cmd.Context(), false)
		defer flushLog()

		cfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}

		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return err
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)

		return run(ctx, cmd, sqlite.NewBanRepo(db), args)
	}
}

func init() {
	banCmd.AddCommand(banAddCmd, banRemoveCmd, banListCmd)
	rootCmd.AddCommand(banCmd)
}
