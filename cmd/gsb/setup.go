package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/gsb/configs"
	"github.com/sandevgo/gsb/internal/config"
	"github.com/sandevgo/gsb/internal/service/chat"
	"github.com/sandevgo/gsb/internal/service/session"
	"github.com/sandevgo/gsb/internal/service/spellcheck"
	"github.com/sandevgo/gsb/internal/storage/sqlite"
	"github.com/sandevgo/gsb/internal/transport/cli"
	"github.com/sandevgo/gsb/internal/transport/telegram"
	"github.com/sandevgo/gsb/internal/transport/telnet"
	"github.com/sandevgo/gsb/pkg/log"
	"github.com/sandevgo/gsb/pkg/srv"
)

// NewServices wires storage, the chat session and the enabled transports.
// stop ends the process when the console user quits.
func NewServices(ctx context.Context, stop func()) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Dictionary
	dict, err := initDictionary(ctx, appCfg, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load dictionary")
	}

	// 4. Session
	room := chat.New(chat.Options{
		Welcome:   appCfg.GetWelcome(),
		Admins:    appCfg.GetAdminHosts(),
		Separator: appCfg.GetCommandSeparator(),
	})
	sess := session.New(
		room.Parser(),
		session.WithBans(sqlite.NewBanRepo(db)),
		session.WithSpellChecker(spellcheck.Provider(dict)),
	)
	room.Bind(sess)
	services = append(services, sess)

	// 5. Transports
	transports, err := initTransports(ctx, appCfg, sess, stop)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Fatal().Msg("no transport enabled")
	}
	services = append(services, transports...)

	return services
}

func initDictionary(ctx context.Context, cfg *config.AppConfig, db *sql.DB) (*spellcheck.Dictionary, error) {
	dict, err := spellcheck.LoadDictionary(ctx, cfg.GetWordListPath(), configs.Words, sqlite.NewWordRepo(db))
	if err != nil {
		return nil, err
	}
	log.FromCtx(ctx).Info().Int("words", dict.Len()).Msg("dictionary loaded")
	return dict, nil
}

func initTransports(ctx context.Context, cfg *config.AppConfig, sess *session.Session, stop func()) ([]srv.Service, error) {
	var services []srv.Service

	// Telnet listener
	if cfg.IsTelnetEnabled() {
		server, err := telnet.NewServer(cfg.GetListenAddress(), cfg.GetEncoding(), sess)
		if err != nil {
			return nil, err
		}
		services = append(services, server)
	}

	// Telegram Bot
	if cfg.IsTelegramEnabled() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, sess)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	// Local console
	if cfg.IsConsoleEnabled() {
		console, err := cli.NewReadLine(cfg, sess)
		if err != nil {
			return nil, err
		}
		services = append(services, &stopOnExit{Service: console, stop: stop})
	}

	return services, nil
}

// stopOnExit ends the process once the wrapped service returns.
type stopOnExit struct {
	srv.Service
	stop func()
}

func (s *stopOnExit) Start(ctx context.Context) error {
	defer s.stop()
	return s.Service.Start(ctx)
}

// loadEnv loads <runtime>/.env into the process environment if it exists.
func loadEnv(runtimePath string) error {
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(envFile)
}
