package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/momobot/internal/config"
	"github.com/sandevgo/momobot/internal/service/moment"
	"github.com/sandevgo/momobot/internal/storage/sqlite"
	"github.com/sandevgo/momobot/pkg/log"
)

// app bundles the storage-backed pieces every subcommand needs. The chat
// command layers the model caller and chat service on top of it.
type app struct {
	cfg      *config.AppConfig
	db       *sql.DB
	users    *sqlite.UsersRepo
	agents   *sqlite.AgentsRepo
	convs    *sqlite.ConversationsRepo
	messages *sqlite.MessagesRepo
	moments  *moment.Service
}

func newApp(ctx context.Context) (*app, error) {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	cfg := config.NewAppConfig(ctx)

	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		db:       db,
		users:    sqlite.NewUsersRepo(db),
		agents:   sqlite.NewAgentsRepo(db),
		convs:    sqlite.NewConversationsRepo(db),
		messages: sqlite.NewMessagesRepo(db),
		moments:  moment.NewService(cfg, sqlite.NewMomentsRepo(db)),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
