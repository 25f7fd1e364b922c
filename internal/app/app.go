package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/anketabot/core/buildinfo"
	"github.com/m3rciful/anketabot/core/database"
	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/core/telegram"
	"github.com/m3rciful/anketabot/core/telegram/middleware"
	"github.com/m3rciful/anketabot/internal/form"
	"github.com/m3rciful/anketabot/internal/review"
	"github.com/m3rciful/anketabot/internal/storage"
)

// Run loads configuration, initializes logging and the optional archive
// database, wires the form engine and review flow, and runs the bot until
// ctx is cancelled.
func Run(ctx context.Context, configPath string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	if err := logger.InitLogger(&cfg.Config); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Shutdown()
	}()

	logger.L.LogAttrs(ctx, slog.LevelInfo, "app.start",
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.String("run_mode", cfg.Telegram.RunMode),
		slog.Bool("archive", cfg.Database.Enabled),
	)

	var archive form.Archiver
	if cfg.Database.Enabled {
		if err := database.RunMigrations(cfg.Database); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()
		archive = storage.NewArchive(db)
	}

	msgr := &botMessenger{}
	schema := form.DefaultSchema()
	store := form.NewStore(schema)
	dispatcher := review.NewDispatcher(msgr, schema, cfg.Review.ChatID)
	engine := form.NewEngine(schema, store, msgr, dispatcher, form.EngineOptions{
		Archive: archive,
		AfterComplete: func(ctx context.Context, chatID int64) {
			_ = msgr.SendHTML(ctx, chatID, menuText, mainMenu())
		},
	})

	reg := telegram.NewRegistry()
	registerCommands(reg, engine)
	if err := review.NewRelay(msgr).Register(reg); err != nil {
		return fmt.Errorf("register review callbacks: %w", err)
	}

	admin := middleware.AdminOptions{AdminID: cfg.Telegram.AdminID}
	return telegram.RunTelegram(ctx, telegram.RunOptions{
		Config:   &cfg.Config,
		Registry: reg,
		Setup:    wireRoutes(reg, engine, admin),
		OnStart: func(rt *telegram.Runtime) {
			msgr.bind(rt.Bot)
		},
	})
}
