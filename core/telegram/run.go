package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/anketabot/core/config"
	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/core/telegram/helpers"
	"github.com/m3rciful/anketabot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// RunOptions describes everything needed to start the bot loop.
type RunOptions struct {
	Config   *config.Config
	Registry *Registry

	// Setup wires routes onto the bot with the default middleware chain.
	// The caller owns routing so this package stays a leaf under the
	// router packages. Required.
	Setup func(bot *tele.Bot, mws ...tele.MiddlewareFunc)

	// OnStart runs after the bot is constructed, before polling begins.
	OnStart func(rt *Runtime)
	// OnStop runs during shutdown, before the dispatcher drains.
	OnStop func(rt *Runtime)
}

// Runtime exposes the live bot pieces to hooks and the caller.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *sender.Dispatcher
}

// RunTelegram builds the bot, wires routers and middleware, then polls
// until ctx is cancelled. It owns the outbound dispatcher lifecycle.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		return fmt.Errorf("telegram: nil config")
	}
	if opts.Registry == nil {
		return fmt.Errorf("telegram: nil registry")
	}
	if opts.Setup == nil {
		return fmt.Errorf("telegram: nil setup")
	}

	poller := BuildPoller(PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	})

	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(),
		OnError: logBotError,
	})
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}

	// Longpoll mode must not compete with a previously registered webhook.
	if cfg.Telegram.RunMode == RunModeLongpoll {
		if err := bot.RemoveWebhook(); err != nil {
			logger.TG.LogAttrs(ctx, slog.LevelWarn, "webhook.remove_failed",
				slog.String("err", sender.SanitizeErrorMessage(err)),
			)
		}
	}

	dispatcher := sender.NewDispatcher(sender.Options{})
	helpers.SetDispatcher(dispatcher)

	rt := &Runtime{Bot: bot, Dispatcher: dispatcher}

	opts.Setup(bot, DefaultMiddlewares(cfg)...)

	InitBotCommands(bot, opts.Registry)

	if opts.OnStart != nil {
		opts.OnStart(rt)
	}

	logger.TG.LogAttrs(ctx, slog.LevelInfo, "bot.start",
		slog.String("run_mode", cfg.Telegram.RunMode),
		slog.Int64("bot_id", bot.Me.ID),
		slog.String("bot_username", bot.Me.Username),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()

	select {
	case <-ctx.Done():
	case <-done:
	}

	logger.TG.LogAttrs(context.Background(), slog.LevelInfo, "bot.stop")
	if opts.OnStop != nil {
		opts.OnStop(rt)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		bot.Stop()
	}()
	select {
	case <-stopped:
	case <-time.After(10 * time.Second):
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "bot.stop.timeout")
	}

	dispatcher.Close()
	if n := dispatcher.ErrorCount(); n > 0 {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "sender.errors.total",
			slog.Uint64("count", n),
		)
	}
	return nil
}

func logBotError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = helpers.BuildContext(c)
	}
	logger.TG.LogAttrs(ctx, slog.LevelError, "bot.handler.error",
		slog.String("err", sender.SanitizeErrorMessage(err)),
	)
}
