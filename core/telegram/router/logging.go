package router

import (
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs the handler and emits a single summary event with
// outcome, elapsed time, and the error (if any). The summary is the one log
// line operators grep for per update.
func handleWithSummary(c tele.Context, kind, name string, fn tele.HandlerFunc) error {
	helpers.WithHandler(c, normalizeHandlerName(name))

	start := time.Now()
	err := fn(c)
	logHandlerSummary(c, kind, name, err, time.Since(start))
	return err
}

func logHandlerSummary(c tele.Context, kind, name string, err error, took time.Duration) {
	ctx := helpers.BuildContext(c)
	attrs := []slog.Attr{
		slog.String("kind", kind),
		slog.String("handler", normalizeHandlerName(name)),
		slog.String("status", logger.Status(err)),
		slog.Duration("took", logger.RoundMS(took)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("error", err.Error()),
			slog.String("error_code", deriveErrorCode(err)),
		)
		logger.Error(ctx, "tg.router", "handler.summary", attrs...)
		return
	}
	logger.Info(ctx, "tg.router", "handler.summary", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	return strings.TrimPrefix(name, "/")
}

func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "message is not modified"):
		return "not_modified"
	case strings.Contains(msg, "message to edit not found"):
		return "edit_target_missing"
	case strings.Contains(msg, "blocked by the user"):
		return "blocked"
	case strings.Contains(msg, "chat not found"):
		return "chat_not_found"
	default:
		return "internal"
	}
}
